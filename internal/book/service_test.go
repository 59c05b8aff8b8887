package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dune = Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593"}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(dune))

	err := Validate(Book{Title: "Dune"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBook)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{
		{Field: "author", Message: "author is required"},
		{Field: "isbn", Message: "isbn is required"},
	}, verr.Fields)
	assert.Equal(t, "one or more entries are empty: author, isbn", err.Error())
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	t.Run("stores a valid book", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), dune).Return(nil)

		got, err := service.Create(ctx, dune)

		require.NoError(t, err)
		assert.Equal(t, dune, got)
	})

	t.Run("rejects empty fields without calling the store", func(t *testing.T) {
		_, err := service.Create(ctx, Book{Title: "", Author: "A", ISBN: "1"})

		assert.ErrorIs(t, err, ErrInvalidBook)
	})

	t.Run("passes duplicates through", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), dune).Return(&OpError{Op: "create", Kind: ErrDuplicateISBN})

		_, err := service.Create(ctx, dune)

		assert.ErrorIs(t, err, ErrDuplicateISBN)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().List(gomock.Any()).Return([]Book{dune}, nil)

	books, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Book{dune}, books)
}

func TestService_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	ctx := context.Background()

	t.Run("by title", func(t *testing.T) {
		mockRepo.EXPECT().RemoveByTitle(gomock.Any(), "Dune").Return(nil)

		assert.NoError(t, service.Remove(ctx, Selector{Title: "Dune"}))
	})

	t.Run("by isbn", func(t *testing.T) {
		mockRepo.EXPECT().RemoveByISBN(gomock.Any(), "9780441013593").Return(nil)

		assert.NoError(t, service.Remove(ctx, Selector{ISBN: "9780441013593"}))
	})

	t.Run("neither", func(t *testing.T) {
		assert.ErrorIs(t, service.Remove(ctx, Selector{}), ErrSelectorMissing)
	})

	t.Run("both", func(t *testing.T) {
		assert.ErrorIs(t, service.Remove(ctx, Selector{Title: "Dune", ISBN: "1"}), ErrSelectorAmbiguous)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := &OpError{Op: "remove by isbn", Kind: ErrConnection, Err: errors.New("refused")}
		mockRepo.EXPECT().RemoveByISBN(gomock.Any(), "1").Return(storeErr)

		assert.ErrorIs(t, service.Remove(ctx, Selector{ISBN: "1"}), ErrConnection)
	})
}
