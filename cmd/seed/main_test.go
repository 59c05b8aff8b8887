package main

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/book"
)

func TestGenerateBooks(t *testing.T) {
	books := generateBooks(3, 41, rand.New(rand.NewSource(7)))

	require.Len(t, books, 3)
	assert.Equal(t, "9780000000041", books[0].ISBN)
	assert.Equal(t, "9780000000043", books[2].ISBN)
	for _, b := range books {
		assert.NoError(t, book.Validate(b))
	}
}

func TestInsertAll_CountsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	books := generateBooks(4, 1, rand.New(rand.NewSource(1)))

	repo.EXPECT().Create(gomock.Any(), books[0]).Return(nil)
	repo.EXPECT().Create(gomock.Any(), books[1]).Return(&book.OpError{Op: "create", Kind: book.ErrDuplicateISBN})
	repo.EXPECT().Create(gomock.Any(), books[2]).Return(nil)
	repo.EXPECT().Create(gomock.Any(), books[3]).Return(&book.OpError{Op: "create", Kind: book.ErrDuplicateISBN})

	created, dup, err := insertAll(context.Background(), book.NewService(repo), books, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(2), created)
	assert.Equal(t, int64(2), dup)
}

func TestInsertAll_StopsOnStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := book.NewMockRepository(ctrl)
	books := generateBooks(1, 1, rand.New(rand.NewSource(1)))

	repo.EXPECT().Create(gomock.Any(), books[0]).Return(&book.OpError{Op: "create", Kind: book.ErrConnection, Err: errors.New("refused")})

	_, _, err := insertAll(context.Background(), book.NewService(repo), books, 1)

	assert.ErrorIs(t, err, book.ErrConnection)
}
