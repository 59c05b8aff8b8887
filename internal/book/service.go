package book

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidBook is matched by every *ValidationError.
	ErrInvalidBook = errors.New("one or more entries are empty")
	// ErrSelectorMissing is returned by Remove when neither title nor ISBN is given.
	ErrSelectorMissing = errors.New("you must enter at least one value")
	// ErrSelectorAmbiguous is returned by Remove when both title and ISBN are given.
	ErrSelectorAmbiguous = errors.New("you cannot remove by both title and isbn")
)

var validate = validator.New()

// FieldError names a rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields of a Book that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return ErrInvalidBook.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidBook
}

// Validate reports which fields of b are empty.
func Validate(b Book) error {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		out.Fields = append(out.Fields, FieldError{Field: name, Message: name + " is required"})
	}
	return out
}

// Service applies the caller-side rules before handing work to the repository.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates b and stores it.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	if err := Validate(b); err != nil {
		return Book{}, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// Remove deletes by title or by ISBN, never both.
func (s *Service) Remove(ctx context.Context, sel Selector) error {
	switch {
	case sel.Title == "" && sel.ISBN == "":
		return ErrSelectorMissing
	case sel.Title != "" && sel.ISBN != "":
		return ErrSelectorAmbiguous
	case sel.Title != "":
		return s.repo.RemoveByTitle(ctx, sel.Title)
	default:
		return s.repo.RemoveByISBN(ctx, sel.ISBN)
	}
}
