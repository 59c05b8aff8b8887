package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b Book) error
	List(ctx context.Context) ([]Book, error)
	RemoveByTitle(ctx context.Context, title string) error
	RemoveByISBN(ctx context.Context, isbn string) error
}
