package book

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	lockISBNSQL    = `SELECT pg_advisory_xact_lock(hashtext($1))`
	countByISBNSQL = `SELECT COUNT(*) FROM book WHERE isbn = $1`
	insertSQL      = `INSERT INTO book (title, author, isbn) VALUES ($1, $2, $3)`
	listSQL        = `SELECT title, author, isbn FROM book`
	deleteTitleSQL = `DELETE FROM book WHERE title = $1`
	deleteISBNSQL  = `DELETE FROM book WHERE isbn = $1`
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Create inserts b unless a row with the same ISBN exists. Concurrent creates
// for one ISBN are serialized by a transaction-scoped advisory lock; the
// book_isbn_key constraint rejects anything that slips past the check.
func (r *PostgresRepo) Create(ctx context.Context, b Book) error {
	const op = "create"
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return classify(op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockISBNSQL, b.ISBN); err != nil {
		return classify(op, err)
	}

	var count int64
	if err := tx.QueryRow(ctx, countByISBNSQL, b.ISBN).Scan(&count); err != nil {
		return classify(op, err)
	}
	if count > 0 {
		return &OpError{Op: op, Kind: ErrDuplicateISBN}
	}

	if _, err := tx.Exec(ctx, insertSQL, b.Title, b.Author, b.ISBN); err != nil {
		return classify(op, err)
	}
	return classify(op, tx.Commit(ctx))
}

// List returns every stored book. Order is whatever the store yields.
func (r *PostgresRepo) List(ctx context.Context) ([]Book, error) {
	const op = "list"
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, listSQL)
	if err != nil {
		return nil, classify(op, err)
	}
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[Book])
	if err != nil {
		return nil, classify(op, err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// RemoveByTitle deletes every book whose title matches exactly.
// No matching rows is not an error.
func (r *PostgresRepo) RemoveByTitle(ctx context.Context, title string) error {
	return r.exec(ctx, "remove by title", deleteTitleSQL, title)
}

// RemoveByISBN deletes the book with the given ISBN, if any.
func (r *PostgresRepo) RemoveByISBN(ctx context.Context, isbn string) error {
	return r.exec(ctx, "remove by isbn", deleteISBNSQL, isbn)
}

func (r *PostgresRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(ctx, sql, args...)
	return classify(op, err)
}
