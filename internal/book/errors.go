package book

import (
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
)

// Failure kinds reported by the repository. Match them with errors.Is.
var (
	// ErrDuplicateISBN is returned by Create when a book with the same ISBN exists.
	ErrDuplicateISBN = errors.New("a book with the same isbn already exists")
	// ErrConnection is returned when the store cannot be reached.
	ErrConnection = errors.New("book store unreachable")
	// ErrQuery is returned for any other store failure.
	ErrQuery = errors.New("book store query failed")
)

// isbnConstraint is the unique constraint backing ErrDuplicateISBN.
const isbnConstraint = "book_isbn_key"

// OpError records the repository operation that failed, its kind and the cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify wraps a store error into an *OpError of the matching kind.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == isbnConstraint:
			return ErrDuplicateISBN
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return ErrConnection
		}
		return ErrQuery
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ErrConnection
	}
	if errors.Is(err, puddle.ErrClosedPool) {
		return ErrConnection
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrConnection
	}
	return ErrQuery
}
