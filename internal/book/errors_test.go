package book

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"isbn unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "book_isbn_key"}, ErrDuplicateISBN},
		{"other unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "book_pkey"}, ErrQuery},
		{"connection failure sqlstate", &pgconn.PgError{Code: "08006"}, ErrConnection},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrConnection},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}, ErrConnection},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, ErrQuery},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, ErrConnection},
		{"closed pool", fmt.Errorf("acquire: %w", puddle.ErrClosedPool), ErrConnection},
		{"cancelled", context.Canceled, ErrQuery},
		{"anything else", errors.New("boom"), ErrQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)

			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, tt.err)
			var opErr *OpError
			assert.ErrorAs(t, err, &opErr)
			assert.Equal(t, "op", opErr.Op)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, classify("op", nil))
}

func TestClassify_KeepsExistingOpError(t *testing.T) {
	orig := &OpError{Op: "create", Kind: ErrDuplicateISBN}

	err := classify("commit", orig)

	assert.Same(t, orig, err)
}

func TestOpError_Error(t *testing.T) {
	assert.Equal(t, "create: a book with the same isbn already exists",
		(&OpError{Op: "create", Kind: ErrDuplicateISBN}).Error())
	assert.Equal(t, "list: book store query failed: boom",
		(&OpError{Op: "list", Kind: ErrQuery, Err: errors.New("boom")}).Error())
}

func TestClassify_CancelledNotConnection(t *testing.T) {
	err := classify("list", context.Canceled)

	assert.False(t, errors.Is(err, ErrConnection))
	assert.False(t, errors.Is(err, ErrDuplicateISBN))
}
