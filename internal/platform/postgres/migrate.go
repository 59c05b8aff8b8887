package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the embedded migration files rooted at their directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrationState describes one embedded migration as seen by the database.
type MigrationState struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(goose.DialectPostgres, db, Migrations(), goose.WithSessionLocker(locker))
}

func (h *Handle) withProvider(fn func(*goose.Provider) error) error {
	db := stdlib.OpenDBFromPool(h.pool)
	defer db.Close()

	p, err := newProvider(db)
	if err != nil {
		return fmt.Errorf("postgres: migrations: %w", err)
	}
	return fn(p)
}

// EnsureSchema applies every pending migration. Running it against an
// up-to-date database is a no-op.
func (h *Handle) EnsureSchema(ctx context.Context) error {
	return h.withProvider(func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
		for _, r := range results {
			h.logger.Info("migration applied",
				zap.Int64("version", r.Source.Version),
				zap.String("path", r.Source.Path),
				zap.Duration("duration", r.Duration),
			)
		}
		return nil
	})
}

// SchemaStatus reports every embedded migration and whether it is applied.
func (h *Handle) SchemaStatus(ctx context.Context) ([]MigrationState, error) {
	var out []MigrationState
	err := h.withProvider(func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("postgres: schema status: %w", err)
		}
		for _, s := range statuses {
			out = append(out, MigrationState{
				Version:   s.Source.Version,
				Path:      s.Source.Path,
				Applied:   s.State == goose.StateApplied,
				AppliedAt: s.AppliedAt,
			})
		}
		return nil
	})
	return out, err
}

// RollbackSchema reverts the most recently applied migration.
func (h *Handle) RollbackSchema(ctx context.Context) error {
	return h.withProvider(func(p *goose.Provider) error {
		r, err := p.Down(ctx)
		if err != nil {
			return fmt.Errorf("postgres: rollback schema: %w", err)
		}
		h.logger.Info("migration rolled back",
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
		)
		return nil
	})
}
