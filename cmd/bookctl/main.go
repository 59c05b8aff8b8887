// Command bookctl manages the book catalog from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/logging"
	"bookstore/internal/platform/postgres"
)

func main() {
	app := newApp(openRepository, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openRepository connects to the store and returns a dispatcher-backed
// repository. The returned function stops the workers and closes the pool.
func openRepository(ctx context.Context, configPath string) (book.Repository, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, flush, err := logging.New(logging.Options{
		Production: cfg.IsProduction(),
		Level:      "warn",
		Service:    "bookctl",
		Output:     os.Stderr,
	})
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.Open(ctx, cfg.Database.Pool(), logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := book.NewPostgresRepo(db.Pool(), cfg.Database.QueryTimeout)
	dispatcher := book.NewDispatcher(repo, logger.Named("dispatcher"), 1, 0)
	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(runCtx) }()

	closer := func() {
		stop()
		if err := <-done; err != nil {
			logger.Warn("dispatcher stopped with error", zap.Error(err))
		}
		db.Close()
		_ = flush()
	}
	return dispatcher, closer, nil
}
