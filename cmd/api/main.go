package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/logging"
	"bookstore/internal/platform/postgres"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, flush, err := logging.New(logging.Options{
		Production: cfg.IsProduction(),
		Level:      cfg.LogLevel,
		Service:    "bookstore-api",
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = flush() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database.Pool(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	repo := book.NewPostgresRepo(db.Pool(), cfg.Database.QueryTimeout)
	dispatcher := book.NewDispatcher(repo, logger.Named("dispatcher"), cfg.Dispatcher.Workers, cfg.Dispatcher.Buffer)
	handler := book.NewHTTPHandler(book.NewService(dispatcher), logger)

	g, gctx := errgroup.WithContext(ctx)

	// the dispatcher outlives the server so in-flight requests can finish
	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(gctx, cfg, logger, handler, db),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatcher()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
