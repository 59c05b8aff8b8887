package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/logging"
	"bookstore/internal/platform/postgres"
)

var words = []string{
	"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
	"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
	"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
	"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
}

var authors = []string{
	"Frank Herbert", "Ursula K. Le Guin", "Isaac Asimov", "Octavia Butler",
	"Arthur C. Clarke", "Iain M. Banks", "N. K. Jemisin", "Stanislaw Lem",
}

func main() {
	var (
		count      = flag.Int("count", 1000, "Number of books to generate")
		start      = flag.Int("start", 1, "First ISBN sequence number")
		seed       = flag.Int64("seed", 1, "Random seed for titles and authors")
		configFile = flag.String("config", "", "Path to a YAML configuration file")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, flush, err := logging.New(logging.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel, Service: "bookstore-seed"})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = flush() }()

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database.Pool(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	repo := book.NewPostgresRepo(db.Pool(), cfg.Database.QueryTimeout)
	dispatcher := book.NewDispatcher(repo, logger.Named("dispatcher"), cfg.Dispatcher.Workers, cfg.Dispatcher.Buffer)
	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(runCtx) }()

	logger.Info("generating books", zap.Int("count", *count))
	books := generateBooks(*count, *start, rand.New(rand.NewSource(*seed)))
	created, duplicates, err := insertAll(ctx, book.NewService(dispatcher), books, cfg.Dispatcher.Workers)

	stop()
	<-done
	if err != nil {
		logger.Fatal("failed to insert books", zap.Error(err), zap.Int64("created", created))
	}
	logger.Info("seed complete", zap.Int64("created", created), zap.Int64("duplicates", duplicates))

	total, err := repo.List(ctx)
	if err != nil {
		logger.Fatal("failed to count books", zap.Error(err))
	}
	logger.Info("total books in database", zap.Int("total", len(total)))
}

func generateBooks(count, start int, rng *rand.Rand) []book.Book {
	books := make([]book.Book, 0, count)
	for i := 0; i < count; i++ {
		books = append(books, book.Book{
			Title:  fmt.Sprintf("The %s of %s", words[rng.Intn(len(words))], words[rng.Intn(len(words))]),
			Author: authors[rng.Intn(len(authors))],
			ISBN:   fmt.Sprintf("978%010d", start+i),
		})
	}
	return books
}

type creator interface {
	Create(ctx context.Context, b book.Book) (book.Book, error)
}

// insertAll creates books with up to workers calls in flight. Duplicates are
// counted; any other failure stops the run.
func insertAll(ctx context.Context, svc creator, books []book.Book, workers int) (created, duplicates int64, err error) {
	var ok, dup atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, b := range books {
		g.Go(func() error {
			_, err := svc.Create(gctx, b)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, book.ErrDuplicateISBN):
				dup.Add(1)
			default:
				return fmt.Errorf("create %s: %w", b.ISBN, err)
			}
			return nil
		})
	}
	err = g.Wait()
	return ok.Load(), dup.Load(), err
}
