package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/logging"
	"bookstore/internal/platform/postgres"
)

type migrator interface {
	EnsureSchema(ctx context.Context) error
	RollbackSchema(ctx context.Context) error
	SchemaStatus(ctx context.Context) ([]postgres.MigrationState, error)
}

func main() {
	var (
		command    = flag.String("command", "up", "Migration command: up, down, status")
		configFile = flag.String("config", "", "Path to a YAML configuration file")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, flush, err := logging.New(logging.Options{Production: cfg.IsProduction(), Level: cfg.LogLevel, Service: "bookstore-migrate"})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer func() { _ = flush() }()

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database.Pool(), logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := runCommand(ctx, db, *command, os.Stdout); err != nil {
		db.Close()
		log.Fatalf("%v", err)
	}
}

func runCommand(ctx context.Context, m migrator, command string, out io.Writer) error {
	switch command {
	case "up":
		if err := m.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Fprintln(out, "Migrations applied successfully")
	case "down":
		if err := m.RollbackSchema(ctx); err != nil {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
		fmt.Fprintln(out, "Migrations rolled back successfully")
	case "status":
		states, err := m.SchemaStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		printStatus(out, states)
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status", command)
	}
	return nil
}

func printStatus(out io.Writer, states []postgres.MigrationState) {
	fmt.Fprintf(out, "%-24s %s\n", "Applied At", "Migration")
	for _, s := range states {
		applied := "Pending"
		if s.Applied {
			applied = s.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(out, "%-24s %s\n", applied, s.Path)
	}
}
