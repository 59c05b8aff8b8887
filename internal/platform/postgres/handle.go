// Package postgres owns the process-wide PostgreSQL connection pool and the
// embedded schema migrations of the book catalog.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrUnavailable is matched by every error returned from Open.
var ErrUnavailable = errors.New("postgres unavailable")

// Config holds pool settings. Zero values keep the pgxpool defaults, except
// ConnectTimeout which falls back to defaultConnectTimeout.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

const defaultConnectTimeout = 2 * time.Second

// Handle is created once at startup and shared by every repository.
type Handle struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open creates the pool and pings it within the connect timeout.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Handle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	safe := RedactDSN(cfg.DSN)

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn %s: %v", ErrUnavailable, safe, redactErr(err, cfg.DSN))
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	poolCfg.ConnConfig.ConnectTimeout = timeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool %s: %w", ErrUnavailable, safe, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrUnavailable, safe, err)
	}

	logger.Info("connected to database",
		zap.String("dsn", safe),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &Handle{pool: pool, logger: logger}, nil
}

// Pool returns the shared pool.
func (h *Handle) Pool() *pgxpool.Pool { return h.pool }

// Ping checks the store is reachable.
func (h *Handle) Ping(ctx context.Context) error { return h.pool.Ping(ctx) }

// Close releases every pooled connection. Safe to call more than once.
func (h *Handle) Close() {
	h.pool.Close()
	h.logger.Debug("database pool closed")
}

// RedactDSN hides the credentials of a URL or keyword/value DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		fields := strings.Fields(dsn)
		for i, f := range fields {
			if strings.HasPrefix(f, "password=") {
				fields[i] = "password=***"
			}
		}
		return strings.Join(fields, " ")
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

// pgx parse errors may echo the raw connection string.
func redactErr(err error, dsn string) string {
	msg := err.Error()
	if dsn == "" {
		return msg
	}
	return strings.ReplaceAll(msg, dsn, RedactDSN(dsn))
}
