package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/httpx"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(ctx context.Context, cfg *config.Config, logger *zap.Logger, books *book.HTTPHandler, db pinger) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	books.Routes(router)

	mws := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger.Named("http")),
		httpx.RecoveryMiddleware(logger.Named("http")),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
		httpx.CORSMiddleware(cfg.HTTP.AllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes),
	}
	if cfg.HTTP.RateLimitRPS > 0 {
		mws = append(mws, httpx.NewRateLimitMiddleware(ctx, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst).Middleware)
	}
	return httpx.Chain(router, mws...)
}
