// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the novel archive HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the text pipeline, domain services and download jobs.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/novelvault/internal/api"
	"github.com/taibuivan/novelvault/internal/auth"
	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/core/chapter"
	"github.com/taibuivan/novelvault/internal/detect"
	"github.com/taibuivan/novelvault/internal/jobs"
	"github.com/taibuivan/novelvault/internal/platform/config"
	"github.com/taibuivan/novelvault/internal/platform/constants"
	"github.com/taibuivan/novelvault/internal/platform/migration"
	pgstore "github.com/taibuivan/novelvault/internal/platform/postgres"
	redisstore "github.com/taibuivan/novelvault/internal/platform/redis"
	"github.com/taibuivan/novelvault/internal/platform/sec"
	"github.com/taibuivan/novelvault/internal/reformat"
	"github.com/taibuivan/novelvault/internal/scrape"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("download_concurrency", cfg.DownloadConcurrency),
		slog.Bool("convert_to_traditional", cfg.ConvertToTraditional),
	)

	// Misconfiguration should fail fast rather than hang.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Text Pipeline ──────────────────────────────────────────────────
	converter, err := reformat.NewOpenCC()
	must(log, err, "load opencc dictionaries")
	reformatter := reformat.New(converter, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	bookService := book.NewService(book.NewRepository(pool), log)
	chapterService := chapter.NewService(chapter.NewRepository(pool), bookService, reformatter, cfg.ConvertToTraditional, log)
	authService := auth.NewService(cfg.AdminUsername, cfg.AdminPasswordHash, tokenService, log)

	runner := jobs.NewRunner(
		jobs.NewRedisStore(rdb),
		jobs.NewHub(),
		scrape.NewClient(cfg.Scraper, log),
		chapterService,
		cfg.DownloadConcurrency,
		log,
	)
	jobsHandler := jobs.NewHandler(runner)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		Database: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		Jobs:     func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, api.Options{
		Port:     cfg.ServerPort,
		CORS:     cfg,
		Verifier: tokenService,
	}, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Domains: []api.RouteRegistrar{
			auth.NewHandler(authService),
			book.NewHandler(bookService),
			chapter.NewHandler(chapterService),
			detect.NewHandler(reformatter),
			jobsHandler,
		},
		Streams: []api.StreamRegistrar{jobsHandler},
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
	}

	// Running downloads are cancelled; their jobs are saved as cancelled.
	runner.Close()

	log.Info("server_stopped")
}

// newLogger builds the JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
