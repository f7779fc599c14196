package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/api"
	"github.com/vishwajeetsingh04/interview-engine/internal/cleanup"
	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/questions"
	"github.com/vishwajeetsingh04/interview-engine/internal/session"
	"github.com/vishwajeetsingh04/interview-engine/internal/storage"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting interview-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Local fan-out for websocket observers plus a Redis mirror for
	// out-of-process subscribers.
	hub := notify.NewHub()
	redisPub, err := notify.NewRedisPublisher(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Error("failed to create redis publisher", "error", err)
		os.Exit(1)
	}
	publisher := notify.Multi{hub, redisPub}

	// Load question catalog
	questionLoader := questions.NewLoader()
	if err := questionLoader.LoadFromDir(cfg.Questions.Dir); err != nil {
		slog.Warn("failed to load question sets from dir", "dir", cfg.Questions.Dir, "error", err)
	}

	// Initialize engine and session registry
	engine := warnings.NewEngine(cfg.Engine)
	registry := session.NewRegistry(engine, cfg.Report, repo, publisher)

	// Initialize session sweeper
	cleaner := cleanup.NewCleaner(registry, hub,
		cfg.Sessions.IdleTimeout,
		cfg.Sessions.Retention,
		cfg.Sessions.SweepInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start sweeper
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, cfg.Engine, registry, repo, questionLoader, hub, redisPub)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// End any sessions still live so no session dangles without a report.
	for _, m := range registry.List() {
		if !m.Status().IsTerminal() {
			if _, err := m.End(shutdownCtx, true); err != nil {
				slog.Error("failed to end session on shutdown", "error", err, "id", m.ID())
			}
		}
	}

	if err := redisPub.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("interview-engine stopped")
}
