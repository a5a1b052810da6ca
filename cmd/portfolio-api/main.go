package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portfolio "github.com/Misiix9/portfolio-api"
	"github.com/Misiix9/portfolio-api/config"
	"github.com/Misiix9/portfolio-api/metrics"
	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("Could not load .env file", "error", err)
	}
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("portfolio-api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := portfolio.Deps{Config: cfg, Metrics: metrics.New()}

	if url := cfg.RedisURL(); url != "" {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		deps.Cache = oclient.NewRedisTokenCache(rdb)
		logger.Info("token cache enabled", "addr", opt.Addr)
	}

	if uri := cfg.MongoURI(); uri != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(connectCtx, nil)
		}
		cancel()
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		deps.Vault = oclient.NewMongoVault(client.Database(cfg.MongoDatabase()))
		logger.Info("token vault enabled", "database", cfg.MongoDatabase())
	}

	handler, err := portfolio.New(deps)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}
