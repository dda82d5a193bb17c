package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/netstats/internal/analytics"
	"github.com/nulzo/netstats/internal/config"
	"github.com/nulzo/netstats/internal/platform/logger"
	"github.com/nulzo/netstats/internal/platform/otel"
	"github.com/nulzo/netstats/internal/server"
	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/store/cache"
	"github.com/nulzo/netstats/internal/store/mongodb"
	"github.com/nulzo/netstats/internal/store/sqlite"
	"github.com/nulzo/netstats/internal/version"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger is not configured yet
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	if err := logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: logger.DefaultConfig().EnableColor,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// run owns every resource, so its deferred cleanup has finished before Fatal exits
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
	log.Info("Server stopped")
	logger.Sync()
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.Tracing.Enabled {
		shutdown, err := otel.InitTracer(cfg.Tracing.ServiceName, version.String(), log, os.Stdout)
		if err != nil {
			return fmt.Errorf("initialize tracer: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn("Tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	opts := []analytics.Option{analytics.WithLogger(log)}
	if cfg.Cache.Enabled {
		c, err := openCache(ctx, cfg.Cache, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect to cache at %q: %w", cfg.Redis.Addr, err)
		}
		if closer, ok := c.(io.Closer); ok {
			defer closer.Close()
		}
		opts = append(opts, analytics.WithCache(c, cfg.Cache.TTL))
		log.Info("Result cache enabled",
			zap.Bool("redis", cfg.Redis.Addr != ""),
			zap.Duration("ttl", cfg.Cache.TTL),
		)
	}

	repo, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Warn("Storage close failed", zap.Error(err))
		}
	}()

	svc := analytics.NewService(repo, opts...)
	return server.New(cfg, log, svc, repo).Run(ctx)
}

func openStore(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (store.Repository, error) {
	switch cfg.Driver {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return mongodb.NewMongoStorage(connectCtx, cfg.DSN, cfg.Database, cfg.Collection, log)
	default:
		return sqlite.NewSQLiteStorage(cfg.DSN, log)
	}
}

func openCache(ctx context.Context, cacheCfg config.CacheConfig, cfg config.RedisConfig) (cache.CacheService, error) {
	if cfg.Addr == "" {
		return cache.NewMemoryCache(cacheCfg.Size, cacheCfg.TTL), nil
	}
	return cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: "netstats:",
	})
}
