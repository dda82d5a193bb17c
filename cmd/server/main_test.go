package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/nulzo/netstats/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "netstats.db")
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "0",
			Env:             "test",
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Storage: config.StorageConfig{Driver: "sqlite", DSN: dbPath},
		Cache:   config.CacheConfig{TTL: time.Second, Size: 8},
	}, dbPath
}

func TestRun_CacheFailureLeavesStorageUntouched(t *testing.T) {
	cfg, dbPath := testConfig(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg.Cache.Enabled = true
	cfg.Redis.Addr = addr

	err = run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to cache")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "storage was opened before the cache failed")
}

func TestRun_StorageFailureIsReturned(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "missing", "dir", "netstats.db")

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open sqlite storage")
}

func TestRun_CancelledContextShutsDownCleanly(t *testing.T) {
	cfg, dbPath := testConfig(t)
	cfg.Cache.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, cfg, zap.NewNop()))

	// migrations ran, so the file exists and was released
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}
