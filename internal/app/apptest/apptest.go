// Package apptest wires an AppContext against in-memory backends:
// SQLite with the fixture community, miniredis and a recording blob store.
package apptest

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/cache"
	"github.com/oggyb/devmatch/internal/config"
	"github.com/oggyb/devmatch/internal/db/dbtest"
	"github.com/oggyb/devmatch/internal/logger"
	"github.com/oggyb/devmatch/internal/storage"
)

// Blobs is an in-memory storage.BlobStore that records deletions.
type Blobs struct {
	mu        sync.Mutex
	deleted   []string
	DeleteErr error
}

func (b *Blobs) PresignUpload(_ context.Context, key string) (storage.Upload, error) {
	return storage.Upload{
		URL:       "https://upload.test/" + key + "?X-Amz-Signature=test",
		Key:       key,
		ExpiresAt: time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC),
	}, nil
}

func (b *Blobs) PublicURL(key string) string { return "https://cdn.test/" + key }

func (b *Blobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.deleted = append(b.deleted, key)
	return nil
}

// Deleted returns the keys removed so far.
func (b *Blobs) Deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deleted...)
}

// Env is a ready AppContext plus handles on the fakes behind it.
type Env struct {
	App   *app.AppContext
	Redis *miniredis.Miniredis
	Blobs *Blobs
}

// New builds an Env with the fixture community seeded. Each call is isolated.
func New(t *testing.T) *Env {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	redisCache := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = redisCache.Close() })

	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	blobs := &Blobs{}

	appCtx := app.New(dbtest.Seeded(t), redisCache, log, cfg).WithBlobs(blobs)
	return &Env{App: appCtx, Redis: mr, Blobs: blobs}
}
