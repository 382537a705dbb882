package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/cache"
	"github.com/oggyb/devmatch/internal/config"
	"github.com/oggyb/devmatch/internal/storage"
)

// AppContext holds shared dependencies (DB, Redis, Logger, blob store, token issuer, config)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Blobs      storage.BlobStore
	Auth       *auth.Issuer
	Config     *config.Config
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Auth:       auth.NewIssuer(cfg.Auth),
		Config:     cfg,
	}
}

// WithBlobs sets the photo store.
func (a *AppContext) WithBlobs(b storage.BlobStore) *AppContext {
	a.Blobs = b
	return a
}
