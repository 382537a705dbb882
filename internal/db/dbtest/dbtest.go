// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/devmatch/internal/db"
)

// Clock hands out strictly increasing timestamps so ordering by
// created_at/updated_at is deterministic within a test.
type Clock struct {
	base time.Time
	tick atomic.Int64
}

func NewClock() *Clock {
	return &Clock{base: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	n := c.tick.Add(1)
	return c.base.Add(time.Duration(n) * time.Millisecond)
}

// New returns a migrated database private to t.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	clock := NewClock()
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		NowFunc:                clock.Now,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and avoids table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// Seeded is New plus the minimal fixture community.
func Seeded(t *testing.T) *gorm.DB {
	t.Helper()
	database := New(t)
	require.NoError(t, db.SeedMinimalTestData(database))
	return database
}
