package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/db/dbtest"
	"github.com/oggyb/devmatch/internal/repository"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

func TestUpsertSwipe_Overwrites(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Seeded(t)
	repo := repository.NewSwipeRepository(gdb)

	first, err := repo.Upsert(ctx, db.FixtureAlice, db.FixtureBob, db.SwipePass)
	require.NoError(t, err)

	// overwrite with like
	second, err := repo.Upsert(ctx, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same row")
	assert.Equal(t, db.SwipeLike, second.Type)

	var n int64
	require.NoError(t, gdb.Model(&db.Swipe{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.Seeded(t))

	_, err := repo.Upsert(ctx, db.FixtureBob, db.FixtureAlice, db.SwipePass)
	require.NoError(t, err)
	liked, err := repo.HasLiked(ctx, db.FixtureBob, db.FixtureAlice)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = repo.Upsert(ctx, db.FixtureBob, db.FixtureAlice, db.SwipeLike)
	require.NoError(t, err)
	liked, err = repo.HasLiked(ctx, db.FixtureBob, db.FixtureAlice)
	require.NoError(t, err)
	assert.True(t, liked)

	// direction matters
	liked, err = repo.HasLiked(ctx, db.FixtureAlice, db.FixtureBob)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestListByUser(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSwipeRepository(dbtest.Seeded(t))

	_, _ = repo.Upsert(ctx, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	_, _ = repo.Upsert(ctx, db.FixtureAlice, db.FixtureCarol, db.SwipePass)
	_, _ = repo.Upsert(ctx, db.FixtureAlice, db.FixtureErin, db.SwipeLike)
	_, _ = repo.Upsert(ctx, db.FixtureBob, db.FixtureAlice, db.SwipeLike)

	all, total, err := repo.ListByUser(ctx, db.FixtureAlice, "", pagination.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, db.FixtureErin, all[0].ToID, "newest first")

	likes, total, err := repo.ListByUser(ctx, db.FixtureAlice, db.SwipeLike, pagination.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, likes, 1)
	assert.Equal(t, db.FixtureBob, likes[0].ToID)
}

func TestMatchUpsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Seeded(t)
	repo := repository.NewMatchRepository(gdb)

	m1, created, err := repo.Upsert(ctx, db.FixtureBob, db.FixtureAlice)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, db.FixtureAlice, m1.UserAID, "smaller id is stored first")

	m2, created, err := repo.Upsert(ctx, db.FixtureAlice, db.FixtureBob)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, m1.ID, m2.ID)

	found, err := repo.FindBetween(ctx, db.FixtureBob, db.FixtureAlice)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, found.ID)

	_, _, err = repo.Upsert(ctx, db.FixtureAlice, db.FixtureCarol)
	require.NoError(t, err)

	list, total, err := repo.ListForUser(ctx, db.FixtureAlice, pagination.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.True(t, list[0].HasParty(db.FixtureCarol), "newest first")

	list, total, err = repo.ListForUser(ctx, db.FixtureBob, pagination.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, db.FixtureAlice, list[0].Other(db.FixtureBob))
}
