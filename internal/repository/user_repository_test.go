package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/db/dbtest"
	"github.com/oggyb/devmatch/internal/repository"
)

func ids(users []db.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(dbtest.Seeded(t))

	err := repo.Create(ctx, &db.User{FirstName: "Al", LastName: "Ice", Email: "alice@test.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u := &db.User{FirstName: "New", LastName: "Comer", Email: "new@test.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
}

func TestFindByID_PreloadsProfile(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(dbtest.Seeded(t))

	u, err := repo.FindByID(ctx, db.FixtureAlice)
	require.NoError(t, err)
	require.Len(t, u.ProgrammingLanguages, 2)
	assert.Equal(t, "Go", u.ProgrammingLanguages[0].Name)
	assert.Equal(t, "Rust", u.ProgrammingLanguages[1].Name)
	require.Len(t, u.JobTitles, 1)
	assert.Nil(t, u.Photo)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Seeded(t)
	repo := repository.NewUserRepository(gdb)

	langs, jobs, err := repo.TagIDs(ctx, db.FixtureAlice)
	require.NoError(t, err)

	users, err := repo.Discover(ctx, repository.DiscoverQuery{
		UserID: db.FixtureAlice, LanguageIDs: langs, JobTitleIDs: jobs,
	})
	require.NoError(t, err)
	// bob shares Go; carol shares nothing; dave is not onboarded; erin has no tags
	assert.Equal(t, []string{db.FixtureBob}, ids(users))
	require.Len(t, users[0].ProgrammingLanguages, 1, "candidates come with their tags")

	// job title overlap alone is enough
	users, err = repo.Discover(ctx, repository.DiscoverQuery{
		UserID: db.FixtureErin, JobTitleIDs: []string{"job-data"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{db.FixtureCarol}, ids(users))

	// no tags → nothing
	users, err = repo.Discover(ctx, repository.DiscoverQuery{UserID: db.FixtureErin})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDiscover_ExcludeSwipedAndLimit(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Seeded(t)
	repo := repository.NewUserRepository(gdb)
	swipes := repository.NewSwipeRepository(gdb)

	q := repository.DiscoverQuery{UserID: db.FixtureCarol, LanguageIDs: []string{"lang-go", "lang-python"}}
	users, err := repo.Discover(ctx, q)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{db.FixtureAlice, db.FixtureBob}, ids(users))

	_, err = swipes.Upsert(ctx, db.FixtureCarol, db.FixtureBob, db.SwipePass)
	require.NoError(t, err)

	q.ExcludeSwiped = true
	users, err = repo.Discover(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{db.FixtureAlice}, ids(users))

	q.ExcludeSwiped = false
	q.Limit = 1
	users, err = repo.Discover(ctx, q)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSetPhoto_ReturnsReplaced(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(dbtest.Seeded(t))

	prev, err := repo.SetPhoto(ctx, db.FixtureBob, "https://cdn/a", "users/b/a")
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = repo.SetPhoto(ctx, db.FixtureBob, "https://cdn/b", "users/b/b")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "users/b/a", prev.PublicID)

	u, err := repo.FindByID(ctx, db.FixtureBob)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/b", u.Photo.URL)
}

func TestDeletePhoto(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(dbtest.Seeded(t))

	removed, err := repo.DeletePhoto(ctx, db.FixtureBob)
	require.NoError(t, err)
	assert.Nil(t, removed)

	_, err = repo.SetPhoto(ctx, db.FixtureBob, "https://cdn/a", "users/b/a")
	require.NoError(t, err)

	removed, err = repo.DeletePhoto(ctx, db.FixtureBob)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "users/b/a", removed.PublicID)

	u, err := repo.FindByID(ctx, db.FixtureBob)
	require.NoError(t, err)
	assert.Nil(t, u.Photo)
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Seeded(t)
	users := repository.NewUserRepository(gdb)
	swipes := repository.NewSwipeRepository(gdb)
	matches := repository.NewMatchRepository(gdb)
	convs := repository.NewConversationRepository(gdb)
	msgs := repository.NewMessageRepository(gdb)

	_, err := users.SetPhoto(ctx, db.FixtureAlice, "https://cdn/a", "users/a/1")
	require.NoError(t, err)
	_, err = swipes.Upsert(ctx, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	require.NoError(t, err)
	_, err = swipes.Upsert(ctx, db.FixtureBob, db.FixtureAlice, db.SwipeLike)
	require.NoError(t, err)
	m, _, err := matches.Upsert(ctx, db.FixtureAlice, db.FixtureBob)
	require.NoError(t, err)
	c, _, err := convs.Upsert(ctx, *m)
	require.NoError(t, err)
	require.NoError(t, msgs.Create(ctx, &db.Message{ConversationID: c.ID, SenderID: db.FixtureBob, Content: "hi"}))

	photo, err := users.DeleteCascade(ctx, db.FixtureAlice)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, "users/a/1", photo.PublicID)

	for _, model := range []any{&db.Swipe{}, &db.Match{}, &db.Conversation{}, &db.Message{}, &db.Photo{}} {
		var n int64
		require.NoError(t, gdb.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left", model)
	}
	var links int64
	require.NoError(t, gdb.Model(&db.UserProgrammingLanguage{}).Where("user_id = ?", db.FixtureAlice).Count(&links).Error)
	assert.Zero(t, links)

	ok, err := users.Exists(ctx, db.FixtureAlice)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = users.DeleteCascade(ctx, db.FixtureAlice)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
