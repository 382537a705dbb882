package explore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/devmatch/internal/app/apptest"
	"github.com/oggyb/devmatch/internal/db"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/repository"
	"github.com/oggyb/devmatch/internal/service/explore"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

//
// Test helpers
//

// setupService wires an ExploreService against the fixture community:
//
//	alice: Go, Rust / Backend Engineer
//	bob:   Go / Frontend Engineer
//	carol: Python / Data Scientist
//	dave:  Go, not onboarded
//	erin:  no tags
func setupService(t *testing.T) (*explore.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	return explore.NewExploreService(env.App), env
}

func swipe(t *testing.T, svc *explore.Service, from, to string, typ db.SwipeType) *explore.SwipeResult {
	t.Helper()
	resp, err := svc.RecordSwipe(context.Background(), from, explore.SwipeRequest{ToID: to, Type: typ})
	require.NoError(t, err)
	return resp
}

func ids(users []explore.MatchItem) []string {
	out := make([]string, 0, len(users))
	for _, m := range users {
		out = append(out, m.User.ID)
	}
	return out
}

//
// Tests
//

// TestDiscoverUsers_SharedTags checks the overlap scenario: bob shares Go with
// alice, carol shares nothing, dave has not finished onboarding.
func TestDiscoverUsers_SharedTags(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.DiscoverUsers(ctx, db.FixtureAlice, explore.DiscoverRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Users, 1)
	assert.Equal(t, db.FixtureBob, resp.Users[0].ID)
	require.Len(t, resp.Users[0].ProgrammingLanguages, 1)
	assert.Equal(t, "Go", resp.Users[0].ProgrammingLanguages[0].Name)
}

// TestDiscoverUsers_NoTags ensures a user without tags gets nobody, not everybody.
func TestDiscoverUsers_NoTags(t *testing.T) {
	svc, _ := setupService(t)

	resp, err := svc.DiscoverUsers(context.Background(), db.FixtureErin, explore.DiscoverRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Users)
}

func TestDiscoverUsers_UnknownUser(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.DiscoverUsers(context.Background(), "missing", explore.DiscoverRequest{})
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))
}

func TestDiscoverUsers_ExcludeSwiped(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	swipe(t, svc, db.FixtureBob, db.FixtureAlice, db.SwipePass)

	resp, err := svc.DiscoverUsers(ctx, db.FixtureBob, explore.DiscoverRequest{ExcludeSwiped: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Users)

	// without the flag the swiped user is still listed
	resp, err = svc.DiscoverUsers(ctx, db.FixtureBob, explore.DiscoverRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, db.FixtureAlice, resp.Users[0].ID)
}

func TestRecordSwipe_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.RecordSwipe(ctx, db.FixtureAlice, explore.SwipeRequest{ToID: db.FixtureAlice, Type: db.SwipeLike})
	assert.True(t, svcErr.Is(err, svcErr.KindValidation), "self swipe")

	_, err = svc.RecordSwipe(ctx, db.FixtureAlice, explore.SwipeRequest{ToID: db.FixtureBob, Type: "MAYBE"})
	assert.True(t, svcErr.Is(err, svcErr.KindValidation), "bad type")

	_, err = svc.RecordSwipe(ctx, db.FixtureAlice, explore.SwipeRequest{ToID: "missing", Type: db.SwipeLike})
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound), "unknown target")
}

// TestRecordSwipe_DeletedCaller: a token that outlives its account cannot
// record swipes or create matches.
func TestRecordSwipe_DeletedCaller(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)

	swipe(t, svc, db.FixtureBob, db.FixtureAlice, db.SwipeLike)
	_, err := repository.NewUserRepository(env.App.DB).DeleteCascade(ctx, db.FixtureAlice)
	require.NoError(t, err)

	_, err = svc.RecordSwipe(ctx, db.FixtureAlice, explore.SwipeRequest{ToID: db.FixtureBob, Type: db.SwipeLike})
	assert.True(t, svcErr.Is(err, svcErr.KindNotFound))

	var swipes, matches int64
	require.NoError(t, env.App.DB.Model(&db.Swipe{}).Count(&swipes).Error)
	require.NoError(t, env.App.DB.Model(&db.Match{}).Count(&matches).Error)
	assert.Zero(t, swipes)
	assert.Zero(t, matches)
}

// TestRecordSwipe_MatchOnlyOnMutualLike walks LIKE, PASS, then LIKE back:
// the match appears only with the second LIKE.
func TestRecordSwipe_MatchOnlyOnMutualLike(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)

	first := swipe(t, svc, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	assert.Nil(t, first.Match)

	pass := swipe(t, svc, db.FixtureBob, db.FixtureAlice, db.SwipePass)
	assert.Nil(t, pass.Match)

	like := swipe(t, svc, db.FixtureBob, db.FixtureAlice, db.SwipeLike)
	require.NotNil(t, like.Match)
	assert.Equal(t, pass.Swipe.ID, like.Swipe.ID, "swipe overwritten in place")

	var matches int64
	require.NoError(t, env.App.DB.Model(&db.Match{}).Count(&matches).Error)
	assert.EqualValues(t, 1, matches)

	// a later PASS does not revoke the match
	swipe(t, svc, db.FixtureAlice, db.FixtureBob, db.SwipePass)
	list, err := svc.ListMatches(ctx, db.FixtureAlice, explore.ListMatchesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

// TestRecordSwipe_Idempotent repeats the completing LIKE from both sides.
func TestRecordSwipe_Idempotent(t *testing.T) {
	svc, env := setupService(t)

	swipe(t, svc, db.FixtureAlice, db.FixtureCarol, db.SwipeLike)
	m1 := swipe(t, svc, db.FixtureCarol, db.FixtureAlice, db.SwipeLike)
	m2 := swipe(t, svc, db.FixtureCarol, db.FixtureAlice, db.SwipeLike)
	m3 := swipe(t, svc, db.FixtureAlice, db.FixtureCarol, db.SwipeLike)

	require.NotNil(t, m1.Match)
	assert.Equal(t, m1.Match.ID, m2.Match.ID)
	assert.Equal(t, m1.Match.ID, m3.Match.ID)

	var swipes, matches int64
	require.NoError(t, env.App.DB.Model(&db.Swipe{}).Count(&swipes).Error)
	require.NoError(t, env.App.DB.Model(&db.Match{}).Count(&matches).Error)
	assert.EqualValues(t, 2, swipes)
	assert.EqualValues(t, 1, matches)
}

func TestListSwipes(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	swipe(t, svc, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	swipe(t, svc, db.FixtureAlice, db.FixtureCarol, db.SwipePass)

	all, err := svc.ListSwipes(ctx, db.FixtureAlice, explore.ListSwipesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, pagination.DefaultLimit, all.Limit)
	require.Len(t, all.Swipes, 2)
	assert.Equal(t, db.FixtureCarol, all.Swipes[0].User.ID, "newest first")
	assert.Equal(t, []string{"Data Scientist"}, all.Swipes[0].User.JobTitles)

	likes, err := svc.ListSwipes(ctx, db.FixtureAlice, explore.ListSwipesRequest{Type: db.SwipeLike})
	require.NoError(t, err)
	require.Len(t, likes.Swipes, 1)
	assert.Equal(t, db.FixtureBob, likes.Swipes[0].User.ID)

	_, err = svc.ListSwipes(ctx, db.FixtureAlice, explore.ListSwipesRequest{Type: "NOPE"})
	assert.True(t, svcErr.Is(err, svcErr.KindValidation))
}

func TestListMatches_ShowsOtherParty(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	swipe(t, svc, db.FixtureAlice, db.FixtureBob, db.SwipeLike)
	swipe(t, svc, db.FixtureBob, db.FixtureAlice, db.SwipeLike)
	swipe(t, svc, db.FixtureCarol, db.FixtureBob, db.SwipeLike)
	swipe(t, svc, db.FixtureBob, db.FixtureCarol, db.SwipeLike)

	bob, err := svc.ListMatches(ctx, db.FixtureBob, explore.ListMatchesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, bob.Total)
	assert.Equal(t, []string{db.FixtureCarol, db.FixtureAlice}, ids(bob.Matches))

	page, err := svc.ListMatches(ctx, db.FixtureBob, explore.ListMatchesRequest{Page: pagination.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, []string{db.FixtureAlice}, ids(page.Matches))

	alice, err := svc.ListMatches(ctx, db.FixtureAlice, explore.ListMatchesRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{db.FixtureBob}, ids(alice.Matches))
}
