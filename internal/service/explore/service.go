package explore

import (
	"context"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/db"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/metrics"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/repository"
	"github.com/oggyb/devmatch/internal/utils/validate"
)

// Service implements discovery, swiping and the match list.
// Every method takes the authenticated caller's id explicitly.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	swipes  *repository.SwipeRepository
	matches *repository.MatchRepository
}

// NewExploreService creates a new Explore service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the user, swipe and match repositories)
//   - Limits from the app config for page sizes
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		swipes:  repository.NewSwipeRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
	}
}

// DiscoverUsers returns onboarded users sharing at least one programming
// language or job title with the caller.
//
// Behavior:
//   - Unknown caller → NOT_FOUND.
//   - Caller without any tags → empty list, not "everyone".
//   - ExcludeSwiped hides users the caller already swiped on.
//   - Limit > 0 truncates the list; 0 means no cap.
//
// Example:
//
//	svc.DiscoverUsers(ctx, alice, DiscoverRequest{ExcludeSwiped: true, Limit: 20})
func (s *Service) DiscoverUsers(ctx context.Context, userID string, req DiscoverRequest) (*DiscoverResult, error) {
	s.appCtx.Logger.Debug("DiscoverUsers called", "user", userID, "exclude_swiped", req.ExcludeSwiped, "limit", req.Limit)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("Exists failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch discover users", err)
	}
	if !exists {
		return nil, svcErr.NotFound("User not found")
	}

	langIDs, jobIDs, err := s.users.TagIDs(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("TagIDs failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch discover users", err)
	}

	users, err := s.users.Discover(ctx, repository.DiscoverQuery{
		UserID:        userID,
		LanguageIDs:   langIDs,
		JobTitleIDs:   jobIDs,
		ExcludeSwiped: req.ExcludeSwiped,
		Limit:         req.Limit,
	})
	if err != nil {
		s.appCtx.Logger.Error("Discover failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch discover users", err)
	}

	resp := &DiscoverResult{Users: make([]profile.Public, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, profile.FromUser(u))
	}

	s.appCtx.Logger.Debug("DiscoverUsers result", "count", len(resp.Users))
	return resp, nil
}

// RecordSwipe stores the caller's decision on another user and creates the
// match when the like is mutual.
//
// Behavior:
//   - Type must be LIKE or PASS; swiping on yourself is a VALIDATION error.
//   - Unknown target → NOT_FOUND.
//   - Repeating a swipe overwrites its type; it never adds a row.
//   - On LIKE, a reciprocal LIKE upserts the Match for the sorted pair, so
//     racing swipes from both sides still yield one Match.
//   - A later PASS never removes an existing Match.
//
// Example:
//
//	svc.RecordSwipe(ctx, alice, SwipeRequest{ToID: bob, Type: db.SwipeLike})
func (s *Service) RecordSwipe(ctx context.Context, fromID string, req SwipeRequest) (*SwipeResult, error) {
	s.appCtx.Logger.Debug("RecordSwipe called", "from", fromID, "to", req.ToID, "type", req.Type)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if fromID == req.ToID {
		return nil, svcErr.Validation("Cannot swipe on yourself")
	}

	// the caller's token may outlive a deleted account
	for _, id := range []string{fromID, req.ToID} {
		exists, err := s.users.Exists(ctx, id)
		if err != nil {
			s.appCtx.Logger.Error("Exists failed", "err", err)
			return nil, svcErr.Internal("Failed to create swipe", err)
		}
		if exists {
			continue
		}
		if id == fromID {
			return nil, svcErr.NotFound("User not found")
		}
		return nil, svcErr.NotFound("Target user not found")
	}

	swipe, err := s.swipes.Upsert(ctx, fromID, req.ToID, req.Type)
	if err != nil {
		s.appCtx.Logger.Error("Upsert swipe failed", "err", err)
		return nil, svcErr.Internal("Failed to create swipe", err)
	}
	metrics.SwipeRecorded(string(req.Type))

	resp := &SwipeResult{
		Swipe: SwipeView{ID: swipe.ID, Type: swipe.Type, CreatedAt: swipe.CreatedAt},
	}
	if req.Type != db.SwipeLike {
		return resp, nil
	}

	// check if target also liked the caller → match
	mutual, err := s.swipes.HasLiked(ctx, req.ToID, fromID)
	if err != nil {
		s.appCtx.Logger.Error("HasLiked failed", "err", err)
		return nil, svcErr.Internal("Failed to create swipe", err)
	}
	if !mutual {
		return resp, nil
	}

	match, created, err := s.matches.Upsert(ctx, fromID, req.ToID)
	if err != nil {
		s.appCtx.Logger.Error("Upsert match failed", "err", err)
		return nil, svcErr.Internal("Failed to create swipe", err)
	}
	if created {
		metrics.MatchCreated()
		s.appCtx.Logger.Info("match created", "match", match.ID)
	}

	resp.Match = &MatchView{ID: match.ID, CreatedAt: match.CreatedAt}
	return resp, nil
}

// ListSwipes returns the caller's outgoing swipes, most recent first,
// optionally filtered by type.
//
// Example:
//
//	svc.ListSwipes(ctx, alice, ListSwipesRequest{Type: db.SwipeLike})
func (s *Service) ListSwipes(ctx context.Context, userID string, req ListSwipesRequest) (*ListSwipesResult, error) {
	s.appCtx.Logger.Debug("ListSwipes called", "user", userID, "type", req.Type)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	page := req.Page.Normalize(s.appCtx.Config.Limits.DefaultPageSize, s.appCtx.Config.Limits.MaxPageSize)

	swipes, total, err := s.swipes.ListByUser(ctx, userID, req.Type, page)
	if err != nil {
		s.appCtx.Logger.Error("ListByUser failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch swipes", err)
	}

	ids := make([]string, 0, len(swipes))
	for _, sw := range swipes {
		ids = append(ids, sw.ToID)
	}
	targets, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.appCtx.Logger.Error("FindByIDs failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch swipes", err)
	}

	resp := &ListSwipesResult{
		Swipes: make([]SwipeHistoryItem, 0, len(swipes)),
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for _, sw := range swipes {
		target, ok := targets[sw.ToID]
		if !ok {
			continue
		}
		resp.Swipes = append(resp.Swipes, SwipeHistoryItem{
			ID:        sw.ID,
			Type:      sw.Type,
			CreatedAt: sw.CreatedAt,
			User:      swipeTarget(target),
		})
	}
	return resp, nil
}

// ListMatches returns the caller's matches, newest first, each with the
// other party's public profile.
func (s *Service) ListMatches(ctx context.Context, userID string, req ListMatchesRequest) (*ListMatchesResult, error) {
	s.appCtx.Logger.Debug("ListMatches called", "user", userID)

	page := req.Page.Normalize(s.appCtx.Config.Limits.DefaultPageSize, s.appCtx.Config.Limits.MaxPageSize)

	matches, total, err := s.matches.ListForUser(ctx, userID, page)
	if err != nil {
		s.appCtx.Logger.Error("ListForUser failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch matches", err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Other(userID))
	}
	others, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.appCtx.Logger.Error("FindByIDs failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch matches", err)
	}

	resp := &ListMatchesResult{
		Matches: make([]MatchItem, 0, len(matches)),
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	for _, m := range matches {
		other, ok := others[m.Other(userID)]
		if !ok {
			continue
		}
		resp.Matches = append(resp.Matches, MatchItem{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			User:      profile.FromUser(other),
		})
	}
	return resp, nil
}
