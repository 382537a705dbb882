package account

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/db"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/metrics"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/repository"
	"github.com/oggyb/devmatch/internal/storage"
	"github.com/oggyb/devmatch/internal/utils/validate"
)

// cache kinds for the tag snapshots
const (
	kindLanguages = "languages"
	kindJobTitles = "job-titles"
)

// Service owns accounts: credentials, the user's own profile, onboarding
// and the tag reference lists.
type Service struct {
	appCtx  *app.AppContext
	users   *repository.UserRepository
	tags    *repository.TagRepository
	matches *repository.MatchRepository
	convs   *repository.ConversationRepository
}

// NewAccountService creates a new Account service with dependencies from AppContext.
func NewAccountService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		users:   repository.NewUserRepository(appCtx.DB),
		tags:    repository.NewTagRepository(appCtx.DB),
		matches: repository.NewMatchRepository(appCtx.DB),
		convs:   repository.NewConversationRepository(appCtx.DB),
	}
}

// Register creates an account with a bcrypt password hash.
//
// Behavior:
//   - Names are trimmed and must keep at least 2 characters.
//   - The email is lower-cased; a taken email → VALIDATION "Account is already in use".
//   - The account starts with an empty bio and onboarding not done.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	req.normalize()
	s.appCtx.Logger.Debug("Register called", "email", req.Email)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Internal("Failed to register", err)
	}

	u := &db.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, svcErr.Validation("Account is already in use")
		}
		s.appCtx.Logger.Error("Create user failed", "err", err)
		return nil, svcErr.Internal("Failed to register", err)
	}

	metrics.UserRegistered()
	s.appCtx.Logger.Info("user registered", "user", u.ID)
	return &RegisterResult{User: profile.OwnFromUser(*u)}, nil
}

// Login checks credentials and issues an access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	s.appCtx.Logger.Debug("Login called", "email", req.Email)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		s.appCtx.Logger.Error("FindByEmail failed", "err", err)
		return nil, svcErr.Internal("Failed to log in", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, svcErr.Unauthorized("Invalid credentials")
	}

	token, exp, err := s.appCtx.Auth.Issue(u.ID)
	if err != nil {
		return nil, svcErr.Internal("Failed to log in", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, UserID: u.ID, DoneOnboarding: u.DoneOnboarding}, nil
}

// GetMe returns the caller's full profile.
func (s *Service) GetMe(ctx context.Context, userID string) (*profile.Own, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "Failed to load profile")
	}
	own := profile.OwnFromUser(*u)
	return &own, nil
}

// GetProfile returns another user's public profile, or the caller's own.
//
// Behavior:
//   - Own profile adds email and onboarding state.
//   - Someone else's profile adds the match id when the two have matched.
func (s *Service) GetProfile(ctx context.Context, userID string, req GetProfileRequest) (*ProfileResult, error) {
	s.appCtx.Logger.Debug("GetProfile called", "user", userID, "target", req.ID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, req.ID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "Failed to load profile")
	}

	if u.ID == userID {
		own := profile.OwnFromUser(*u)
		done := own.DoneOnboarding
		return &ProfileResult{Public: own.Public, Email: own.Email, DoneOnboarding: &done}, nil
	}

	out := &ProfileResult{Public: profile.FromUser(*u)}
	m, err := s.matches.FindBetween(ctx, userID, u.ID)
	switch {
	case err == nil:
		out.Match = &MatchRef{MatchID: m.ID}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.appCtx.Logger.Error("FindBetween failed", "err", err)
		return nil, svcErr.Internal("Failed to load profile", err)
	}
	return out, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
//
// Behavior:
//   - Only provided fields change; text fields are trimmed.
//   - Photo must reference an object under the caller's upload prefix
//     (FORBIDDEN otherwise); the replaced blob is removed best-effort.
//   - RemovePhoto drops the photo; it cannot be combined with Photo.
//   - A provided tag list replaces the user's tags; missing tags are created.
//
// Example:
//
//	bio := "Gopher"
//	svc.UpdateProfile(ctx, alice, UpdateProfileRequest{Bio: &bio, ProgrammingLanguages: []string{"Go"}})
func (s *Service) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*profile.Own, error) {
	req.normalize()
	s.appCtx.Logger.Debug("UpdateProfile called", "user", userID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Photo != nil && req.RemovePhoto {
		return nil, svcErr.Validation("photo and removePhoto cannot be combined")
	}
	if err := s.checkPhoto(userID, req.Photo); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID, "Failed to update profile"); err != nil {
		return nil, err
	}

	var replaced *db.Photo
	var created tagChanges

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		tags := s.tags.WithTx(tx)

		if err := users.UpdateFields(ctx, userID, req.fields()); err != nil {
			return err
		}

		var err error
		switch {
		case req.Photo != nil:
			replaced, err = users.SetPhoto(ctx, userID, req.Photo.URL, req.Photo.PublicID)
		case req.RemovePhoto:
			replaced, err = users.DeletePhoto(ctx, userID)
		}
		if err != nil {
			return err
		}

		if req.ProgrammingLanguages != nil {
			rows, isNew, err := tags.UpsertLanguages(ctx, req.ProgrammingLanguages)
			if err != nil {
				return err
			}
			if err := tags.ReplaceLanguages(ctx, userID, languageIDs(rows)); err != nil {
				return err
			}
			created.languages = isNew
		}
		if req.JobTitles != nil {
			rows, isNew, err := tags.UpsertJobTitles(ctx, req.JobTitles)
			if err != nil {
				return err
			}
			if err := tags.ReplaceJobTitles(ctx, userID, jobTitleIDs(rows)); err != nil {
				return err
			}
			created.jobTitles = isNew
		}
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("UpdateProfile transaction failed", "err", err)
		return nil, svcErr.Internal("Failed to update profile", err)
	}

	s.afterProfileWrite(ctx, replaced, created)
	return s.GetMe(ctx, userID)
}

// CompleteOnboarding stores the onboarding form and marks the account as
// onboarded.
//
// Behavior:
//   - Runs as one transaction bounded by Limits.OnboardingTimeout.
//   - Tags are found or created by name and linked additively, so a retried
//     submission neither duplicates rows nor loses earlier links.
//   - The photo follows the same ownership rule as UpdateProfile.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string, req OnboardingRequest) (*profile.Own, error) {
	req.normalize()
	s.appCtx.Logger.Debug("CompleteOnboarding called", "user", userID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.checkPhoto(userID, req.Photo); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID, "Failed to complete onboarding"); err != nil {
		return nil, err
	}

	txCtx := ctx
	if timeout := s.appCtx.Config.Limits.OnboardingTimeout; timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var replaced *db.Photo
	var created tagChanges

	err := s.appCtx.DB.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		tags := s.tags.WithTx(tx)

		err := users.UpdateFields(txCtx, userID, map[string]any{
			"city":            req.City,
			"country":         req.Country,
			"bio":             req.Bio,
			"done_onboarding": true,
		})
		if err != nil {
			return err
		}

		if req.Photo != nil {
			if replaced, err = users.SetPhoto(txCtx, userID, req.Photo.URL, req.Photo.PublicID); err != nil {
				return err
			}
		}

		langs, isNew, err := tags.UpsertLanguages(txCtx, req.ProgrammingLanguages)
		if err != nil {
			return err
		}
		created.languages = isNew
		if err := tags.LinkLanguages(txCtx, userID, languageIDs(langs)); err != nil {
			return err
		}

		if req.JobTitle != "" {
			titles, isNew, err := tags.UpsertJobTitles(txCtx, []string{req.JobTitle})
			if err != nil {
				return err
			}
			created.jobTitles = isNew
			if err := tags.LinkJobTitles(txCtx, userID, jobTitleIDs(titles)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Error("onboarding transaction failed", "user", userID, "err", err)
		return nil, svcErr.Internal("Failed to complete onboarding", err)
	}

	s.appCtx.Logger.Info("onboarding completed", "user", userID)
	s.afterProfileWrite(ctx, replaced, created)
	return s.GetMe(ctx, userID)
}

// DeleteAccount removes the caller and everything that references them:
// messages, conversations, matches, swipes in both directions, tag links
// and the photo. The photo blob is removed best-effort afterwards.
func (s *Service) DeleteAccount(ctx context.Context, userID string) (*DeleteResult, error) {
	s.appCtx.Logger.Debug("DeleteAccount called", "user", userID)

	partners, err := s.convs.PartnerIDs(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("PartnerIDs failed", "err", err)
		return nil, svcErr.Internal("Failed to delete account", err)
	}

	photo, err := s.users.DeleteCascade(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User not found", "Failed to delete account")
	}

	metrics.UserDeleted()
	s.appCtx.Logger.Info("account deleted", "user", userID)

	s.deleteBlob(ctx, photo)
	if err := s.appCtx.RedisCache.InvalidateUnread(ctx, append(partners, userID)...); err != nil {
		s.appCtx.Logger.Warn("unread cache invalidation failed", "err", err)
	}
	return &DeleteResult{Message: "Account deleted"}, nil
}

// ListProgrammingLanguages returns every known language sorted by name.
// The list is served from a Redis snapshot while it is fresh.
func (s *Service) ListProgrammingLanguages(ctx context.Context) (*LanguagesResult, error) {
	var tags []profile.Tag
	if s.cachedTags(ctx, kindLanguages, &tags) {
		return &LanguagesResult{ProgrammingLanguages: tags, Total: len(tags)}, nil
	}

	rows, err := s.tags.ListLanguages(ctx)
	if err != nil {
		s.appCtx.Logger.Error("ListLanguages failed", "err", err)
		return nil, svcErr.Internal("Failed to load programming languages", err)
	}
	tags = profile.LanguageTags(rows)
	s.storeTags(ctx, kindLanguages, tags)
	return &LanguagesResult{ProgrammingLanguages: tags, Total: len(tags)}, nil
}

// ListJobTitles returns every known job title sorted by name.
func (s *Service) ListJobTitles(ctx context.Context) (*JobTitlesResult, error) {
	var tags []profile.Tag
	if s.cachedTags(ctx, kindJobTitles, &tags) {
		return &JobTitlesResult{JobTitles: tags, Total: len(tags)}, nil
	}

	rows, err := s.tags.ListJobTitles(ctx)
	if err != nil {
		s.appCtx.Logger.Error("ListJobTitles failed", "err", err)
		return nil, svcErr.Internal("Failed to load job titles", err)
	}
	tags = profile.JobTitleTags(rows)
	s.storeTags(ctx, kindJobTitles, tags)
	return &JobTitlesResult{JobTitles: tags, Total: len(tags)}, nil
}

type tagChanges struct {
	languages bool
	jobTitles bool
}

func (s *Service) requireUser(ctx context.Context, userID, internalMsg string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return svcErr.Internal(internalMsg, err)
	}
	if !ok {
		return svcErr.NotFound("User not found")
	}
	return nil
}

func (s *Service) checkPhoto(userID string, p *PhotoInput) error {
	if p == nil {
		return nil
	}
	if !storage.OwnedBy(userID, p.PublicID) {
		return svcErr.Forbidden("Photo does not belong to you")
	}
	return nil
}

// afterProfileWrite runs the side effects of a committed profile change.
func (s *Service) afterProfileWrite(ctx context.Context, replaced *db.Photo, created tagChanges) {
	s.deleteBlob(ctx, replaced)
	if created.languages {
		s.invalidateTags(ctx, kindLanguages)
	}
	if created.jobTitles {
		s.invalidateTags(ctx, kindJobTitles)
	}
}

func (s *Service) deleteBlob(ctx context.Context, p *db.Photo) {
	if p == nil || p.PublicID == "" || s.appCtx.Blobs == nil {
		return
	}
	if err := s.appCtx.Blobs.Delete(ctx, p.PublicID); err != nil {
		s.appCtx.Logger.Warn("photo blob delete failed", "key", p.PublicID, "err", err)
	}
}

func (s *Service) cachedTags(ctx context.Context, kind string, dst *[]profile.Tag) bool {
	ok, err := s.appCtx.RedisCache.GetTags(ctx, kind, dst)
	if err != nil {
		s.appCtx.Logger.Warn("tag cache read failed", "kind", kind, "err", err)
		return false
	}
	return ok
}

func (s *Service) storeTags(ctx context.Context, kind string, tags []profile.Tag) {
	if err := s.appCtx.RedisCache.SetTags(ctx, kind, tags); err != nil {
		s.appCtx.Logger.Warn("tag cache write failed", "kind", kind, "err", err)
	}
}

func (s *Service) invalidateTags(ctx context.Context, kind string) {
	if err := s.appCtx.RedisCache.InvalidateTags(ctx, kind); err != nil {
		s.appCtx.Logger.Warn("tag cache invalidation failed", "kind", kind, "err", err)
	}
}

func lookupErr(err error, msg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound(msg)
	}
	return svcErr.Internal(internalMsg, err)
}

func languageIDs(rows []db.ProgrammingLanguage) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func jobTitleIDs(rows []db.JobTitle) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}
