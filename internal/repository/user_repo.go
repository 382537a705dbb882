package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/devmatch/internal/db"
)

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

// UserRepository provides data access for users, their photo and the
// discovery query.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// WithTx returns a copy bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func withProfile(q *gorm.DB) *gorm.DB {
	return q.Preload("Photo").
		Preload("ProgrammingLanguages", func(db *gorm.DB) *gorm.DB { return db.Order("programming_languages.name") }).
		Preload("JobTitles", func(db *gorm.DB) *gorm.DB { return db.Order("job_titles.name") })
}

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// FindByID loads a user with photo and tags.
// Missing users surface as gorm.ErrRecordNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	if err := withProfile(r.db.WithContext(ctx)).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByIDs loads several users with photo and tags, keyed by id.
// Unknown ids are simply absent from the map.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]db.User, error) {
	out := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := withProfile(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateFields applies a partial column update. An empty map is a no-op.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(fields).Error
}

// SetPhoto upserts the user's photo and returns the one it replaced, if any.
func (r *UserRepository) SetPhoto(ctx context.Context, userID, url, publicID string) (*db.Photo, error) {
	var prev *db.Photo
	var existing db.Photo
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		prev = &existing
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	photo := db.Photo{UserID: userID, URL: url, PublicID: publicID}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"url", "public_id"}),
		}).
		Create(&photo).Error
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.PublicID == publicID {
		return nil, nil
	}
	return prev, nil
}

// DeletePhoto removes the user's photo row and returns it; nil when there was none.
func (r *UserRepository) DeletePhoto(ctx context.Context, userID string) (*db.Photo, error) {
	var p db.Photo
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// TagIDs returns the ids of the user's languages and job titles.
func (r *UserRepository) TagIDs(ctx context.Context, userID string) (langIDs, jobIDs []string, err error) {
	err = r.db.WithContext(ctx).Model(&db.UserProgrammingLanguage{}).
		Where("user_id = ?", userID).Pluck("programming_language_id", &langIDs).Error
	if err != nil {
		return nil, nil, err
	}
	err = r.db.WithContext(ctx).Model(&db.UserJobTitle{}).
		Where("user_id = ?", userID).Pluck("job_title_id", &jobIDs).Error
	if err != nil {
		return nil, nil, err
	}
	return langIDs, jobIDs, nil
}

// DiscoverQuery selects candidates for UserID.
type DiscoverQuery struct {
	UserID        string
	LanguageIDs   []string
	JobTitleIDs   []string
	ExcludeSwiped bool
	Limit         int
}

// Discover returns onboarded users other than q.UserID sharing at least one
// language or job title.
//
// Behavior:
//   - No tags on either list → empty result, no query.
//   - ExcludeSwiped drops anyone q.UserID already swiped on, LIKE or PASS.
//   - Limit <= 0 means no cap.
//   - Newest accounts first; the order carries no ranking meaning.
func (r *UserRepository) Discover(ctx context.Context, q DiscoverQuery) ([]db.User, error) {
	if len(q.LanguageIDs) == 0 && len(q.JobTitleIDs) == 0 {
		return []db.User{}, nil
	}

	langSub := r.db.Model(&db.UserProgrammingLanguage{}).Select("user_id").
		Where("programming_language_id IN ?", q.LanguageIDs)
	jobSub := r.db.Model(&db.UserJobTitle{}).Select("user_id").
		Where("job_title_id IN ?", q.JobTitleIDs)

	var overlap *gorm.DB
	switch {
	case len(q.LanguageIDs) == 0:
		overlap = r.db.Where("users.id IN (?)", jobSub)
	case len(q.JobTitleIDs) == 0:
		overlap = r.db.Where("users.id IN (?)", langSub)
	default:
		overlap = r.db.Where("users.id IN (?)", langSub).Or("users.id IN (?)", jobSub)
	}

	query := withProfile(r.db.WithContext(ctx)).
		Model(&db.User{}).
		Where("users.id <> ?", q.UserID).
		Where("users.done_onboarding = ?", true).
		Where(overlap)

	if q.ExcludeSwiped {
		swiped := r.db.Model(&db.Swipe{}).Select("to_id").Where("from_id = ?", q.UserID)
		query = query.Where("users.id NOT IN (?)", swiped)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	users := []db.User{}
	if err := query.Order("users.created_at DESC, users.id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteCascade removes the user and everything hanging off them in one
// transaction: messages and conversations they take part in, matches,
// swipes in both directions, tag links and photo. The removed photo (if any)
// is returned so the caller can drop the blob.
func (r *UserRepository) DeleteCascade(ctx context.Context, userID string) (*db.Photo, error) {
	var photo *db.Photo

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u db.User
		if err := tx.Select("id").Where("id = ?", userID).First(&u).Error; err != nil {
			return err
		}

		convs := tx.Model(&db.Conversation{}).Select("id").
			Where("user_a_id = ? OR user_b_id = ?", userID, userID)
		if err := tx.Where("conversation_id IN (?)", convs).Delete(&db.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", userID, userID).Delete(&db.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", userID, userID).Delete(&db.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("from_id = ? OR to_id = ?", userID, userID).Delete(&db.Swipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&db.UserProgrammingLanguage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&db.UserJobTitle{}).Error; err != nil {
			return err
		}

		var p db.Photo
		err := tx.Where("user_id = ?", userID).First(&p).Error
		switch {
		case err == nil:
			photo = &p
			if err := tx.Delete(&p).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return tx.Where("id = ?", userID).Delete(&db.User{}).Error
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}
