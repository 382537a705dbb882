package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/devmatch/internal/db"
)

// TagRepository owns the programming language and job title reference
// tables and the user links into them. Upsert-by-name is the only way
// tag rows are written.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(database *gorm.DB) *TagRepository {
	return &TagRepository{db: database}
}

func (r *TagRepository) WithTx(tx *gorm.DB) *TagRepository {
	return &TagRepository{db: tx}
}

// UpsertLanguages finds or creates a language per name.
// created reports whether any new row was inserted.
func (r *TagRepository) UpsertLanguages(ctx context.Context, names []string) ([]db.ProgrammingLanguage, bool, error) {
	return upsertByName(r.db.WithContext(ctx), names, func(n string) db.ProgrammingLanguage {
		return db.ProgrammingLanguage{Name: n}
	})
}

// UpsertJobTitles finds or creates a job title per name.
func (r *TagRepository) UpsertJobTitles(ctx context.Context, names []string) ([]db.JobTitle, bool, error) {
	return upsertByName(r.db.WithContext(ctx), names, func(n string) db.JobTitle {
		return db.JobTitle{Name: n}
	})
}

// upsertByName inserts missing names (conflicts on the unique name are
// ignored) and reads every requested row back.
func upsertByName[T any](q *gorm.DB, names []string, mk func(string) T) ([]T, bool, error) {
	names = CleanNames(names)
	out := []T{}
	if len(names) == 0 {
		return out, false, nil
	}

	rows := make([]T, 0, len(names))
	for _, n := range names {
		rows = append(rows, mk(n))
	}
	res := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		return nil, false, res.Error
	}

	var model T
	if err := q.Model(&model).Where("name IN ?", names).Order("name").Find(&out).Error; err != nil {
		return nil, false, err
	}
	return out, res.RowsAffected > 0, nil
}

// CleanNames trims, drops blanks and de-duplicates while keeping order.
func CleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// LinkLanguages adds (user, language) links; existing links are kept.
func (r *TagRepository) LinkLanguages(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	links := make([]db.UserProgrammingLanguage, 0, len(ids))
	for _, id := range ids {
		links = append(links, db.UserProgrammingLanguage{UserID: userID, ProgrammingLanguageID: id})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// LinkJobTitles adds (user, job title) links; existing links are kept.
func (r *TagRepository) LinkJobTitles(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	links := make([]db.UserJobTitle, 0, len(ids))
	for _, id := range ids {
		links = append(links, db.UserJobTitle{UserID: userID, JobTitleID: id})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// ReplaceLanguages makes ids the user's complete language set.
// Run inside a transaction.
func (r *TagRepository) ReplaceLanguages(ctx context.Context, userID string, ids []string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.UserProgrammingLanguage{}).Error; err != nil {
		return err
	}
	return r.LinkLanguages(ctx, userID, ids)
}

// ReplaceJobTitles makes ids the user's complete job title set.
// Run inside a transaction.
func (r *TagRepository) ReplaceJobTitles(ctx context.Context, userID string, ids []string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.UserJobTitle{}).Error; err != nil {
		return err
	}
	return r.LinkJobTitles(ctx, userID, ids)
}

func (r *TagRepository) ListLanguages(ctx context.Context) ([]db.ProgrammingLanguage, error) {
	out := []db.ProgrammingLanguage{}
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *TagRepository) ListJobTitles(ctx context.Context) ([]db.JobTitle, error) {
	out := []db.JobTitle{}
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}
