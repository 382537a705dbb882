package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

// MatchRepository stores one row per matched pair, keyed on the ordered
// (user_a_id, user_b_id).
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Upsert creates the match for x and y unless it already exists.
// created is true only for the call that inserted the row.
func (r *MatchRepository) Upsert(ctx context.Context, x, y string) (*db.Match, bool, error) {
	a, b := db.PairOf(x, y)
	m := db.Match{UserAID: a, UserBID: b}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return nil, false, res.Error
	}

	stored, err := r.FindBetween(ctx, a, b)
	if err != nil {
		return nil, false, err
	}
	return stored, res.RowsAffected > 0, nil
}

func (r *MatchRepository) FindByID(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindBetween looks the pair up in either argument order.
func (r *MatchRepository) FindBetween(ctx context.Context, x, y string) (*db.Match, error) {
	a, b := db.PairOf(x, y)
	var m db.Match
	if err := r.db.WithContext(ctx).Where("user_a_id = ? AND user_b_id = ?", a, b).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns the user's matches, newest first, and their total.
func (r *MatchRepository) ListForUser(ctx context.Context, userID string, page pagination.Page) ([]db.Match, int64, error) {
	q := r.db.WithContext(ctx).Model(&db.Match{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	matches := []db.Match{}
	err := q.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}
