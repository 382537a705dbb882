package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

// SwipeRepository provides data access methods for the Swipe model.
// It encapsulates all queries related to likes/passes between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

func (r *SwipeRepository) WithTx(tx *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: tx}
}

// Upsert inserts or updates the swipe made by from -> to and returns the stored row.
//
// Behavior:
//   - If (from_id, to_id) exists → type and updated_at are overwritten.
//   - If it doesn’t exist → a new row is inserted.
//   - The unique pair index makes duplicate submissions collapse into one row.
//
// Example:
//
//	repo.Upsert(ctx, alice, bob, db.SwipeLike) // alice liked bob
func (r *SwipeRepository) Upsert(ctx context.Context, fromID, toID string, typ db.SwipeType) (*db.Swipe, error) {
	swipe := db.Swipe{FromID: fromID, ToID: toID, Type: typ}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_id"}, {Name: "to_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(&swipe).Error
	if err != nil {
		return nil, err
	}

	// the conflict path leaves the generated id behind; read the real row
	var stored db.Swipe
	if err := r.db.WithContext(ctx).
		Where("from_id = ? AND to_id = ?", fromID, toID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// HasLiked checks whether from has a LIKE on record for to.
//
// Example:
//
//	repo.HasLiked(ctx, bob, alice) // -> true if bob liked alice
func (r *SwipeRepository) HasLiked(ctx context.Context, fromID, toID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("from_id = ? AND to_id = ? AND type = ?", fromID, toID, db.SwipeLike).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns the user's outgoing swipes, most recently changed first,
// plus the total matching the filter.
func (r *SwipeRepository) ListByUser(
	ctx context.Context,
	fromID string,
	typ db.SwipeType,
	page pagination.Page,
) ([]db.Swipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&db.Swipe{}).Where("from_id = ?", fromID)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	swipes := []db.Swipe{}
	err := q.Order("updated_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&swipes).Error
	if err != nil {
		return nil, 0, err
	}
	return swipes, total, nil
}
