package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

// ConversationRepository stores at most one thread per matched pair.
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(database *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: database}
}

func (r *ConversationRepository) WithTx(tx *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: tx}
}

// Upsert opens the conversation for m's pair unless one exists.
// created is true only for the call that inserted the row.
func (r *ConversationRepository) Upsert(ctx context.Context, m db.Match) (*db.Conversation, bool, error) {
	c := db.Conversation{UserAID: m.UserAID, UserBID: m.UserBID, MatchID: m.ID}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&c)
	if res.Error != nil {
		return nil, false, res.Error
	}

	stored, err := r.FindBetween(ctx, m.UserAID, m.UserBID)
	if err != nil {
		return nil, false, err
	}
	return stored, res.RowsAffected > 0, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*db.Conversation, error) {
	var c db.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Lock takes a row lock on the conversation until the surrounding
// transaction ends. Writers that read then insert under it are serialised.
// SQLite ignores the clause and serialises writers on its own.
func (r *ConversationRepository) Lock(ctx context.Context, id string) error {
	var c db.Conversation
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&c).Error
}

// FindBetween looks the pair up in either argument order.
func (r *ConversationRepository) FindBetween(ctx context.Context, x, y string) (*db.Conversation, error) {
	a, b := db.PairOf(x, y)
	var c db.Conversation
	if err := r.db.WithContext(ctx).Where("user_a_id = ? AND user_b_id = ?", a, b).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser returns the user's conversations by recency (updated_at DESC)
// and their total.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string, page pagination.Page) ([]db.Conversation, int64, error) {
	q := r.db.WithContext(ctx).Model(&db.Conversation{}).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	convs := []db.Conversation{}
	err := q.Order("updated_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

// Touch bumps updated_at to the database clock.
func (r *ConversationRepository) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&db.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", r.db.NowFunc()).Error
}

// PartnerIDs lists everyone userID has a conversation with.
func (r *ConversationRepository) PartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var convs []db.Conversation
	err := r.db.WithContext(ctx).
		Select("user_a_id", "user_b_id").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.Other(userID))
	}
	return ids, nil
}
