package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/devmatch/internal/db"
)

// MessageRepository provides access to messages and their read state.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{db: tx}
}

func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByConversation returns the full history, oldest first.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]db.Message, error) {
	msgs := []db.Message{}
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

// LastMessages returns the newest message of each conversation, keyed by
// conversation id. Conversations without messages are absent.
// Message ids are time-ordered, so on equal created_at the later id wins.
func (r *MessageRepository) LastMessages(ctx context.Context, conversationIDs []string) (map[string]db.Message, error) {
	out := make(map[string]db.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	latest := r.db.Model(&db.Message{}).
		Select("conversation_id, MAX(created_at)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where("(conversation_id, created_at) IN (?)", latest).
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if _, ok := out[m.ConversationID]; !ok {
			out[m.ConversationID] = m
		}
	}
	return out, nil
}

type unreadRow struct {
	ConversationID string
	Count          int64
}

// UnreadCounts counts, per conversation, messages not sent by userID and
// not yet read.
func (r *MessageRepository) UnreadCounts(ctx context.Context, userID string, conversationIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	var rows []unreadRow
	err := r.db.WithContext(ctx).Model(&db.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ?", conversationIDs).
		Where("sender_id <> ? AND is_read = ?", userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Count
	}
	return out, nil
}

// CountUnread is the total of UnreadCounts across every conversation of userID.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	convs := r.db.Model(&db.Conversation{}).Select("id").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID)

	var count int64
	err := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("conversation_id IN (?)", convs).
		Where("sender_id <> ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips is_read once. updated is false when the message was
// already read, in which case read_at is left untouched.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": r.db.NowFunc(),
		})
	return res.RowsAffected > 0, res.Error
}
