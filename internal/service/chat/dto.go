package chat

import (
	"time"

	"github.com/oggyb/devmatch/internal/db"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/utils/pagination"
)

const maxContentLength = 1000

type CheckConversationRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CheckConversationResult tells a client whether to open the existing
// thread or ask for an opening message first.
type CheckConversationResult struct {
	Exists       bool              `json:"exists"`
	Conversation *ConversationStub `json:"conversation"`
	HasMessages  bool              `json:"hasMessages"`
}

type ConversationStub struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateConversationRequest struct {
	MatchID        string `json:"matchId" validate:"required"`
	InitialMessage string `json:"initialMessage"`
}

type ListConversationsRequest struct {
	pagination.Page
}

type ConversationItem struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	User        profile.Summary `json:"user"`
	LastMessage *MessageView    `json:"lastMessage"`
	UnreadCount int64           `json:"unreadCount"`
}

type ListConversationsResult struct {
	Conversations []ConversationItem `json:"conversations"`
	Total         int64              `json:"total"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
}

type GetConversationRequest struct {
	ID string `json:"id" validate:"required"`
}

type ConversationDetail struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	User      profile.Summary `json:"user"`
	Messages  []MessageView   `json:"messages"`
}

type PostMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Content        string `json:"content"`
}

type MarkMessageReadRequest struct {
	ID string `json:"id" validate:"required"`
}

type MessageView struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"createdAt"`
	IsRead         bool       `json:"isRead"`
	ReadAt         *time.Time `json:"readAt"`
}

type UnreadResult struct {
	Count int64 `json:"count"`
}

func stubOf(c db.Conversation) *ConversationStub {
	return &ConversationStub{ID: c.ID, MatchID: c.MatchID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func viewOf(m db.Message) MessageView {
	return MessageView{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		IsRead:         m.IsRead,
		ReadAt:         m.ReadAt,
	}
}
