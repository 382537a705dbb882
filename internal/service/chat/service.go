package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/devmatch/internal/app"
	"github.com/oggyb/devmatch/internal/db"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/metrics"
	"github.com/oggyb/devmatch/internal/profile"
	"github.com/oggyb/devmatch/internal/repository"
	"github.com/oggyb/devmatch/internal/utils/validate"
)

// Service manages conversations between matched users and the messages in them.
type Service struct {
	appCtx   *app.AppContext
	users    *repository.UserRepository
	matches  *repository.MatchRepository
	convs    *repository.ConversationRepository
	messages *repository.MessageRepository
}

// NewChatService creates a new Chat service with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		users:    repository.NewUserRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
		convs:    repository.NewConversationRepository(appCtx.DB),
		messages: repository.NewMessageRepository(appCtx.DB),
	}
}

// lookupErr turns a missing row into NOT_FOUND(msg) and anything else into INTERNAL.
func lookupErr(err error, msg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound(msg)
	}
	return svcErr.Internal(internalMsg, err)
}

// CheckConversation reports whether the caller already has a thread with
// another user and whether anything was said in it.
func (s *Service) CheckConversation(ctx context.Context, userID string, req CheckConversationRequest) (*CheckConversationResult, error) {
	s.appCtx.Logger.Debug("CheckConversation called", "user", userID, "other", req.UserID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	conv, err := s.convs.FindBetween(ctx, userID, req.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &CheckConversationResult{}, nil
	}
	if err != nil {
		s.appCtx.Logger.Error("FindBetween failed", "err", err)
		return nil, svcErr.Internal("Failed to check conversation", err)
	}

	count, err := s.messages.CountByConversation(ctx, conv.ID)
	if err != nil {
		s.appCtx.Logger.Error("CountByConversation failed", "err", err)
		return nil, svcErr.Internal("Failed to check conversation", err)
	}

	return &CheckConversationResult{
		Exists:       true,
		Conversation: stubOf(*conv),
		HasMessages:  count > 0,
	}, nil
}

// CreateConversation opens the thread for a match the caller is part of.
//
// Behavior:
//   - Unknown match → NOT_FOUND; caller not a party → FORBIDDEN.
//   - The conversation is upserted on the match's pair, so repeated calls
//     return the same conversation.
//   - A non-blank InitialMessage is trimmed and appended only while the
//     conversation has no messages, so a retried call never duplicates it.
//
// Example:
//
//	svc.CreateConversation(ctx, alice, CreateConversationRequest{MatchID: m.ID, InitialMessage: "hi"})
func (s *Service) CreateConversation(ctx context.Context, userID string, req CreateConversationRequest) (*ConversationStub, error) {
	s.appCtx.Logger.Debug("CreateConversation called", "user", userID, "match", req.MatchID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	initial := strings.TrimSpace(req.InitialMessage)
	if initial != "" {
		if err := validate.Var("initialMessage", initial, fmt.Sprintf("max=%d", maxContentLength)); err != nil {
			return nil, err
		}
	}

	match, err := s.matches.FindByID(ctx, req.MatchID)
	if err != nil {
		return nil, lookupErr(err, "Match not found", "Failed to create conversation")
	}
	if !match.HasParty(userID) {
		return nil, svcErr.Forbidden("You are not part of this match")
	}

	conv, created, err := s.convs.Upsert(ctx, *match)
	if err != nil {
		s.appCtx.Logger.Error("Upsert conversation failed", "err", err)
		return nil, svcErr.Internal("Failed to create conversation", err)
	}
	if created {
		metrics.ConversationCreated()
	}

	if initial == "" {
		return stubOf(*conv), nil
	}

	msg, err := s.appendMessage(ctx, *conv, userID, initial, true)
	if err != nil {
		s.appCtx.Logger.Error("append initial message failed", "err", err)
		return nil, svcErr.Internal("Failed to create conversation", err)
	}
	if msg == nil {
		return stubOf(*conv), nil
	}

	// updated_at moved with the message
	conv, err = s.convs.FindByID(ctx, conv.ID)
	if err != nil {
		return nil, svcErr.Internal("Failed to create conversation", err)
	}
	return stubOf(*conv), nil
}

// ListConversations returns the caller's threads by recency, each with the
// other party, the latest message and the caller's unread count.
func (s *Service) ListConversations(ctx context.Context, userID string, req ListConversationsRequest) (*ListConversationsResult, error) {
	s.appCtx.Logger.Debug("ListConversations called", "user", userID)

	page := req.Page.Normalize(s.appCtx.Config.Limits.DefaultPageSize, s.appCtx.Config.Limits.MaxPageSize)

	convs, total, err := s.convs.ListForUser(ctx, userID, page)
	if err != nil {
		s.appCtx.Logger.Error("ListForUser failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch conversations", err)
	}

	convIDs := make([]string, 0, len(convs))
	otherIDs := make([]string, 0, len(convs))
	for _, c := range convs {
		convIDs = append(convIDs, c.ID)
		otherIDs = append(otherIDs, c.Other(userID))
	}

	others, err := s.users.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, svcErr.Internal("Failed to fetch conversations", err)
	}
	lasts, err := s.messages.LastMessages(ctx, convIDs)
	if err != nil {
		return nil, svcErr.Internal("Failed to fetch conversations", err)
	}
	unread, err := s.messages.UnreadCounts(ctx, userID, convIDs)
	if err != nil {
		return nil, svcErr.Internal("Failed to fetch conversations", err)
	}

	resp := &ListConversationsResult{
		Conversations: make([]ConversationItem, 0, len(convs)),
		Total:         total,
		Limit:         page.Limit,
		Offset:        page.Offset,
	}
	for _, c := range convs {
		item := ConversationItem{
			ID:          c.ID,
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
			User:        summaryOr(others, c.Other(userID)),
			UnreadCount: unread[c.ID],
		}
		if m, ok := lasts[c.ID]; ok {
			v := viewOf(m)
			item.LastMessage = &v
		}
		resp.Conversations = append(resp.Conversations, item)
	}
	return resp, nil
}

func summaryOr(users map[string]db.User, id string) profile.Summary {
	if u, ok := users[id]; ok {
		return profile.SummaryOf(u)
	}
	return profile.Summary{ID: id}
}

// GetConversation returns the full history, oldest first, and the other party.
func (s *Service) GetConversation(ctx context.Context, userID string, req GetConversationRequest) (*ConversationDetail, error) {
	s.appCtx.Logger.Debug("GetConversation called", "user", userID, "conversation", req.ID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	conv, err := s.participantConversation(ctx, req.ID, userID, "Failed to fetch conversation")
	if err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		s.appCtx.Logger.Error("ListByConversation failed", "err", err)
		return nil, svcErr.Internal("Failed to fetch conversation", err)
	}
	others, err := s.users.FindByIDs(ctx, []string{conv.Other(userID)})
	if err != nil {
		return nil, svcErr.Internal("Failed to fetch conversation", err)
	}

	resp := &ConversationDetail{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		User:      summaryOr(others, conv.Other(userID)),
		Messages:  make([]MessageView, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, viewOf(m))
	}
	return resp, nil
}

// PostMessage appends a message to a conversation the caller takes part in.
//
// Behavior:
//   - Content is trimmed and must hold 1 to 1000 characters.
//   - Unknown conversation → NOT_FOUND; caller not a participant → FORBIDDEN.
//   - The insert and the conversation's updated_at bump commit together.
//   - The recipient's cached unread total is dropped.
func (s *Service) PostMessage(ctx context.Context, userID string, req PostMessageRequest) (*MessageView, error) {
	s.appCtx.Logger.Debug("PostMessage called", "user", userID, "conversation", req.ConversationID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if err := validate.Var("content", content, fmt.Sprintf("required,max=%d", maxContentLength)); err != nil {
		return nil, err
	}

	conv, err := s.participantConversation(ctx, req.ConversationID, userID, "Failed to create message")
	if err != nil {
		return nil, err
	}

	msg, err := s.appendMessage(ctx, *conv, userID, content, false)
	if err != nil {
		s.appCtx.Logger.Error("append message failed", "err", err)
		return nil, svcErr.Internal("Failed to create message", err)
	}

	v := viewOf(*msg)
	return &v, nil
}

// MarkMessageRead marks a message addressed to the caller as read.
//
// Behavior:
//   - Unknown message → NOT_FOUND; caller not a participant → FORBIDDEN.
//   - The sender cannot mark their own message → VALIDATION.
//   - read_at is set once; marking again returns the message unchanged.
func (s *Service) MarkMessageRead(ctx context.Context, userID string, req MarkMessageReadRequest) (*MessageView, error) {
	s.appCtx.Logger.Debug("MarkMessageRead called", "user", userID, "message", req.ID)

	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	msg, err := s.messages.FindByID(ctx, req.ID)
	if err != nil {
		return nil, lookupErr(err, "Message not found", "Failed to mark message as read")
	}
	if _, err := s.participantConversation(ctx, msg.ConversationID, userID, "Failed to mark message as read"); err != nil {
		return nil, err
	}
	if msg.SenderID == userID {
		return nil, svcErr.Validation("Cannot mark your own message as read")
	}

	updated, err := s.messages.MarkRead(ctx, msg.ID)
	if err != nil {
		s.appCtx.Logger.Error("MarkRead failed", "err", err)
		return nil, svcErr.Internal("Failed to mark message as read", err)
	}
	if updated {
		metrics.MessageRead()
		s.invalidateUnread(ctx, userID)
	}

	msg, err = s.messages.FindByID(ctx, msg.ID)
	if err != nil {
		return nil, svcErr.Internal("Failed to mark message as read", err)
	}
	v := viewOf(*msg)
	return &v, nil
}

// CountUnread returns the caller's unread total across all conversations.
// Cache-first strategy:
//  1. Attempts to read from Redis (unread:count:userID).
//  2. On a miss or a Redis failure, counts in the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountUnread(ctx context.Context, userID string) (*UnreadResult, error) {
	s.appCtx.Logger.Debug("CountUnread called", "user", userID)

	// try cache first
	if n, ok, err := s.appCtx.RedisCache.GetUnreadCount(ctx, userID); err == nil && ok {
		return &UnreadResult{Count: n}, nil
	} else if err != nil {
		s.appCtx.Logger.Warn("unread cache read failed", "err", err)
	}

	// fallback: DB
	count, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		s.appCtx.Logger.Error("CountUnread failed", "err", err)
		return nil, svcErr.Internal("Failed to count unread messages", err)
	}

	if err := s.appCtx.RedisCache.SetUnreadCount(ctx, userID, count); err != nil {
		s.appCtx.Logger.Warn("unread cache write failed", "err", err)
	}
	return &UnreadResult{Count: count}, nil
}

// participantConversation loads a conversation and checks userID takes part in it.
func (s *Service) participantConversation(ctx context.Context, id, userID, internalMsg string) (*db.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Conversation not found", internalMsg)
	}
	if !conv.HasParty(userID) {
		return nil, svcErr.Forbidden("You are not part of this conversation")
	}
	return conv, nil
}

// appendMessage inserts the message and bumps the conversation in one
// transaction. With onlyIfEmpty it does nothing (nil message) when the
// conversation already has messages.
func (s *Service) appendMessage(ctx context.Context, conv db.Conversation, senderID, content string, onlyIfEmpty bool) (*db.Message, error) {
	var msg *db.Message

	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := s.messages.WithTx(tx)

		if onlyIfEmpty {
			if err := s.convs.WithTx(tx).Lock(ctx, conv.ID); err != nil {
				return err
			}
			n, err := messages.CountByConversation(ctx, conv.ID)
			if err != nil || n > 0 {
				return err
			}
		}

		m := &db.Message{ConversationID: conv.ID, SenderID: senderID, Content: content}
		if err := messages.Create(ctx, m); err != nil {
			return err
		}
		if err := s.convs.WithTx(tx).Touch(ctx, conv.ID); err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if msg != nil {
		metrics.MessageSent()
		s.invalidateUnread(ctx, conv.Other(senderID))
	}
	return msg, nil
}

func (s *Service) invalidateUnread(ctx context.Context, userIDs ...string) {
	if err := s.appCtx.RedisCache.InvalidateUnread(ctx, userIDs...); err != nil {
		s.appCtx.Logger.Warn("unread cache invalidation failed", "err", err)
	}
}
