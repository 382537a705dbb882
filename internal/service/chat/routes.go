package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/devmatch/internal/auth"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/utils/pagination"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

// Routes registers the conversation and message endpoints on an authenticated router.
func (r *Registrar) Routes(router chi.Router) {
	h := &handler{svc: r.service}

	router.Route("/conversations", func(router chi.Router) {
		router.Get("/", h.listConversations)
		router.Post("/", h.createConversation)
		router.Get("/check", h.checkConversation)
		router.Get("/{id}", h.getConversation)
	})

	router.Route("/messages", func(router chi.Router) {
		router.Post("/", h.postMessage)
		router.Get("/unread", h.countUnread)
		router.Patch("/{id}", h.markRead)
	})
}

type handler struct {
	svc *Service
}

// GET /conversations?limit=50&offset=0
func (h *handler) listConversations(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	page, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, r, svcErr.Validation(err.Error()))
		return
	}

	resp, err := h.svc.ListConversations(r.Context(), userID, ListConversationsRequest{Page: page})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /conversations/check?userId=...
func (h *handler) checkConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	req := CheckConversationRequest{UserID: r.URL.Query().Get("userId")}
	resp, err := h.svc.CheckConversation(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// POST /conversations {"matchId": "...", "initialMessage": "hi"}
func (h *handler) createConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req CreateConversationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.CreateConversation(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

// GET /conversations/{id}
func (h *handler) getConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.GetConversation(r.Context(), userID, GetConversationRequest{ID: chi.URLParam(r, "id")})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// POST /messages {"conversationId": "...", "content": "..."}
func (h *handler) postMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req PostMessageRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.PostMessage(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

// PATCH /messages/{id}
func (h *handler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.MarkMessageRead(r.Context(), userID, MarkMessageReadRequest{ID: chi.URLParam(r, "id")})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /messages/unread
func (h *handler) countUnread(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.CountUnread(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
