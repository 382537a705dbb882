package explore

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/db"
	svcErr "github.com/oggyb/devmatch/internal/errors"
	"github.com/oggyb/devmatch/internal/utils/pagination"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

// Routes registers the explore endpoints on an authenticated router.
func (r *Registrar) Routes(router chi.Router) {
	h := &handler{svc: r.service}

	router.Get("/users/discover", h.discover)
	router.Get("/swipes", h.listSwipes)
	if r.limiter != nil {
		router.With(r.limiter.Middleware).Post("/swipes", h.recordSwipe)
	} else {
		router.Post("/swipes", h.recordSwipe)
	}
	router.Get("/matches", h.listMatches)
}

type handler struct {
	svc *Service
}

// GET /users/discover?excludeSwiped=true&limit=20
func (h *handler) discover(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req DiscoverRequest
	q := r.URL.Query()
	if raw := q.Get("excludeSwiped"); raw != "" {
		if req.ExcludeSwiped, err = strconv.ParseBool(raw); err != nil {
			respond.Error(w, r, svcErr.Validation("invalid excludeSwiped"))
			return
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if req.Limit, err = strconv.Atoi(raw); err != nil {
			respond.Error(w, r, svcErr.Validation("invalid limit"))
			return
		}
	}

	resp, err := h.svc.DiscoverUsers(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp.Users)
}

// POST /swipes {"toId": "...", "type": "LIKE"}
func (h *handler) recordSwipe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req SwipeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.RecordSwipe(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

// GET /swipes?type=LIKE&limit=50&offset=0
func (h *handler) listSwipes(w http.ResponseWriter, r *http.Request) {
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
	req := ListSwipesRequest{Type: db.SwipeType(r.URL.Query().Get("type")), Page: page}

	resp, err := h.svc.ListSwipes(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /matches?limit=50&offset=0
func (h *handler) listMatches(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.svc.ListMatches(r.Context(), userID, ListMatchesRequest{Page: page})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
