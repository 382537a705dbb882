package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

// PublicRoutes registers the credential endpoints, reachable without a token.
func (r *Registrar) PublicRoutes(router chi.Router) {
	h := &handler{svc: r.service}

	router.Post("/auth/register", h.register)
	router.Post("/auth/login", h.login)
}

// Routes registers the profile, onboarding and tag endpoints on an authenticated router.
func (r *Registrar) Routes(router chi.Router) {
	h := &handler{svc: r.service}

	// flat paths: /users/discover belongs to explore
	router.Get("/users", h.getMe)
	router.Put("/users", h.updateProfile)
	router.Delete("/users", h.deleteAccount)
	router.Get("/users/{id}", h.getProfile)

	router.Post("/onboarding", h.completeOnboarding)

	router.Get("/programming-languages", h.listLanguages)
	router.Get("/job-titles", h.listJobTitles)
}

type handler struct {
	svc *Service
}

// POST /auth/register {"firstName", "lastName", "email", "password"}
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, resp)
}

// POST /auth/login {"email", "password"}
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /users
func (h *handler) getMe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.GetMe(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /users/{id}
func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.GetProfile(r.Context(), userID, GetProfileRequest{ID: chi.URLParam(r, "id")})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// PUT /users {"bio": "...", "photo": {"url", "publicId"}, "programmingLanguages": [...]}
func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req UpdateProfileRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// DELETE /users
func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.DeleteAccount(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// POST /onboarding {"city", "country", "bio", "photo", "jobTitle", "programmingLanguages"}
func (h *handler) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req OnboardingRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.CompleteOnboarding(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /programming-languages
func (h *handler) listLanguages(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListProgrammingLanguages(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// GET /job-titles
func (h *handler) listJobTitles(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListJobTitles(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
