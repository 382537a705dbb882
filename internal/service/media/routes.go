package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/devmatch/internal/auth"
	"github.com/oggyb/devmatch/internal/utils/respond"
)

// Routes registers the image endpoints on an authenticated router.
func (r *Registrar) Routes(router chi.Router) {
	h := &handler{svc: r.service}

	router.Route("/images", func(router chi.Router) {
		router.Post("/upload-url", h.createUploadURL)
		// public ids contain slashes
		router.Delete("/*", h.deleteImage)
	})
}

type handler struct {
	svc *Service
}

// POST /images/upload-url
func (h *handler) createUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.CreateUploadURL(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

// DELETE /images/users/{userId}/{uuid}
func (h *handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUser(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := h.svc.DeleteImage(r.Context(), userID, DeleteImageRequest{PublicID: chi.URLParam(r, "*")})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
