package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"obralog/internal/middleware"
	"obralog/internal/models"
)

// ProfilePhoto serves the project's profile photo, 404 when none was
// uploaded.
func (h *Handler) ProfilePhoto(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	p, err := h.store.Project(username)
	if err != nil || len(p.ProfilePhoto) == 0 {
		http.NotFound(w, r)
		return
	}
	servePhoto(w, p.ProfilePhoto)
}

// ReviewPhoto serves the photo of the review at {idx}.
func (h *Handler) ReviewPhoto(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	rev, err := h.store.Review(username, idx)
	if err != nil || len(rev.Photo) == 0 {
		http.NotFound(w, r)
		return
	}
	servePhoto(w, rev.Photo)
}

// Indexes shift when reviews are deleted, so photo URLs must not be
// cached.
func servePhoto(w http.ResponseWriter, photo models.Photo) {
	w.Header().Set("Content-Type", http.DetectContentType(photo))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(photo)
}
