package api

import (
	"encoding/json"
	"net/http"

	"obralog/internal/store"
)

type ProjectHandler struct {
	store *store.Store
}

func NewProjectHandler(st *store.Store) *ProjectHandler {
	return &ProjectHandler{store: st}
}

// Get returns the authenticated user's project summary.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	p, err := h.store.Project(username)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProjectDTO(username, p))
}
