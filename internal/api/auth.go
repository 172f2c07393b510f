package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"obralog/internal/auth"
	"obralog/internal/models"
	"obralog/internal/store"
)

type AuthHandler struct {
	store  *store.Store
	tokens *auth.TokenManager
}

func NewAuthHandler(st *store.Store, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens}
}

type registerRequest struct {
	Username     string       `json:"username"`
	Password     string       `json:"password"`
	Email        string       `json:"email"`
	ProjectName  string       `json:"project_name"`
	Floors       int          `json:"floors"`
	HasBasements bool         `json:"has_basements"`
	Basements    int          `json:"basements"`
	ProfilePhoto models.Photo `json:"profile_photo"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a project account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := auth.ValidateCredentials(req.Username, req.Password, req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := models.NewProject(auth.HashPassword(req.Password), req.Email, req.ProjectName,
		req.Floors, req.HasBasements, req.Basements)
	p.ProfilePhoto = req.ProfilePhoto

	if err := h.store.Register(req.Username, p); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			http.Error(w, "username already registered", http.StatusConflict)
			return
		}
		http.Error(w, "could not save project", http.StatusInternalServerError)
		return
	}

	token, err := h.tokens.Issue(req.Username)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"token": token})
}

// Login verifies credentials and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	p, err := h.store.Project(c.Username)
	if err != nil || !auth.VerifyPassword(c.Password, p.PasswordHash) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(c.Username)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token})
}
