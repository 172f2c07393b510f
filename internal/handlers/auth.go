package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"obralog/internal/auth"
	"obralog/internal/models"
	"obralog/internal/store"
)

// LoginForm renders the login page. Arriving right after registration
// shows a confirmation notice.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Username": ""}
	if r.URL.Query().Get("registered") == "1" {
		data["Notice"] = "Project and user registered. You can now log in."
	}
	renderTemplate(w, "login.html", data)
}

// Login checks the credentials and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	p, err := h.store.Project(username)
	if err != nil || !auth.VerifyPassword(password, p.PasswordHash) {
		renderTemplate(w, "login.html", map[string]any{
			"Error":    "Incorrect username or password.",
			"Username": username,
		})
		return
	}

	token, err := h.tokens.Issue(username)
	if err != nil {
		http.Error(w, "could not open session", http.StatusInternalServerError)
		return
	}
	auth.SetSessionCookie(w, token, h.tokens.TTL())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterForm renders the blank registration page.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "register.html", map[string]any{
		"Username":     "",
		"Email":        "",
		"ProjectName":  "",
		"Floors":       1,
		"HasBasements": false,
		"Basements":    1,
	})
}

// Register creates the project account from the registration form.
// Validation failures re-render the form with the entered values.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(32 << 20) // 32MB max

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	email := strings.TrimSpace(r.FormValue("email"))
	projectName := strings.TrimSpace(r.FormValue("project_name"))
	floors, _ := strconv.Atoi(r.FormValue("floors"))
	hasBasements := r.FormValue("has_basements") == "yes"
	basements, _ := strconv.Atoi(r.FormValue("basements"))

	rerender := func(msg string) {
		renderTemplate(w, "register.html", map[string]any{
			"Error":        msg,
			"Username":     username,
			"Email":        email,
			"ProjectName":  projectName,
			"Floors":       floors,
			"HasBasements": hasBasements,
			"Basements":    basements,
		})
	}

	if err := auth.ValidateCredentials(username, password, email); err != nil {
		rerender(err.Error())
		return
	}

	p := models.NewProject(auth.HashPassword(password), email, projectName,
		floors, hasBasements, basements)
	if file, _, err := r.FormFile("profile_photo"); err == nil {
		defer file.Close()
		if raw, err := io.ReadAll(file); err == nil {
			p.ProfilePhoto = raw
		}
	}

	if err := h.store.Register(username, p); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			rerender("That username is already taken. Choose another one.")
			return
		}
		rerender("Could not save the project. Try again.")
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
