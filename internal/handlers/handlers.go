// Package handlers serves the HTML pages: registration, login, the
// review form and the floor-grouped archive. The JSON mirror of this
// surface lives in internal/api.
package handlers

import (
	"io"
	"net/http"

	"obralog/internal/auth"
	"obralog/internal/models"
	"obralog/internal/review"
	"obralog/internal/store"
)

type Handler struct {
	store  *store.Store
	tokens *auth.TokenManager
}

func New(st *store.Store, tokens *auth.TokenManager) *Handler {
	return &Handler{store: st, tokens: tokens}
}

// checklistView is one checklist item prepared for the form template.
type checklistView struct {
	Key          string
	Label        string
	NonCompliant bool
	Observation  string
}

func checklistViews(c models.Checklist) []checklistView {
	items := review.Items()
	out := make([]checklistView, 0, len(items))
	for _, it := range items {
		entry := c[it.Key]
		out = append(out, checklistView{
			Key:          it.Key,
			Label:        it.Label,
			NonCompliant: entry.Status == models.StatusNonCompliant,
			Observation:  entry.Observation,
		})
	}
	return out
}

// reviewInputFromForm reads the review form fields, including the
// optional photo upload, and returns the input alongside the
// correction note.
func reviewInputFromForm(r *http.Request) (review.Input, string) {
	r.ParseMultipartForm(32 << 20) // 32MB max

	in := review.Input{
		Column:       r.FormValue("column"),
		Floor:        r.FormValue("floor"),
		Observations: r.FormValue("observations"),
		Checklist:    models.Checklist{},
	}
	if v := r.FormValue("reviewed_on"); v != "" {
		if date, err := models.ParseDate(v); err == nil {
			in.ReviewedOn = date
		}
	}
	for _, it := range review.Items() {
		in.Checklist[it.Key] = models.ChecklistItem{
			Status:      models.Status(r.FormValue("status_" + it.Key)),
			Observation: r.FormValue("obs_" + it.Key),
		}
	}
	if file, _, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if raw, err := io.ReadAll(file); err == nil {
			in.Photo = raw
		}
	}
	return in, r.FormValue("correction_note")
}
