package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"obralog/internal/middleware"
	"obralog/internal/models"
	"obralog/internal/review"
)

// reviewForm is everything home.html needs to draw the review form,
// blank or prefilled.
type reviewForm struct {
	Editing        bool
	Index          int
	Column         string
	Floor          string
	ReviewedOn     string
	Observations   string
	HasPhoto       bool
	ShowCorrection bool
	Items          []checklistView
}

func blankForm() reviewForm {
	return reviewForm{
		ReviewedOn: models.Today().String(),
		Items:      checklistViews(review.DefaultChecklist()),
	}
}

func editFormOf(idx int, r models.Review) reviewForm {
	return reviewForm{
		Editing:        true,
		Index:          idx,
		Column:         r.Column,
		Floor:          r.Floor,
		ReviewedOn:     r.ReviewedOn.String(),
		Observations:   r.Observations,
		HasPhoto:       len(r.Photo) > 0,
		ShowCorrection: review.HasFindings(r),
		Items:          checklistViews(r.Checklist),
	}
}

// formFromInput rebuilds the form view from a rejected submission so
// the entered values survive the error.
func formFromInput(in review.Input) reviewForm {
	date := in.ReviewedOn
	if date.IsZero() {
		date = models.Today()
	}
	return reviewForm{
		Column:       in.Column,
		Floor:        in.Floor,
		ReviewedOn:   date.String(),
		Observations: in.Observations,
		Items:        checklistViews(in.Checklist),
	}
}

func (h *Handler) renderHome(w http.ResponseWriter, username string, form reviewForm, errMsg, notice string) {
	p, err := h.store.Project(username)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	renderTemplate(w, "home.html", map[string]any{
		"LoggedIn":        true,
		"Username":        username,
		"ProjectName":     p.Name,
		"Floors":          p.Floors,
		"Basements":       p.Basements,
		"TotalReviews":    len(p.Reviews),
		"HasProfilePhoto": len(p.ProfilePhoto) > 0,
		"Form":            form,
		"Error":           errMsg,
		"Notice":          notice,
	})
}

// Home is the landing page: the welcome text when logged out, the
// project summary and a blank review form when logged in.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.Username(r)
	if !ok {
		renderTemplate(w, "welcome.html", map[string]any{})
		return
	}
	notice := ""
	switch {
	case r.URL.Query().Get("saved") == "1":
		notice = "Review saved."
	case r.URL.Query().Get("updated") == "1":
		notice = "Review updated."
	}
	h.renderHome(w, username, blankForm(), "", notice)
}

// EditReviewForm renders the form prefilled with the review at {idx}.
// An index that no longer exists falls back to the blank form.
func (h *Handler) EditReviewForm(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	rev, err := h.store.Review(username, idx)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderHome(w, username, editFormOf(idx, rev), "", "")
}

// CreateReview saves a new review from the form.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	in, _ := reviewInputFromForm(r)

	built, err := review.Build(in, nil)
	if err != nil {
		h.renderHome(w, username, formFromInput(in), err.Error(), "")
		return
	}
	if _, err := h.store.AddReview(username, built); err != nil {
		h.renderHome(w, username, formFromInput(in), "Could not save the review. Try again.", "")
		return
	}
	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

// UpdateReview replaces the review at {idx}, keeping the stored photo
// when no new one was uploaded and noting corrected items in the
// history.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	prev, err := h.store.Review(username, idx)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	in, note := reviewInputFromForm(r)
	built, err := review.Build(in, &prev)
	if err != nil {
		form := formFromInput(in)
		form.Editing = true
		form.Index = idx
		form.HasPhoto = len(prev.Photo) > 0
		form.ShowCorrection = review.HasFindings(prev)
		h.renderHome(w, username, form, err.Error(), "")
		return
	}
	review.AppendCorrections(prev, &built, note, models.Today())

	if err := h.store.UpdateReview(username, idx, built); err != nil {
		form := editFormOf(idx, prev)
		h.renderHome(w, username, form, "Could not update the review. Try again.", "")
		return
	}
	http.Redirect(w, r, "/?updated=1", http.StatusSeeOther)
}

// DeleteReview removes the review at {idx}. The first submit redirects
// back to the archive asking for confirmation; only a confirmed submit
// deletes.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Redirect(w, r, "/archive", http.StatusSeeOther)
		return
	}
	rev, err := h.store.Review(username, idx)
	if err != nil {
		http.Redirect(w, r, "/archive", http.StatusSeeOther)
		return
	}

	floor := url.QueryEscape(rev.Floor)
	if r.FormValue("confirm") != "1" {
		http.Redirect(w, r, "/archive?floor="+floor+"&confirm="+strconv.Itoa(idx), http.StatusSeeOther)
		return
	}
	if err := h.store.DeleteReview(username, idx); err != nil {
		http.Redirect(w, r, "/archive?floor="+floor, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/archive?floor="+floor+"&deleted=1", http.StatusSeeOther)
}
