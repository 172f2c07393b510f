package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"obralog/internal/models"
	"obralog/internal/review"
	"obralog/internal/store"
)

type ReviewHandler struct {
	store *store.Store
}

func NewReviewHandler(st *store.Store) *ReviewHandler {
	return &ReviewHandler{store: st}
}

type reviewRequest struct {
	Column       string           `json:"column"`
	Floor        string           `json:"floor"`
	ReviewedOn   string           `json:"reviewed_on"` // YYYY-MM-DD, today when empty
	Observations string           `json:"observations"`
	Photo        models.Photo     `json:"photo"` // on update, empty keeps the stored photo
	Checklist    models.Checklist `json:"checklist"`
	// CorrectionNote annotates items fixed by this update. Ignored on
	// create.
	CorrectionNote string `json:"correction_note"`
}

func (req reviewRequest) toInput() (review.Input, error) {
	in := review.Input{
		Column:       req.Column,
		Floor:        req.Floor,
		Observations: req.Observations,
		Photo:        req.Photo,
		Checklist:    req.Checklist,
	}
	if req.ReviewedOn != "" {
		date, err := models.ParseDate(req.ReviewedOn)
		if err != nil {
			return review.Input{}, err
		}
		in.ReviewedOn = date
	}
	return in, nil
}

// List returns the user's reviews, optionally filtered to one floor
// with ?floor=.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	p, err := h.store.Project(username)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	floor := r.URL.Query().Get("floor")
	out := []ReviewDTO{}
	for i, rev := range p.Reviews {
		if floor != "" && rev.Floor != floor {
			continue
		}
		out = append(out, toReviewDTO(i, rev))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Archive returns the floor-grouped view with the same stats the HTML
// archive page shows.
func (h *ReviewHandler) Archive(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	p, err := h.store.Project(username)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	groups, floors := review.GroupByFloor(p.Reviews)
	grouped := make(map[string][]ReviewDTO, len(groups))
	for floor, list := range groups {
		dtos := make([]ReviewDTO, 0, len(list))
		for _, ir := range list {
			dtos = append(dtos, toReviewDTO(ir.Index, ir.Review))
		}
		grouped[floor] = dtos
	}

	response := map[string]any{
		"stats":  toStatsDTO(review.Summarize(p.Reviews)),
		"floors": floors,
		"groups": grouped,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Create appends a new review and returns it with its index.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "invalid reviewed_on format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	built, err := review.Build(in, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idx, err := h.store.AddReview(username, built)
	if err != nil {
		http.Error(w, "could not save review", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toReviewDTO(idx, built))
}

// Update replaces the review at {idx}, carrying the stored photo when
// none is sent and annotating corrected items in the history.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Error(w, "invalid review index", http.StatusBadRequest)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "invalid reviewed_on format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	prev, err := h.store.Review(username, idx)
	if err != nil {
		http.Error(w, "review not found", http.StatusNotFound)
		return
	}

	built, err := review.Build(in, &prev)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	review.AppendCorrections(prev, &built, req.CorrectionNote, models.Today())

	if err := h.store.UpdateReview(username, idx, built); err != nil {
		if errors.Is(err, store.ErrNoSuchReview) {
			http.Error(w, "review not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not save review", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toReviewDTO(idx, built))
}

// Delete removes the review at {idx}. Later reviews shift down one
// index.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := r.Context().Value("username").(string)
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		http.Error(w, "invalid review index", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteReview(username, idx); err != nil {
		if errors.Is(err, store.ErrNoSuchReview) {
			http.Error(w, "review not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete review", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
