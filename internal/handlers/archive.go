package handlers

import (
	"net/http"
	"strconv"

	"obralog/internal/middleware"
	"obralog/internal/models"
	"obralog/internal/review"
)

// archiveReview is one review prepared for the archive template, with
// the checklist split into compliant and non-compliant items.
type archiveReview struct {
	Index         int
	Column        string
	Floor         string
	ReviewedOn    string
	Observations  string
	HasFindings   bool
	Compliant     []itemView
	NonCompliant  []itemView
	HasPhoto      bool
	History       []string
	ConfirmDelete bool
}

type itemView struct {
	Label       string
	Observation string
}

func archiveReviewView(ir review.Indexed, confirmIdx int) archiveReview {
	rev := ir.Review
	v := archiveReview{
		Index:         ir.Index,
		Column:        rev.Column,
		Floor:         rev.Floor,
		ReviewedOn:    rev.ReviewedOn.String(),
		Observations:  rev.Observations,
		HasFindings:   review.HasFindings(rev),
		HasPhoto:      len(rev.Photo) > 0,
		History:       rev.History,
		ConfirmDelete: ir.Index == confirmIdx,
	}
	for _, it := range review.Items() {
		entry := rev.Checklist[it.Key]
		if entry.Status == models.StatusNonCompliant {
			v.NonCompliant = append(v.NonCompliant, itemView{Label: it.Label, Observation: entry.Observation})
		} else {
			v.Compliant = append(v.Compliant, itemView{Label: it.Label})
		}
	}
	return v
}

// Archive shows the stats and the reviews of one floor at a time,
// picked with the ?floor= selector.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.Username(r)
	p, err := h.store.Project(username)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	groups, floors := review.GroupByFloor(p.Reviews)
	selected := r.URL.Query().Get("floor")
	if _, ok := groups[selected]; !ok && len(floors) > 0 {
		selected = floors[0]
	}

	confirmIdx := -1
	if v := r.URL.Query().Get("confirm"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			confirmIdx = n
		}
	}

	views := make([]archiveReview, 0, len(groups[selected]))
	for _, ir := range groups[selected] {
		views = append(views, archiveReviewView(ir, confirmIdx))
	}

	data := map[string]any{
		"LoggedIn":    true,
		"Username":    username,
		"ProjectName": p.Name,
		"Stats":       review.Summarize(p.Reviews),
		"Floors":      floors,
		"Selected":    selected,
		"Reviews":     views,
	}
	if r.URL.Query().Get("deleted") == "1" {
		data["Notice"] = "Review deleted."
	}
	renderTemplate(w, "archive.html", data)
}
