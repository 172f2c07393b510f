// Package api is the JSON surface. It mirrors the HTML pages so the
// store can be driven from scripts or a future mobile client.
package api

import (
	"obralog/internal/models"
	"obralog/internal/review"
)

// ProjectDTO is the project summary returned to clients. The password
// hash never leaves the store.
type ProjectDTO struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	ProjectName     string `json:"project_name"`
	Floors          int    `json:"floors"`
	HasBasements    bool   `json:"has_basements"`
	Basements       int    `json:"basements"`
	HasProfilePhoto bool   `json:"has_profile_photo"`
	TotalReviews    int    `json:"total_reviews"`
}

func toProjectDTO(username string, p models.Project) ProjectDTO {
	return ProjectDTO{
		Username:        username,
		Email:           p.Email,
		ProjectName:     p.Name,
		Floors:          p.Floors,
		HasBasements:    p.HasBasements,
		Basements:       p.Basements,
		HasProfilePhoto: len(p.ProfilePhoto) > 0,
		TotalReviews:    len(p.Reviews),
	}
}

// ReviewDTO is one review along with the index that addresses it in
// update and delete calls.
type ReviewDTO struct {
	Index        int              `json:"index"`
	Column       string           `json:"column"`
	Floor        string           `json:"floor"`
	ReviewedOn   string           `json:"reviewed_on"`
	Observations string           `json:"observations"`
	Photo        models.Photo     `json:"photo,omitempty"`
	Checklist    models.Checklist `json:"checklist"`
	History      []string         `json:"history,omitempty"`
	HasFindings  bool             `json:"has_findings"`
}

func toReviewDTO(idx int, r models.Review) ReviewDTO {
	return ReviewDTO{
		Index:        idx,
		Column:       r.Column,
		Floor:        r.Floor,
		ReviewedOn:   r.ReviewedOn.String(),
		Observations: r.Observations,
		Photo:        r.Photo,
		Checklist:    r.Checklist,
		History:      r.History,
		HasFindings:  review.HasFindings(r),
	}
}

type statsDTO struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	WithFindings int `json:"with_findings"`
}

func toStatsDTO(st review.Stats) statsDTO {
	return statsDTO{Total: st.Total, Compliant: st.Compliant, WithFindings: st.WithFindings}
}
