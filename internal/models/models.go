package models

import (
	"encoding/base64"
	"encoding/json"
)

// Status rates a single checklist item.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non_compliant"
)

// ChecklistItem is the rating of one inspection point. Observation
// carries the finding text and is only meaningful while the item is
// non-compliant.
type ChecklistItem struct {
	Status      Status `json:"status"`
	Observation string `json:"observation"`
}

// Checklist maps checklist item keys (see the review package for the
// six fixed keys) to their rating.
type Checklist map[string]ChecklistItem

// Review is one inspection record for a single column at a given floor
// and date. History holds free-text lines appended when later edits
// correct non-compliant items.
type Review struct {
	Column       string    `json:"column"`
	Floor        string    `json:"floor"`
	ReviewedOn   Date      `json:"reviewed_on"`
	Observations string    `json:"observations"`
	Photo        Photo     `json:"photo,omitempty"`
	Checklist    Checklist `json:"checklist"`
	History      []string  `json:"history,omitempty"`
}

// Project is one project/user account. The username is the key of the
// store document rather than a field. Basements is 0 whenever
// HasBasements is false.
type Project struct {
	PasswordHash string   `json:"password_hash"`
	Email        string   `json:"email"`
	Name         string   `json:"project_name"`
	Floors       int      `json:"floors"`
	HasBasements bool     `json:"has_basements"`
	Basements    int      `json:"basements"`
	ProfilePhoto Photo    `json:"profile_photo,omitempty"`
	Reviews      []Review `json:"reviews"`
}

// NewProject assembles a project record with the registration form's
// lower bounds applied: at least 1 floor, and a basement count of 0
// without basements or at least 1 with them.
func NewProject(passwordHash, email, name string, floors int, hasBasements bool, basements int) Project {
	if floors < 1 {
		floors = 1
	}
	if !hasBasements {
		basements = 0
	} else if basements < 1 {
		basements = 1
	}
	return Project{
		PasswordHash: passwordHash,
		Email:        email,
		Name:         name,
		Floors:       floors,
		HasBasements: hasBasements,
		Basements:    basements,
		Reviews:      []Review{},
	}
}

// Photo is raw image bytes in memory; on the wire and on disk it is a
// base64 string.
type Photo []byte

func (p Photo) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(base64.StdEncoding.EncodeToString(p))
}

// UnmarshalJSON degrades rather than fails: anything that is not valid
// base64 text loads as no photo.
func (p *Photo) UnmarshalJSON(data []byte) error {
	*p = nil
	var s *string
	if err := json.Unmarshal(data, &s); err != nil || s == nil || *s == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(*s)
	if err != nil {
		return nil
	}
	*p = raw
	return nil
}
