// Package review implements the inspection checklist and the pure
// logic behind creating, correcting and browsing column reviews.
package review

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"obralog/internal/models"
)

// Item is one of the six fixed inspection points every review covers.
type Item struct {
	Key   string
	Label string
}

var items = []Item{
	{Key: "stirrups", Label: "Stirrup count"},
	{Key: "longitudinal_steel", Label: "Longitudinal steel count"},
	{Key: "cover", Label: "Cover"},
	{Key: "steel_position", Label: "Steel position"},
	{Key: "axis_location", Label: "Axis location"},
	{Key: "splice", Label: "Splice"},
}

// Items returns the checklist items in display order.
func Items() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// LabelOf returns the display label for an item key, or the key itself
// when it is not one of the fixed items.
func LabelOf(key string) string {
	for _, it := range items {
		if it.Key == key {
			return it.Label
		}
	}
	return key
}

// DefaultChecklist returns a checklist with every item compliant.
func DefaultChecklist() models.Checklist {
	return normalize(nil)
}

var (
	ErrColumnRequired = errors.New("column name is required")
	ErrFloorRequired  = errors.New("floor is required")
)

// Input carries one submitted review, from either surface.
type Input struct {
	Column       string
	Floor        string
	ReviewedOn   models.Date
	Observations string
	Photo        models.Photo
	Checklist    models.Checklist
}

// Build validates and normalizes in into a review. prev is the review
// being edited, nil on create. A missing date becomes today, the
// previous photo is kept when no new one was uploaded, and the
// previous history is carried over.
func Build(in Input, prev *models.Review) (models.Review, error) {
	column := strings.TrimSpace(in.Column)
	floor := strings.TrimSpace(in.Floor)
	if column == "" {
		return models.Review{}, ErrColumnRequired
	}
	if floor == "" {
		return models.Review{}, ErrFloorRequired
	}

	date := in.ReviewedOn
	if date.IsZero() {
		date = models.Today()
	}

	r := models.Review{
		Column:       column,
		Floor:        floor,
		ReviewedOn:   date,
		Observations: strings.TrimSpace(in.Observations),
		Checklist:    normalize(in.Checklist),
	}
	if prev != nil {
		r.History = append(r.History, prev.History...)
	}
	switch {
	case len(in.Photo) > 0:
		r.Photo = in.Photo
	case prev != nil:
		r.Photo = prev.Photo
	}
	return r, nil
}

// normalize fills in the six fixed items. Status defaults to compliant
// and an item's observation survives only while it is non-compliant.
// Keys outside the fixed set are dropped.
func normalize(c models.Checklist) models.Checklist {
	out := make(models.Checklist, len(items))
	for _, it := range items {
		entry := c[it.Key]
		if entry.Status == models.StatusNonCompliant {
			entry.Observation = strings.TrimSpace(entry.Observation)
		} else {
			entry.Status = models.StatusCompliant
			entry.Observation = ""
		}
		out[it.Key] = entry
	}
	return out
}

// AppendCorrections compares prev's checklist with next's and appends
// one dated history line to next for every item that moved from
// non-compliant to compliant. note is the single correction note
// entered on the form and applies to all items corrected in this save.
func AppendCorrections(prev models.Review, next *models.Review, note string, today models.Date) {
	note = strings.TrimSpace(note)
	for _, it := range items {
		before := prev.Checklist[it.Key]
		after := next.Checklist[it.Key]
		if before.Status != models.StatusNonCompliant || after.Status == models.StatusNonCompliant {
			continue
		}
		was := before.Observation
		if was == "" {
			was = "no observation"
		}
		line := fmt.Sprintf("[%s] %s corrected. Previous note: '%s'. Correction note: '%s'", today, it.Label, was, note)
		next.History = append(next.History, line)
	}
}

// HasFindings reports whether any checklist item is non-compliant.
func HasFindings(r models.Review) bool {
	for _, entry := range r.Checklist {
		if entry.Status == models.StatusNonCompliant {
			return true
		}
	}
	return false
}

// Indexed pairs a review with its position in the project's list,
// which is how edit and delete address it.
type Indexed struct {
	Index  int
	Review models.Review
}

// GroupByFloor buckets reviews by floor label and returns the groups
// along with the floor labels in lexical order. Reviews keep their
// insertion order within a floor.
func GroupByFloor(reviews []models.Review) (map[string][]Indexed, []string) {
	groups := make(map[string][]Indexed)
	for i, r := range reviews {
		floor := r.Floor
		if floor == "" {
			floor = "unspecified"
		}
		groups[floor] = append(groups[floor], Indexed{Index: i, Review: r})
	}
	floors := make([]string, 0, len(groups))
	for f := range groups {
		floors = append(floors, f)
	}
	sort.Strings(floors)
	return groups, floors
}

// Stats summarizes a set of reviews.
type Stats struct {
	Total        int
	Compliant    int
	WithFindings int
}

// Summarize counts how many reviews are fully compliant and how many
// have at least one finding.
func Summarize(reviews []models.Review) Stats {
	st := Stats{Total: len(reviews)}
	for _, r := range reviews {
		if HasFindings(r) {
			st.WithFindings++
		} else {
			st.Compliant++
		}
	}
	return st
}
