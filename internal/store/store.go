// Package store persists every project and its reviews as a single
// JSON document keyed by username.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"obralog/internal/metrics"
	"obralog/internal/models"
)

var (
	ErrUserExists   = errors.New("username already registered")
	ErrUnknownUser  = errors.New("unknown user")
	ErrNoSuchReview = errors.New("no review at that index")
)

// Store is the flat-file store. Every mutating operation reloads the
// file, applies the change and rewrites the whole document; the mutex
// only serializes callers inside this process. A second process writing
// the same file races with last-write-wins semantics.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a store backed by the JSON document at path. The file is
// not created until the first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the store file.
func (s *Store) Path() string {
	return s.path
}

// load reads the whole document. A missing file is an empty store; an
// unreadable or corrupt file degrades to an empty store with a warning
// rather than an error.
func (s *Store) load() map[string]*models.Project {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("store unreadable, starting empty", "path", s.path, "error", err)
			metrics.StoreLoadFailures.Inc()
		}
		return map[string]*models.Project{}
	}
	projects := map[string]*models.Project{}
	if err := json.Unmarshal(data, &projects); err != nil {
		slog.Warn("store corrupt, starting empty", "path", s.path, "error", err)
		metrics.StoreLoadFailures.Inc()
		return map[string]*models.Project{}
	}
	return projects
}

// save rewrites the whole document: indent-2 JSON written to a temp
// file in the same directory, then renamed over the target. Atomic by
// convention, not guaranteed.
func (s *Store) save(projects map[string]*models.Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// Register adds a new project under username. The username must be
// unused; nothing else is checked here.
func (s *Store) Register(username string, p models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.load()
	if _, ok := projects[username]; ok {
		return ErrUserExists
	}
	if p.Reviews == nil {
		p.Reviews = []models.Review{}
	}
	projects[username] = &p
	return s.save(projects)
}

// Project returns the record registered under username.
func (s *Store) Project(username string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.load()[username]
	if !ok {
		return models.Project{}, ErrUnknownUser
	}
	return *p, nil
}

// Review returns username's review at idx.
func (s *Store) Review(username string, idx int) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.load()[username]
	if !ok {
		return models.Review{}, ErrUnknownUser
	}
	if idx < 0 || idx >= len(p.Reviews) {
		return models.Review{}, ErrNoSuchReview
	}
	return p.Reviews[idx], nil
}

// AddReview appends r to username's review list and returns the index
// the new review is addressed by.
func (s *Store) AddReview(username string, r models.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.load()
	p, ok := projects[username]
	if !ok {
		return 0, ErrUnknownUser
	}
	p.Reviews = append(p.Reviews, r)
	if err := s.save(projects); err != nil {
		return 0, err
	}
	return len(p.Reviews) - 1, nil
}

// UpdateReview replaces the review at idx in place.
func (s *Store) UpdateReview(username string, idx int, r models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.load()
	p, ok := projects[username]
	if !ok {
		return ErrUnknownUser
	}
	if idx < 0 || idx >= len(p.Reviews) {
		return ErrNoSuchReview
	}
	p.Reviews[idx] = r
	return s.save(projects)
}

// DeleteReview removes exactly the review at idx; the order of the
// remaining reviews is unchanged.
func (s *Store) DeleteReview(username string, idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.load()
	p, ok := projects[username]
	if !ok {
		return ErrUnknownUser
	}
	if idx < 0 || idx >= len(p.Reviews) {
		return ErrNoSuchReview
	}
	p.Reviews = append(p.Reviews[:idx], p.Reviews[idx+1:]...)
	return s.save(projects)
}

// SetReviews replaces username's review list wholesale, the way the
// review form saves a whole working set.
func (s *Store) SetReviews(username string, reviews []models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.load()
	p, ok := projects[username]
	if !ok {
		return ErrUnknownUser
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	p.Reviews = reviews
	return s.save(projects)
}
