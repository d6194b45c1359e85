package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/stats"
)

// FileStore keeps each plan as a JSON file in a directory. It lets a
// single server keep its plans across restarts without a database.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// fileRecord is the on-disk form of a plan. Plan.Summary is not part of
// the plan's JSON, so it is stored next to it.
type fileRecord struct {
	Plan    *Plan         `json:"plan"`
	Summary stats.Summary `json:"summary"`
}

// NewFileStore creates a file store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create plan dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

// Path returns the directory holding the plan files.
func (s *FileStore) Path() string { return s.baseDir }

// planPath maps an id to its file. Only UUIDs are accepted, so an id can
// never name a file outside the store.
func (s *FileStore) planPath(id string) (string, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return filepath.Join(s.baseDir, id+".json"), true
}

// Put writes pl. Its id must be empty or a UUID.
func (s *FileStore) Put(_ context.Context, pl *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(pl, s.now)
	path, ok := s.planPath(pl.ID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "plan id %q is not a UUID", pl.ID)
	}
	data, err := json.MarshalIndent(fileRecord{Plan: pl, Summary: pl.Summary}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write plan file: %w", err)
	}
	return nil
}

// Get reads a plan by id.
func (s *FileStore) Get(_ context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.planPath(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	return readPlanFile(path, id)
}

func readPlanFile(path, id string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Plan == nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse plan file %s", path)
	}
	rec.Plan.Summary = rec.Summary
	return rec.Plan, nil
}

// List returns up to limit plans, newest first. Unreadable files are
// skipped.
func (s *FileStore) List(_ context.Context, limit int) ([]*Plan, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read plan dir: %w", err)
	}
	var out []*Plan
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		pl, err := readPlanFile(filepath.Join(s.baseDir, e.Name()), id)
		if err != nil {
			continue
		}
		out = append(out, pl)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a plan file.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.planPath(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("remove plan file: %w", err)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close(context.Context) error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
