package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/mapdraw/pkg/errors"
)

// MemoryStore keeps plans in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*Plan
	now   func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*Plan), now: time.Now}
}

// Put stores a copy of pl.
func (s *MemoryStore) Put(_ context.Context, pl *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prepare(pl, s.now)
	cp := *pl
	s.plans[pl.ID] = &cp
	return nil
}

// Get returns a copy of the stored plan.
func (s *MemoryStore) Get(_ context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pl, ok := s.plans[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	cp := *pl
	return &cp, nil
}

// List returns up to limit plans, newest first.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Plan, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Plan, 0, len(s.plans))
	for _, pl := range s.plans {
		cp := *pl
		out = append(out, &cp)
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

// Delete removes a plan.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "plan %s not found", id)
	}
	delete(s.plans, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
