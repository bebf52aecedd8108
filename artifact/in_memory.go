package artifact

import (
	"sync"

	"github.com/a2aproject/a2a-go/a2a"
)

// InMemoryStore is a trivial in-process artifact store useful for tests,
// examples and single-process prototypes. Artifacts are kept per context id
// in insertion order, guarded by an RWMutex. Stored artifacts are treated as
// immutable; List returns a snapshot slice so callers cannot reorder
// internal state.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, prefer a durable
// implementation that can survive process restarts.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string][]*a2a.Artifact // contextID -> artifacts in insertion order
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string][]*a2a.Artifact)}
}

// Save appends the artifacts to the given context, preserving call order.
func (s *InMemoryStore) Save(contextID string, artifacts ...*a2a.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[contextID] = append(s.artifacts[contextID], artifacts...)
	return nil
}

// Get returns the stored artifact with the given id or ErrNotFound.
func (s *InMemoryStore) Get(contextID string, artifactID a2a.ArtifactID) (*a2a.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.artifacts[contextID] {
		if a.ID == artifactID {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

// List returns the artifacts stored for the context in insertion order. The
// slice is a snapshot and safe for caller mutation.
func (s *InMemoryStore) List(contextID string) ([]*a2a.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.artifacts[contextID]
	out := make([]*a2a.Artifact, len(stored))
	copy(out, stored)
	return out, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(contextID string, artifactID a2a.ArtifactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.artifacts[contextID]
	for i, a := range stored {
		if a.ID == artifactID {
			s.artifacts[contextID] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
