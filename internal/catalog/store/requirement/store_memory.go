package requirement

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// InMemory keeps requirements grouped by framework and keyed by natural key.
// Returned values are copies.
type InMemory struct {
	mu          sync.RWMutex
	byFramework map[uuid.UUID]map[string]*models.Requirement
}

func NewInMemory() *InMemory {
	return &InMemory{byFramework: make(map[uuid.UUID]map[string]*models.Requirement)}
}

func (s *InMemory) FindByRequirementID(_ context.Context, frameworkID uuid.UUID, requirementID string) (*models.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byFramework[frameworkID][requirementID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *r
	return &out, nil
}

// InsertBatch stores every record or none. A natural key that already exists,
// or appears twice in the batch, fails the batch with ErrConflict.
func (s *InMemory) InsertBatch(_ context.Context, reqs []*models.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]map[string]struct{})
	for _, r := range reqs {
		if _, exists := s.byFramework[r.FrameworkID][r.RequirementID]; exists {
			return sentinel.ErrConflict
		}
		if seen[r.FrameworkID] == nil {
			seen[r.FrameworkID] = make(map[string]struct{})
		}
		if _, dup := seen[r.FrameworkID][r.RequirementID]; dup {
			return sentinel.ErrConflict
		}
		seen[r.FrameworkID][r.RequirementID] = struct{}{}
	}

	for _, r := range reqs {
		if s.byFramework[r.FrameworkID] == nil {
			s.byFramework[r.FrameworkID] = make(map[string]*models.Requirement)
		}
		stored := *r
		s.byFramework[r.FrameworkID][r.RequirementID] = &stored
	}
	return nil
}

// UpdateBatch overwrites stored records matched by ID. Unknown IDs fail the
// batch with ErrNotFound before anything is written.
func (s *InMemory) UpdateBatch(_ context.Context, reqs []*models.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range reqs {
		cur, ok := s.byFramework[r.FrameworkID][r.RequirementID]
		if !ok || cur.ID != r.ID {
			return sentinel.ErrNotFound
		}
	}
	for _, r := range reqs {
		stored := *r
		s.byFramework[r.FrameworkID][r.RequirementID] = &stored
	}
	return nil
}

func (s *InMemory) CountByFramework(_ context.Context, frameworkID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byFramework[frameworkID]), nil
}

// ListByFramework returns the framework's requirements ordered by natural key.
func (s *InMemory) ListByFramework(_ context.Context, frameworkID uuid.UUID) ([]*models.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Requirement, 0, len(s.byFramework[frameworkID]))
	for _, r := range s.byFramework[frameworkID] {
		c := *r
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Requirement) int {
		return strings.Compare(a.RequirementID, b.RequirementID)
	})
	return out, nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := s.copyLocked()
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byFramework = saved
	}
}

func (s *InMemory) copyLocked() map[uuid.UUID]map[string]*models.Requirement {
	out := make(map[uuid.UUID]map[string]*models.Requirement, len(s.byFramework))
	for fwID, reqs := range s.byFramework {
		inner := make(map[string]*models.Requirement, len(reqs))
		for id, r := range reqs {
			c := *r
			inner[id] = &c
		}
		out[fwID] = inner
	}
	return out
}
