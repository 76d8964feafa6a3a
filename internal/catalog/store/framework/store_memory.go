package framework

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// InMemory keeps frameworks keyed by code. Returned values are copies.
type InMemory struct {
	mu     sync.RWMutex
	byCode map[string]*models.Framework
}

func NewInMemory() *InMemory {
	return &InMemory{byCode: make(map[string]*models.Framework)}
}

func (s *InMemory) FindByCode(_ context.Context, code string) (*models.Framework, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fw, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *fw
	return &out, nil
}

func (s *InMemory) Create(_ context.Context, fw *models.Framework) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCode[fw.Code]; exists {
		return sentinel.ErrConflict
	}
	stored := *fw
	s.byCode[fw.Code] = &stored
	return nil
}

func (s *InMemory) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fw := range s.byCode {
		if fw.ID == id {
			fw.UpdatedAt = at
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// List returns every framework ordered by code.
func (s *InMemory) List(_ context.Context) ([]*models.Framework, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Framework, 0, len(s.byCode))
	for _, fw := range s.byCode {
		c := *fw
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Framework) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out, nil
}

// Snapshot implements tx.Snapshotter.
func (s *InMemory) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[string]*models.Framework, len(s.byCode))
	for code, fw := range s.byCode {
		c := *fw
		saved[code] = &c
	}
	s.mu.RUnlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byCode = maps.Clone(saved)
	}
}
