// Package auditlog stores audit-log entries for the retention engine and for
// the system's own audit events.
package auditlog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// InMemory is a process-local audit log.
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]*models.AuditLogEntry
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[string]*models.AuditLogEntry)}
}

// Append stores a copy of entry, assigning an ID when it has none.
func (s *InMemory) Append(_ context.Context, entry *models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, ok := s.entries[entry.ID]; ok {
		return sentinel.ErrConflict
	}
	e := *entry
	s.entries[e.ID] = &e
	return nil
}

func (s *InMemory) CountOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

// ListOlderThan returns up to limit entries ordered oldest first. limit <= 0
// returns all of them.
func (s *InMemory) ListOlderThan(_ context.Context, cutoff time.Time, limit int) ([]*models.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AuditLogEntry
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored entries.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
