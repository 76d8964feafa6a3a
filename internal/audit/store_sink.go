package audit

import (
	"context"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
)

// Appender is the audit-log store side of StoreSink.
type Appender interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
}

// StoreSink records events as audit-log entries, so the system's own
// actions fall under the same retention policy as everything else.
func StoreSink(store Appender) Sink {
	return SinkFunc(func(ctx context.Context, e Event) error {
		return store.Append(ctx, ToEntry(e))
	})
}

// ToEntry maps an event onto the persisted audit-log shape.
func ToEntry(e Event) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:         e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		UserName:   e.UserName,
		CreatedAt:  e.Timestamp,
	}
}
