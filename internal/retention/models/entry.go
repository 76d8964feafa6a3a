package models

import "time"

// AuditLogEntry is one append-only audit record. Entries are only ever
// removed by a retention purge.
type AuditLogEntry struct {
	ID         string    `json:"id" bson:"_id"`
	EntityType string    `json:"entity_type" bson:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Action     string    `json:"action" bson:"action"`
	UserName   string    `json:"user_name,omitempty" bson:"user_name,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
