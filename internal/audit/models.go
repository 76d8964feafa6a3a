package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id,omitempty"`
	Action     string            `json:"action"`
	UserName   string            `json:"user_name,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Entity types.
const (
	EntityFramework = "ComplianceFramework"
	EntityAuditLog  = "AuditLog"
)

// Actions.
const (
	ActionFrameworkSynced     = "framework_synced"
	ActionFrameworkSyncFailed = "framework_sync_failed"
	ActionAuditLogPurged      = "audit_log_purged"
)

// SystemUser attributes events raised by unattended runs.
const SystemUser = "system"
