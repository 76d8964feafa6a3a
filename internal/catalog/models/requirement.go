package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/mapping"
)

// Priority ranks a requirement.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// RequirementType distinguishes top-level clauses from their refinements.
type RequirementType string

const (
	RequirementTypeCore           RequirementType = "core"
	RequirementTypeDetailed       RequirementType = "detailed"
	RequirementTypeSubRequirement RequirementType = "sub_requirement"
)

func (t RequirementType) IsValid() bool {
	switch t {
	case RequirementTypeCore, RequirementTypeDetailed, RequirementTypeSubRequirement:
		return true
	}
	return false
}

// Requirement is one checkable clause within a framework.
//
// Invariants:
//   - (FrameworkCode, RequirementID) is unique
//   - FrameworkID and FrameworkCode never change after creation
//   - ID is kept across upserts; only descriptive fields are overwritten
type Requirement struct {
	ID                  uuid.UUID       `json:"id"`
	FrameworkID         uuid.UUID       `json:"framework_id"`
	FrameworkCode       string          `json:"framework_code"`
	RequirementID       string          `json:"requirement_id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	Category            string          `json:"category"`
	Priority            Priority        `json:"priority"`
	Type                RequirementType `json:"type"`
	ParentRequirementID string          `json:"parent_requirement_id,omitempty"`
	DataSourceMapping   mapping.Mapping `json:"data_source_mapping"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewRequirement builds a requirement for fw from a validated definition.
func NewRequirement(id uuid.UUID, fw *Framework, def Definition, now time.Time) *Requirement {
	r := &Requirement{
		ID:            id,
		FrameworkID:   fw.ID,
		FrameworkCode: fw.Code,
		RequirementID: def.ID,
		CreatedAt:     now,
	}
	r.ApplyDefinition(def, now)
	return r
}

// ApplyDefinition overwrites every descriptive field from def. Identity and
// framework ownership are left alone.
func (r *Requirement) ApplyDefinition(def Definition, now time.Time) {
	r.Title = def.Title
	r.Description = def.Description
	r.Category = def.Category
	r.Priority = def.Priority
	r.Type = def.EffectiveType()
	r.ParentRequirementID = def.Parent
	r.DataSourceMapping = def.DataSourceMapping.Clone()
	r.UpdatedAt = now
}
