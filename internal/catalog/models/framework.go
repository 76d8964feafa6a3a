package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

// MaxCodeLength bounds framework codes.
const MaxCodeLength = 50

// Framework is a named regulatory or standard catalogue that owns a set of
// requirements.
//
// Invariants:
//   - Code is non-empty, unique across the catalogue and immutable once created
//   - CreatedAt is immutable after construction
//   - Frameworks are never deleted by synchronization
type Framework struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Version            string    `json:"version"`
	ApplicableIndustry string    `json:"applicable_industry"`
	RegulatoryBody     string    `json:"regulatory_body"`
	Mandatory          bool      `json:"mandatory"`
	ScopeDescription   string    `json:"scope_description"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Descriptor holds the descriptive fields used when a framework is first
// created. It is ignored for frameworks that already exist.
type Descriptor struct {
	Name               string `json:"name" yaml:"name"`
	Description        string `json:"description" yaml:"description"`
	Version            string `json:"version" yaml:"version"`
	ApplicableIndustry string `json:"applicable_industry" yaml:"applicable_industry"`
	RegulatoryBody     string `json:"regulatory_body" yaml:"regulatory_body"`
	Mandatory          bool   `json:"mandatory" yaml:"mandatory"`
	ScopeDescription   string `json:"scope_description" yaml:"scope_description"`
}

// NormalizeCode trims a framework code. Codes are case-sensitive.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// ValidateCode checks a normalized framework code.
func ValidateCode(code string) error {
	if code == "" {
		return dErrors.New(dErrors.CodeValidation, "framework code is required")
	}
	if len(code) > MaxCodeLength {
		return dErrors.Newf(dErrors.CodeValidation, "framework code must be %d characters or less", MaxCodeLength)
	}
	return nil
}

// NewFramework builds an active framework from a descriptor.
func NewFramework(id uuid.UUID, code string, d Descriptor, now time.Time) (*Framework, error) {
	code = NormalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = code
	}
	return &Framework{
		ID:                 id,
		Code:               code,
		Name:               name,
		Description:        d.Description,
		Version:            d.Version,
		ApplicableIndustry: d.ApplicableIndustry,
		RegulatoryBody:     d.RegulatoryBody,
		Mandatory:          d.Mandatory,
		ScopeDescription:   d.ScopeDescription,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Touch marks the framework's requirement set as resynchronized.
func (f *Framework) Touch(now time.Time) {
	f.UpdatedAt = now
}
