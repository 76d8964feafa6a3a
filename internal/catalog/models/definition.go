package models

import (
	"fmt"
	"strings"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/mapping"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

const (
	MaxRequirementIDLength = 50
	MaxTitleLength         = 255
	MaxCategoryLength      = 100
)

// Definition is the input shape of one requirement as supplied by a
// framework data module or definition file.
type Definition struct {
	ID                string          `json:"id" yaml:"id"`
	Title             string          `json:"title" yaml:"title"`
	Description       string          `json:"description" yaml:"description"`
	Category          string          `json:"category" yaml:"category"`
	Priority          Priority        `json:"priority" yaml:"priority"`
	Type              RequirementType `json:"type,omitempty" yaml:"type,omitempty"`
	Parent            string          `json:"parent,omitempty" yaml:"parent,omitempty"`
	DataSourceMapping mapping.Mapping `json:"data_source_mapping" yaml:"data_source_mapping"`
}

// EffectiveType defaults an unset type to core.
func (d Definition) EffectiveType() RequirementType {
	if d.Type == "" {
		return RequirementTypeCore
	}
	return d.Type
}

// Validate checks the definition's shape. The content itself is trusted.
func (d Definition) Validate() error {
	id := strings.TrimSpace(d.ID)
	switch {
	case id == "":
		return dErrors.New(dErrors.CodeValidation, "requirement id is required")
	case id != d.ID:
		return dErrors.Newf(dErrors.CodeValidation, "requirement id %q has surrounding whitespace", d.ID)
	case len(id) > MaxRequirementIDLength:
		return dErrors.Newf(dErrors.CodeValidation, "requirement id %q must be %d characters or less", id, MaxRequirementIDLength)
	case strings.TrimSpace(d.Title) == "":
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: title is required", id)
	case len(d.Title) > MaxTitleLength:
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: title must be %d characters or less", id, MaxTitleLength)
	case len(d.Category) > MaxCategoryLength:
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: category must be %d characters or less", id, MaxCategoryLength)
	case !d.Priority.IsValid():
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: unknown priority %q", id, d.Priority)
	case !d.EffectiveType().IsValid():
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: unknown type %q", id, d.Type)
	case d.Parent == id:
		return dErrors.Newf(dErrors.CodeValidation, "requirement %s: cannot be its own parent", id)
	}
	if err := d.DataSourceMapping.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("requirement %s", id))
	}
	return nil
}

// ValidateDefinitions validates every definition and reports the first
// failure with its position.
func ValidateDefinitions(defs []Definition) error {
	for i, d := range defs {
		if err := d.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("definition #%d", i+1))
		}
	}
	return nil
}
