package retention

import (
	"fmt"
	"math"
)

// MinimumRetentionDays is the legal floor for audit-log retention (NIS2
// Art. 21.2: twelve months). It is not configurable.
const MinimumRetentionDays = 365

// Policy parameterizes one purge.
type Policy struct {
	RetentionDays int
	// DryRun previews the purge without deleting anything.
	DryRun bool
	// AssumeYes skips the confirmation gate for unattended runs.
	AssumeYes bool
}

// Validate rejects retention periods below the floor.
func (p Policy) Validate() error {
	if p.RetentionDays < MinimumRetentionDays {
		return &PolicyViolation{Requested: p.RetentionDays, Minimum: MinimumRetentionDays}
	}
	return nil
}

// RetentionMonths is the retention period in 30-day months, rounded half
// away from zero.
func (p Policy) RetentionMonths() int {
	return int(math.Round(float64(p.RetentionDays) / 30))
}

// PolicyViolation reports a retention request below the floor.
type PolicyViolation struct {
	Requested int
	Minimum   int
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("retention period must be at least %d days (12 months) for NIS2 Art. 21.2 compliance: requested %d days",
		e.Minimum, e.Requested)
}
