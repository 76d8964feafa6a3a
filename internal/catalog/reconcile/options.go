package reconcile

import (
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
)

// DefaultBatchSize is the number of processed definitions per commit.
const DefaultBatchSize = 50

// Mode selects what happens to definitions whose requirement already exists.
type Mode int

const (
	// ModeAppend inserts missing requirements and leaves existing ones alone.
	ModeAppend Mode = iota
	// ModeUpsert inserts missing requirements and overwrites the descriptive
	// fields of existing ones.
	ModeUpsert
)

func (m Mode) String() string {
	if m == ModeUpsert {
		return "upsert"
	}
	return "append"
}

// TxMode selects the commit granularity of a run.
type TxMode int

const (
	// PerBatch commits the framework step on its own and then every batch
	// separately. Committed batches survive a later failure.
	PerBatch TxMode = iota
	// AllOrNothing runs the framework step and every batch in one transaction.
	AllOrNothing
)

func (t TxMode) String() string {
	if t == AllOrNothing {
		return "all_or_nothing"
	}
	return "per_batch"
}

type Options struct {
	Mode        Mode
	Transaction TxMode
	// BatchSize defaults to DefaultBatchSize when zero or negative.
	BatchSize int
	// RefreshFramework touches UpdatedAt of an existing framework.
	RefreshFramework bool
	// RequireFramework fails the run when the framework does not exist yet
	// instead of creating it. Used for supplements to a base framework.
	RequireFramework bool
	// SkipIfPopulated skips the whole run when the framework already owns
	// requirements.
	SkipIfPopulated bool
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// Job is one reconciliation request.
type Job struct {
	Code        string
	Framework   models.Descriptor
	Definitions []models.Definition
	Options     Options
}

// Result reports what a run did. Counters are for reporting only.
type Result struct {
	Created          int  `json:"created"`
	Updated          int  `json:"updated"`
	Skipped          int  `json:"skipped"`
	Total            int  `json:"total"`
	FrameworkCreated bool `json:"framework_created"`
	// Batches is the number of committed requirement batches.
	Batches int `json:"batches"`
	// SkippedRun is set when SkipIfPopulated found existing requirements.
	SkippedRun bool `json:"skipped_run"`
}

func (r *Result) add(o Result) {
	r.Created += o.Created
	r.Updated += o.Updated
	r.Skipped += o.Skipped
	r.Batches += o.Batches
}
