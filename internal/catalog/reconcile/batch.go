package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// batch accumulates the writes of one chunk of definitions until flush.
type batch struct {
	inserts []*models.Requirement
	updates []*models.Requirement
	// pending indexes records of this batch by natural key so a repeated id
	// within the chunk reuses the same record.
	pending map[string]*models.Requirement
	counts  Result
}

func newBatch(size int) *batch {
	return &batch{pending: make(map[string]*models.Requirement, size)}
}

// run carries state that spans batches of one invocation.
type run struct {
	fw    *models.Framework
	mode  Mode
	now   func() time.Time
	newID func() uuid.UUID
	// seen holds every natural key handled so far in this invocation.
	seen map[string]struct{}
}

func (r *Reconciler) processChunk(ctx context.Context, st *run, defs []models.Definition) (Result, error) {
	b := newBatch(len(defs))
	for _, def := range defs {
		if err := r.apply(ctx, st, b, def); err != nil {
			return Result{}, err
		}
	}
	if err := r.flush(ctx, b); err != nil {
		return Result{}, err
	}
	b.counts.Batches = 1
	return b.counts, nil
}

func (r *Reconciler) apply(ctx context.Context, st *run, b *batch, def models.Definition) error {
	_, seen := st.seen[def.ID]
	st.seen[def.ID] = struct{}{}

	if seen && st.mode == ModeAppend {
		b.counts.Skipped++
		return nil
	}
	if rec, ok := b.pending[def.ID]; ok {
		rec.ApplyDefinition(def, st.now())
		b.counts.Updated++
		return nil
	}

	existing, err := r.requirements.FindByRequirementID(ctx, st.fw.ID, def.ID)
	switch {
	case err == nil:
		if st.mode == ModeAppend {
			b.counts.Skipped++
			return nil
		}
		existing.ApplyDefinition(def, st.now())
		b.updates = append(b.updates, existing)
		b.pending[def.ID] = existing
		b.counts.Updated++
		return nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeStore, "failed to look up requirement "+def.ID)
	}

	rec := models.NewRequirement(st.newID(), st.fw, def, st.now())
	b.inserts = append(b.inserts, rec)
	b.pending[def.ID] = rec
	b.counts.Created++
	return nil
}

func (r *Reconciler) flush(ctx context.Context, b *batch) error {
	if len(b.inserts) > 0 {
		if err := r.requirements.InsertBatch(ctx, b.inserts); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "requirement inserted concurrently")
			}
			return dErrors.Wrap(err, dErrors.CodeStore, "failed to insert requirements")
		}
	}
	if len(b.updates) > 0 {
		if err := r.requirements.UpdateBatch(ctx, b.updates); err != nil {
			return dErrors.Wrap(err, dErrors.CodeStore, "failed to update requirements")
		}
	}
	return nil
}

func chunks(defs []models.Definition, size int) [][]models.Definition {
	out := make([][]models.Definition, 0, (len(defs)+size-1)/size)
	for start := 0; start < len(defs); start += size {
		end := min(start+size, len(defs))
		out = append(out, defs[start:end])
	}
	return out
}
