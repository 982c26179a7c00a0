package core

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultCommitEvery is the number of successfully processed records per commit.
const DefaultCommitEvery = 10

// ProgressFunc is called after each record with the number attempted so far.
type ProgressFunc func(done, total int)

// PersisterOptions tunes a Persister.
type PersisterOptions struct {
	CommitEvery  int
	AlternateTag string
	Progress     ProgressFunc
}

// Persister drives the reconciler over a record sequence inside one
// session. It owns the transaction: it alone decides commit boundaries.
//
// Each record runs under its own savepoint, so a failing record leaves
// no partial rows behind and never aborts the surrounding transaction.
type Persister struct {
	session     Session
	reconciler  *Reconciler
	commitEvery int
	progress    ProgressFunc
	logger      *slog.Logger
}

// NewPersister binds a persister to session.
func NewPersister(session Session, opts PersisterOptions, logger *slog.Logger) *Persister {
	if opts.CommitEvery <= 0 {
		opts.CommitEvery = DefaultCommitEvery
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		session:     session,
		reconciler:  NewReconciler(session, opts.AlternateTag, logger),
		commitEvery: opts.CommitEvery,
		progress:    opts.Progress,
		logger:      logger,
	}
}

// Run reconciles records in order and returns the batch counters.
//
// A record that fails is logged, counted and skipped. The run stops early
// only when ctx is cancelled, after the record in progress; the work done
// up to that point is still committed by the final commit, which always
// runs.
func (p *Persister) Run(ctx context.Context, records []ProductRecord) Summary {
	summary := Summary{Total: len(records)}
	pending := 0

	// Cancellation is checked between records only. Interrupting a
	// statement mid-flight would cost the driver its connection and with
	// it the uncommitted batch.
	work := context.WithoutCancel(ctx)

	for i, rec := range records {
		if ctx.Err() != nil {
			summary.Cancelled = true
			p.logger.Warn("import cancelled", "remaining", len(records)-i)
			break
		}

		if err := p.processOne(work, i, rec, &summary); err != nil {
			p.fail(&summary, i, rec, err)
		} else {
			pending++
			if summary.Processed%p.commitEvery == 0 {
				p.commit(work, &summary, &pending)
			}
		}

		if p.progress != nil {
			p.progress(i+1, len(records))
		}
	}

	p.commit(work, &summary, &pending)
	return summary
}

func (p *Persister) processOne(ctx context.Context, i int, rec ProductRecord, summary *Summary) error {
	sp := fmt.Sprintf("rec_%d", i)
	if err := p.session.Savepoint(ctx, sp); err != nil {
		return fmt.Errorf("%w: savepoint: %w", ErrSession, err)
	}

	out, err := p.reconciler.Reconcile(ctx, rec)
	if err != nil {
		if rbErr := p.session.RollbackToSavepoint(ctx, sp); rbErr != nil {
			p.logger.Error("rollback to savepoint failed", "savepoint", sp, "error", rbErr)
		}
		return err
	}

	if err := p.session.ReleaseSavepoint(ctx, sp); err != nil {
		return fmt.Errorf("%w: release savepoint: %w", ErrSession, err)
	}

	summary.add(out)
	return nil
}

func (p *Persister) fail(summary *Summary, i int, rec ProductRecord, err error) {
	kind := ErrorKind(err)
	p.logger.Error("record skipped",
		"index", i,
		"part_number", rec.PartNumber,
		"manufacturer", rec.ManufacturerCode,
		"kind", kind,
		"error", err,
	)
	summary.Failed++
	summary.Failures = append(summary.Failures, FailedRecord{
		Index:        i,
		PartNumber:   rec.PartNumber,
		Manufacturer: rec.ManufacturerCode,
		Kind:         kind,
		Reason:       err.Error(),
	})
}

// commit ends the current transaction. A failed commit loses the records
// processed since the previous commit; they are counted, not retried.
func (p *Persister) commit(ctx context.Context, summary *Summary, pending *int) {
	if err := p.session.Commit(ctx); err != nil {
		p.logger.Error("commit failed", "records_lost", *pending, "error", err)
		summary.CommitFailures++
		summary.Lost += *pending
		*pending = 0
		return
	}
	summary.Commits++
	p.logger.Debug("batch committed", "processed", summary.Processed, "records", *pending)
	*pending = 0
}
