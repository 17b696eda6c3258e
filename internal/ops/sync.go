package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// SyncInput contains parameters for the Sync operation.
type SyncInput struct {
	Congress int    // optional, 0 lists across congresses
	From     string // optional, YYYY-MM-DD or RFC 3339, bills updated at or after
	To       string // optional, bills updated at or before
	Limit    int    // listing page size, default from config
}

// SyncOutput contains the result of the Sync operation.
type SyncOutput struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Listed   int           `json:"listed"`
	Stored   []bill.Ref    `json:"stored"`
	Failures []SyncFailure `json:"failures"`
}

// SyncFailure describes one bill that was not stored.
type SyncFailure struct {
	Ref     bill.Ref `json:"ref"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// Sync lists bills, aggregates each one, and stores the successes. Every run
// is recorded in sync_runs with one sync_failures row per failed bill.
//
// A failed bill never fails the run. A cancelled run still stores what it
// finished and reports status "cancelled". Only a listing error or a store
// error on the run record itself is returned as an error.
func Sync(ctx context.Context, database *sql.DB, agg *pipeline.Aggregator, input SyncInput) (*SyncOutput, error) {
	if err := requireAggregator(agg); err != nil {
		return nil, err
	}
	if input.Congress < 0 {
		return nil, errors.NewInvalidRequest("congress must not be negative")
	}
	from, err := parseOptionalDate("from", input.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("to", input.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, errors.NewInvalidRequest("to must not be before from")
	}

	run := &db.SyncRun{
		ID:        newRunID(),
		Congress:  input.Congress,
		From:      input.From,
		To:        input.To,
		Status:    db.SyncRunning,
		StartedAt: time.Now().Unix(),
	}
	if err := db.InsertSyncRun(ctx, database, run); err != nil {
		return nil, err
	}

	result, batchErr := agg.AggregateBatch(ctx, congress.ListOptions{
		Congress: input.Congress,
		From:     from,
		To:       to,
		Limit:    input.Limit,
	})

	// Bookkeeping outlives cancellation so the run record stays accurate.
	store := context.WithoutCancel(ctx)

	if result == nil {
		run.Status = db.SyncFailed
		if errors.Is(batchErr, errors.ErrCancelled) {
			run.Status = db.SyncCancelled
		}
		if err := finishRun(store, database, run); err != nil {
			return nil, err
		}
		return nil, batchErr
	}

	out := &SyncOutput{
		RunID:    run.ID,
		Listed:   result.Listed,
		Stored:   make([]bill.Ref, 0, len(result.Bills)),
		Failures: make([]SyncFailure, 0, len(result.Failures)),
	}

	fail := func(ref bill.Ref, err error) error {
		f := SyncFailure{Ref: ref, Code: string(errors.CodeOf(err)), Message: errMessage(err)}
		if err := db.InsertSyncFailure(store, database, run.ID, len(out.Failures), db.SyncFailure{
			Congress:  ref.Congress,
			Type:      ref.Type,
			Number:    ref.Number,
			Code:      f.Code,
			Message:   f.Message,
			CreatedAt: time.Now().Unix(),
		}); err != nil {
			return err
		}
		out.Failures = append(out.Failures, f)
		return nil
	}

	for _, f := range result.Failures {
		if err := fail(f.Ref, f.Err); err != nil {
			return nil, err
		}
	}
	for _, b := range result.Bills {
		if err := db.UpsertBill(store, database, b, time.Now().Unix()); err != nil {
			if err := fail(b.Ref(), err); err != nil {
				return nil, err
			}
			continue
		}
		out.Stored = append(out.Stored, b.Ref())
	}

	switch {
	case batchErr != nil:
		run.Status = db.SyncCancelled
	case len(out.Failures) > 0:
		run.Status = db.SyncCompletedWithFailures
	default:
		run.Status = db.SyncCompleted
	}
	run.Listed = out.Listed
	run.Stored = len(out.Stored)
	run.Failed = len(out.Failures)
	if err := finishRun(store, database, run); err != nil {
		return nil, err
	}

	out.Status = run.Status
	return out, nil
}

func finishRun(ctx context.Context, database *sql.DB, run *db.SyncRun) error {
	finished := time.Now().Unix()
	run.FinishedAt = &finished
	return db.FinishSyncRun(ctx, database, run)
}

// newRunID generates a new ULID for a sync run.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
