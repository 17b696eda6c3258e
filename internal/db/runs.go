package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/capitol/internal/errors"
)

// Sync run statuses.
const (
	SyncRunning               = "running"
	SyncCompleted             = "completed"
	SyncCompletedWithFailures = "completed_with_failures"
	SyncCancelled             = "cancelled"
	SyncFailed                = "failed"
)

// SyncRun is one recorded batch sync.
type SyncRun struct {
	ID         string `json:"id"`
	Congress   int    `json:"congress,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Status     string `json:"status"`
	Listed     int    `json:"listed"`
	Stored     int    `json:"stored"`
	Failed     int    `json:"failed"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt *int64 `json:"finished_at,omitempty"`
}

// SyncFailure is one bill a sync run could not aggregate or store.
type SyncFailure struct {
	Congress  int    `json:"congress"`
	Type      string `json:"bill_type"`
	Number    string `json:"bill_number"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

// InsertSyncRun records the start of a sync run.
func InsertSyncRun(ctx context.Context, db *sql.DB, run *SyncRun) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, congress, from_date, to_date, status, listed, stored, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`,
		run.ID, toNullInt(run.Congress), toNullString(emptyToNil(run.From)), toNullString(emptyToNil(run.To)),
		run.Status, run.Listed, run.Stored, run.Failed, run.StartedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// FinishSyncRun stores the final counts and status of a run.
func FinishSyncRun(ctx context.Context, db *sql.DB, run *SyncRun) error {
	result, err := db.ExecContext(ctx, `
		UPDATE sync_runs
		SET status = ?, listed = ?, stored = ?, failed = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.Listed, run.Stored, run.Failed, run.FinishedAt, run.ID)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("sync run", run.ID)
	}
	return nil
}

// InsertSyncFailure appends a failure to a run. seq orders failures within the run.
func InsertSyncFailure(ctx context.Context, db *sql.DB, runID string, seq int, f SyncFailure) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_failures (run_id, seq, congress, bill_type, bill_number, code, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, seq, f.Congress, f.Type, f.Number, f.Code, f.Message, f.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSyncRun returns a run and its failures in recorded order.
func GetSyncRun(ctx context.Context, db *sql.DB, id string) (*SyncRun, []SyncFailure, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, congress, from_date, to_date, status, listed, stored, failed, started_at, finished_at
		FROM sync_runs
		WHERE id = ?
	`, id)
	run, err := scanSyncRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NewNotFound("sync run", id)
	}
	if err != nil {
		return nil, nil, errors.NewInternal(err)
	}

	failures := make([]SyncFailure, 0)
	err = eachRow(ctx, db, `
		SELECT congress, bill_type, bill_number, code, message, created_at
		FROM sync_failures
		WHERE run_id = ?
		ORDER BY seq
	`, []any{id}, func(rows *sql.Rows) error {
		var f SyncFailure
		if err := rows.Scan(&f.Congress, &f.Type, &f.Number, &f.Code, &f.Message, &f.CreatedAt); err != nil {
			return err
		}
		failures = append(failures, f)
		return nil
	})
	if err != nil {
		return nil, nil, errors.NewInternal(err)
	}
	return run, failures, nil
}

// ListSyncRuns returns runs newest first and the total run count.
func ListSyncRuns(ctx context.Context, db *sql.DB, limit, offset int) ([]SyncRun, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sync_runs").Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	runs := make([]SyncRun, 0)
	err := eachRow(ctx, db, `
		SELECT id, congress, from_date, to_date, status, listed, stored, failed, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, []any{limit, offset}, func(rows *sql.Rows) error {
		run, err := scanSyncRun(rows.Scan)
		if err != nil {
			return err
		}
		runs = append(runs, *run)
		return nil
	})
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return runs, total, nil
}

// PurgeSyncRuns deletes finished runs that started before cutoff (Unix
// seconds) along with their failures. Running syncs are never purged.
func PurgeSyncRuns(ctx context.Context, db *sql.DB, cutoff int64) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer tx.Rollback()

	const match = "status != ? AND started_at < ?"
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM sync_failures WHERE run_id IN (SELECT id FROM sync_runs WHERE "+match+")",
		SyncRunning, cutoff); err != nil {
		return 0, errors.NewInternal(err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM sync_runs WHERE "+match, SyncRunning, cutoff)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

func scanSyncRun(scan func(dest ...any) error) (*SyncRun, error) {
	var (
		run        SyncRun
		congress   sql.NullInt64
		from       sql.NullString
		to         sql.NullString
		finishedAt sql.NullInt64
	)
	if err := scan(&run.ID, &congress, &from, &to, &run.Status,
		&run.Listed, &run.Stored, &run.Failed, &run.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Congress = int(congress.Int64)
	run.From = from.String
	run.To = to.String
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Int64
	}
	return &run, nil
}

func toNullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// String formats a failure's bill reference.
func (f SyncFailure) String() string {
	return fmt.Sprintf("%d/%s/%s", f.Congress, f.Type, f.Number)
}
