package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
)

// RunsInput contains parameters for the Runs operation.
type RunsInput struct {
	Limit  int // default: 20, max: 100
	Offset int
}

// RunsOutput contains the result of the Runs operation.
type RunsOutput struct {
	Items      []db.SyncRun `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// Runs lists recorded sync runs, newest first.
func Runs(ctx context.Context, database *sql.DB, input RunsInput) (*RunsOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset, DefaultRunsLimit, MaxRunsLimit)

	runs, total, err := db.ListSyncRuns(ctx, database, limit, offset)
	if err != nil {
		return nil, err
	}
	return &RunsOutput{
		Items: runs,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(runs) < total,
			Total:   total,
		},
	}, nil
}

// RunOutput is one sync run with its failures.
type RunOutput struct {
	db.SyncRun
	Failures []db.SyncFailure `json:"failures"`
}

// Run retrieves one sync run by id.
func Run(ctx context.Context, database *sql.DB, id string) (*RunOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("run id is required")
	}
	run, failures, err := db.GetSyncRun(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &RunOutput{SyncRun: *run, Failures: failures}, nil
}

// PurgeRunsInput contains parameters for the PurgeRuns operation.
type PurgeRunsInput struct {
	OlderThanDays int // runs that started more than N days ago; 0 purges every finished run
}

// PurgeRunsOutput contains the result of the PurgeRuns operation.
type PurgeRunsOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// PurgeRuns permanently deletes finished sync runs and their failures.
func PurgeRuns(ctx context.Context, database *sql.DB, input PurgeRunsInput) (*PurgeRunsOutput, error) {
	if input.OlderThanDays < 0 {
		return nil, errors.NewInvalidRequest("older_than_days must not be negative")
	}

	cutoff := time.Now().Add(-time.Duration(input.OlderThanDays) * 24 * time.Hour).Unix()
	if input.OlderThanDays == 0 {
		// started_at < cutoff must include runs that began this second
		cutoff++
	}

	count, err := db.PurgeSyncRuns(ctx, database, cutoff)
	if err != nil {
		return nil, err
	}
	return &PurgeRunsOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count, olderThanDays int) string {
	if count == 0 {
		return "No sync runs to purge"
	}

	runWord := "run"
	if count > 1 {
		runWord = "runs"
	}

	msg := fmt.Sprintf("Permanently deleted %d sync %s", count, runWord)
	if olderThanDays > 0 {
		msg += fmt.Sprintf(" (started more than %d days ago)", olderThanDays)
	}
	return msg
}
