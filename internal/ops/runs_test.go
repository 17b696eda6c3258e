package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
)

func TestRuns_Pagination(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource("1"))

	for range 3 {
		if _, err := Sync(ctx, database, agg, SyncInput{Congress: 119}); err != nil {
			t.Fatalf("Sync failed: %v", err)
		}
	}

	out, err := Runs(ctx, database, RunsInput{Limit: 2})
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(out.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(out.Items))
	}
	if !out.Pagination.HasMore || out.Pagination.Total != 3 {
		t.Errorf("Pagination = %+v, want has_more with total 3", out.Pagination)
	}

	out, err = Runs(ctx, database, RunsInput{Limit: 1000})
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if out.Pagination.Limit != MaxRunsLimit {
		t.Errorf("Limit = %d, want %d", out.Pagination.Limit, MaxRunsLimit)
	}
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	if _, err := Run(ctx, database, "  "); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank id: expected ErrInvalidRequest, got %v", err)
	}
	if _, err := Run(ctx, database, "01HZZZZZZZZZZZZZZZZZZZZZZZ"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
}

func TestPurgeRuns(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource("1"))

	if _, err := Sync(ctx, database, agg, SyncInput{}); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	// A still-running run is never purged.
	running := &db.SyncRun{ID: newRunID(), Status: db.SyncRunning, StartedAt: 1}
	if err := db.InsertSyncRun(ctx, database, running); err != nil {
		t.Fatalf("InsertSyncRun failed: %v", err)
	}

	out, err := PurgeRuns(ctx, database, PurgeRunsInput{OlderThanDays: 30})
	if err != nil {
		t.Fatalf("PurgeRuns failed: %v", err)
	}
	if out.Purged != 0 || out.Message != "No sync runs to purge" {
		t.Errorf("recent run purged: %+v", out)
	}

	out, err = PurgeRuns(ctx, database, PurgeRunsInput{})
	if err != nil {
		t.Fatalf("PurgeRuns failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("Purged = %d, want 1", out.Purged)
	}
	if out.Message != "Permanently deleted 1 sync run" {
		t.Errorf("Message = %q", out.Message)
	}

	if _, err := Run(ctx, database, running.ID); err != nil {
		t.Errorf("running run was purged: %v", err)
	}

	if _, err := PurgeRuns(ctx, database, PurgeRunsInput{OlderThanDays: -1}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestFormatPurgeMessage(t *testing.T) {
	tests := []struct {
		count, days int
		want        string
	}{
		{0, 7, "No sync runs to purge"},
		{1, 0, "Permanently deleted 1 sync run"},
		{3, 7, "Permanently deleted 3 sync runs (started more than 7 days ago)"},
	}
	for _, tc := range tests {
		if got := formatPurgeMessage(tc.count, tc.days); got != tc.want {
			t.Errorf("formatPurgeMessage(%d, %d) = %q, want %q", tc.count, tc.days, got, tc.want)
		}
	}
}
