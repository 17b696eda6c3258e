package db

import (
	"context"
	"testing"

	"github.com/hpungsan/capitol/internal/errors"
)

func TestSyncRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := &SyncRun{ID: "01RUN0001", Congress: 119, From: "2025-01-01", Status: SyncRunning, StartedAt: 1000}
	if err := InsertSyncRun(ctx, db, run); err != nil {
		t.Fatalf("InsertSyncRun failed: %v", err)
	}

	failures := []SyncFailure{
		{Congress: 119, Type: "hr", Number: "2", Code: "MISSING_SPONSOR", Message: "no sponsor", CreatedAt: 1001},
		{Congress: 119, Type: "hr", Number: "9", Code: "UPSTREAM", Message: "502", CreatedAt: 1002},
	}
	for i, f := range failures {
		if err := InsertSyncFailure(ctx, db, run.ID, i, f); err != nil {
			t.Fatalf("InsertSyncFailure failed: %v", err)
		}
	}

	finished := int64(1100)
	run.Status = SyncCompletedWithFailures
	run.Listed, run.Stored, run.Failed = 5, 3, 2
	run.FinishedAt = &finished
	if err := FinishSyncRun(ctx, db, run); err != nil {
		t.Fatalf("FinishSyncRun failed: %v", err)
	}

	got, gotFailures, err := GetSyncRun(ctx, db, run.ID)
	if err != nil {
		t.Fatalf("GetSyncRun failed: %v", err)
	}
	if got.Status != SyncCompletedWithFailures || got.Listed != 5 || got.Stored != 3 || got.Failed != 2 {
		t.Errorf("run = %+v", got)
	}
	if got.Congress != 119 || got.From != "2025-01-01" || got.To != "" {
		t.Errorf("run filter = %d %q %q", got.Congress, got.From, got.To)
	}
	if got.FinishedAt == nil || *got.FinishedAt != 1100 {
		t.Errorf("FinishedAt = %v, want 1100", got.FinishedAt)
	}
	if len(gotFailures) != 2 || gotFailures[0].Number != "2" || gotFailures[1].Code != "UPSTREAM" {
		t.Errorf("failures = %+v", gotFailures)
	}
	if gotFailures[0].String() != "119/hr/2" {
		t.Errorf("failure String() = %q, want 119/hr/2", gotFailures[0].String())
	}
}

func TestGetSyncRun_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, _, err := GetSyncRun(context.Background(), db, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetSyncRun error = %v, want NOT_FOUND", err)
	}
}

func TestFinishSyncRun_NotFound(t *testing.T) {
	db := openTestDB(t)
	err := FinishSyncRun(context.Background(), db, &SyncRun{ID: "missing", Status: SyncCompleted})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("FinishSyncRun error = %v, want NOT_FOUND", err)
	}
}

func TestListSyncRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i, id := range []string{"01A", "01B", "01C"} {
		run := &SyncRun{ID: id, Status: SyncCompleted, StartedAt: int64(100 * (i + 1))}
		if err := InsertSyncRun(ctx, db, run); err != nil {
			t.Fatalf("InsertSyncRun failed: %v", err)
		}
	}

	runs, total, err := ListSyncRuns(ctx, db, 2, 0)
	if err != nil {
		t.Fatalf("ListSyncRuns failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(runs) != 2 || runs[0].ID != "01C" || runs[1].ID != "01B" {
		t.Errorf("runs = %+v, want 01C, 01B", runs)
	}
	if runs[0].Congress != 0 {
		t.Errorf("Congress = %d, want 0 (all congresses)", runs[0].Congress)
	}
}

func TestPurgeSyncRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed := []SyncRun{
		{ID: "old-done", Status: SyncCompleted, StartedAt: 100},
		{ID: "old-running", Status: SyncRunning, StartedAt: 100},
		{ID: "new-done", Status: SyncCompleted, StartedAt: 900},
	}
	for i := range seed {
		if err := InsertSyncRun(ctx, db, &seed[i]); err != nil {
			t.Fatalf("InsertSyncRun failed: %v", err)
		}
	}
	if err := InsertSyncFailure(ctx, db, "old-done", 0, SyncFailure{Congress: 119, Type: "hr", Number: "1", Code: "UPSTREAM", Message: "x", CreatedAt: 100}); err != nil {
		t.Fatalf("InsertSyncFailure failed: %v", err)
	}

	n, err := PurgeSyncRuns(ctx, db, 500)
	if err != nil {
		t.Fatalf("PurgeSyncRuns failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}

	if _, _, err := GetSyncRun(ctx, db, "old-done"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("old-done still present: %v", err)
	}
	for _, id := range []string{"old-running", "new-done"} {
		if _, _, err := GetSyncRun(ctx, db, id); err != nil {
			t.Errorf("%s was purged: %v", id, err)
		}
	}

	var orphans int
	if err := db.QueryRow("SELECT COUNT(*) FROM sync_failures").Scan(&orphans); err != nil {
		t.Fatalf("count failures: %v", err)
	}
	if orphans != 0 {
		t.Errorf("sync_failures rows = %d, want 0", orphans)
	}
}
