package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
)

func TestSync_AllStored(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource("1", "2"))

	out, err := Sync(ctx, database, agg, SyncInput{Congress: 119})
	require.NoError(t, err)

	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, db.SyncCompleted, out.Status)
	assert.Equal(t, 2, out.Listed)
	assert.Equal(t, []bill.Ref{
		{Congress: 119, Type: "hr", Number: "1"},
		{Congress: 119, Type: "hr", Number: "2"},
	}, out.Stored)
	assert.Empty(t, out.Failures)

	list, err := List(ctx, database, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Pagination.Total)

	run, err := Run(ctx, database, out.RunID)
	require.NoError(t, err)
	assert.Equal(t, db.SyncCompleted, run.Status)
	assert.Equal(t, 2, run.Stored)
	assert.NotNil(t, run.FinishedAt)
}

func TestSync_FailuresRecorded(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	src := newStubSource("1", "3")
	src.raws = append(src.raws,
		congress.RawBill{Congress: 119, Type: "HR", Number: "2"},   // unknown upstream
		congress.RawBill{Congress: 119, Type: "BOGUS", Number: "4"}, // invalid listing entry
	)

	out, err := Sync(ctx, database, newTestAggregator(src), SyncInput{Congress: 119, From: "2025-01-01", To: "2025-12-31"})
	require.NoError(t, err)

	assert.Equal(t, db.SyncCompletedWithFailures, out.Status)
	assert.Equal(t, 4, out.Listed)
	assert.Len(t, out.Stored, 2)
	require.Len(t, out.Failures, 2)

	codes := map[string]string{}
	for _, f := range out.Failures {
		codes[f.Ref.Number] = f.Code
	}
	assert.Equal(t, string(errors.ErrUpstream), codes["2"])
	assert.Equal(t, string(errors.ErrInvalidRequest), codes["4"])

	run, err := Run(ctx, database, out.RunID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", run.From)
	assert.Equal(t, 4, run.Listed)
	assert.Equal(t, 2, run.Stored)
	assert.Equal(t, 2, run.Failed)
	assert.Len(t, run.Failures, 2)
}

func TestSync_Cancelled(t *testing.T) {
	database := openTestDB(t)
	src := newStubSource("1", "2")
	agg := newTestAggregator(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src.onList = cancel

	out, err := Sync(ctx, database, agg, SyncInput{Congress: 119})
	require.NoError(t, err)
	assert.Equal(t, db.SyncCancelled, out.Status)
	assert.Equal(t, 2, out.Listed)
	assert.Empty(t, out.Stored)

	run, err := Run(context.Background(), database, out.RunID)
	require.NoError(t, err)
	assert.Equal(t, db.SyncCancelled, run.Status)
}

func TestSync_ListingError(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	src := newStubSource()
	src.listErr = errors.NewUpstream(503, "bill/119")

	out, err := Sync(ctx, database, newTestAggregator(src), SyncInput{Congress: 119})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, errors.ErrUpstream))

	runs, err := Runs(ctx, database, RunsInput{})
	require.NoError(t, err)
	require.Len(t, runs.Items, 1)
	assert.Equal(t, db.SyncFailed, runs.Items[0].Status)
	assert.NotNil(t, runs.Items[0].FinishedAt)
}

func TestSync_InvalidInput(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource())

	tests := []struct {
		name string
		in   SyncInput
	}{
		{"negative congress", SyncInput{Congress: -1}},
		{"bad from", SyncInput{From: "last week"}},
		{"bad to", SyncInput{To: "2025-13-01"}},
		{"to before from", SyncInput{From: "2025-06-01", To: "2025-01-01"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Sync(ctx, database, agg, tc.in)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}

	_, err := Sync(ctx, database, nil, SyncInput{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	runs, err := Runs(ctx, database, RunsInput{})
	require.NoError(t, err)
	assert.Empty(t, runs.Items, "rejected input must not record a run")
}

func TestNewRunID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := newRunID()
		assert.Len(t, id, 26)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
