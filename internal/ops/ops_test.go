package ops

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// stubSource serves one fixed House bill for every number in known.
// Numbers outside known fail with an upstream 404.
type stubSource struct {
	raws    []congress.RawBill
	listErr error
	known   map[string]bool

	// onList runs before ListBills returns.
	onList func()
}

func newStubSource(numbers ...string) *stubSource {
	s := &stubSource{known: map[string]bool{}}
	for _, n := range numbers {
		s.known[n] = true
		s.raws = append(s.raws, congress.RawBill{Congress: 119, Type: "HR", Number: n})
	}
	return s
}

func (s *stubSource) ListBills(ctx context.Context, _ congress.ListOptions) ([]congress.RawBill, error) {
	if s.onList != nil {
		s.onList()
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.raws, nil
}

func (s *stubSource) BillDetails(ctx context.Context, ref bill.Ref) (*congress.BillDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.known[ref.Number] {
		return nil, errors.NewUpstream(404, "bill/"+ref.String())
	}
	district := 12
	return &congress.BillDetails{
		Number:         ref.Number,
		Type:           "HR",
		Congress:       ref.Congress,
		OriginChamber:  "House",
		PolicyArea:     &congress.PolicyArea{Name: "Health"},
		Title:          "Example Act " + ref.Number,
		IntroducedDate: "2025-09-23",
		Sponsors: []congress.Sponsor{{
			FullName: "John Doe", Party: "D", State: "CA", District: &district,
		}},
	}, nil
}

func (s *stubSource) BillActions(ctx context.Context, _ bill.Ref) ([]congress.Action, error) {
	return []congress.Action{
		{ActionCode: "1000", ActionDate: "2025-09-23", Text: "Introduced in House", Type: "IntroReferral"},
		{ActionCode: "8000", ActionDate: "2025-10-01", Text: "Passed House", Type: "Floor"},
	}, ctx.Err()
}

func (s *stubSource) BillSubjects(ctx context.Context, _ bill.Ref) (*congress.Subjects, error) {
	return &congress.Subjects{LegislativeSubjects: []congress.LegislativeSubject{{Name: "Medicare"}}}, ctx.Err()
}

func (s *stubSource) BillCosponsors(ctx context.Context, _ bill.Ref) ([]congress.Cosponsor, error) {
	return []congress.Cosponsor{{FullName: "Jane Smith", Party: "R", State: "TX", IsOriginalCosponsor: true}}, ctx.Err()
}

func (s *stubSource) BillSummaries(ctx context.Context, _ bill.Ref) ([]congress.Summary, error) {
	return []congress.Summary{{Text: "<p>Introduced</p>", VersionCode: "00"}}, ctx.Err()
}

func (s *stubSource) BillCommittees(ctx context.Context, _ bill.Ref) ([]congress.Committee, error) {
	return []congress.Committee{{Name: "Energy and Commerce Committee", Chamber: "House"}}, ctx.Err()
}

func (s *stubSource) CongressMembers(ctx context.Context, _ int) ([]congress.Member, error) {
	m := func(party, chamber string) congress.Member {
		return congress.Member{PartyName: party, Terms: congress.Terms{Item: []congress.Term{{Chamber: chamber, StartYear: 2021}}}}
	}
	return []congress.Member{
		m("Democratic", "House of Representatives"),
		m("Democratic", "House of Representatives"),
		m("Republican", "House of Representatives"),
		m("Republican", "Senate"),
	}, ctx.Err()
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestAggregator(src pipeline.Source) *pipeline.Aggregator {
	return pipeline.NewAggregator(src, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

// storeBills aggregates and stores the given House bill numbers.
func storeBills(t *testing.T, database *sql.DB, numbers ...string) {
	t.Helper()
	agg := newTestAggregator(newStubSource(numbers...))
	for _, n := range numbers {
		_, err := Aggregate(context.Background(), database, agg, AggregateInput{
			RefInput: RefInput{Congress: 119, Type: "hr", Number: n},
			Persist:  true,
		})
		require.NoError(t, err)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		limit, offset     int
		wantLim, wantOffs int
	}{
		{0, 0, 20, 0},
		{-5, -1, 20, 0},
		{50, 10, 50, 10},
		{500, 0, 100, 0},
	}
	for _, tc := range tests {
		lim, off := clampPage(tc.limit, tc.offset, 20, 100)
		assert.Equal(t, tc.wantLim, lim, "limit for %d", tc.limit)
		assert.Equal(t, tc.wantOffs, off, "offset for %d", tc.offset)
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := parseOptionalDate("from", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseOptionalDate("from", "2025-01-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-03", got.Format("2006-01-02"))

	_, err = parseOptionalDate("from", "01/03/2025")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Contains(t, errMessage(err), "from")
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource("3076"))

	out, err := Aggregate(ctx, database, agg, AggregateInput{
		RefInput: RefInput{Congress: 119, Type: "H.R.", Number: "3076"},
	})
	require.NoError(t, err)
	assert.False(t, out.Stored)
	assert.Equal(t, bill.StatusPassedHouse, out.Bill.Status)
	assert.Equal(t, 1, out.Bill.BipartisanCosponsors)
	assert.True(t, out.Bill.SponsorIsMajority)

	_, err = Fetch(ctx, database, FetchInput{RefInput: RefInput{Congress: 119, Type: "hr", Number: "3076"}})
	assert.True(t, errors.Is(err, errors.ErrNotFound), "unpersisted bill must not be stored")

	out, err = Aggregate(ctx, database, agg, AggregateInput{
		RefInput: RefInput{Congress: 119, Type: "hr", Number: "3076"},
		Persist:  true,
	})
	require.NoError(t, err)
	assert.True(t, out.Stored)

	stored, err := Fetch(ctx, database, FetchInput{RefInput: RefInput{Congress: 119, Type: "hr", Number: "3076"}})
	require.NoError(t, err)
	assert.Equal(t, out.Bill.Title, stored.Title)
}

func TestAggregate_Errors(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	agg := newTestAggregator(newStubSource("3076"))

	tests := []struct {
		name string
		agg  *pipeline.Aggregator
		in   RefInput
		code errors.ErrorCode
	}{
		{"no api key", nil, RefInput{Congress: 119, Type: "hr", Number: "3076"}, errors.ErrInvalidRequest},
		{"bad congress", agg, RefInput{Congress: 0, Type: "hr", Number: "3076"}, errors.ErrInvalidRequest},
		{"bad type", agg, RefInput{Congress: 119, Type: "xyz", Number: "3076"}, errors.ErrInvalidRequest},
		{"bad number", agg, RefInput{Congress: 119, Type: "hr", Number: "abc"}, errors.ErrInvalidRequest},
		{"upstream 404", agg, RefInput{Congress: 119, Type: "hr", Number: "9999"}, errors.ErrUpstream},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Aggregate(ctx, database, tc.agg, AggregateInput{RefInput: tc.in})
			assert.True(t, errors.Is(err, tc.code), "got %v", err)
		})
	}
}

func TestFetch_IncludeActions(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	storeBills(t, database, "3076")
	ref := RefInput{Congress: 119, Type: "HR", Number: "3076"}

	b, err := Fetch(ctx, database, FetchInput{RefInput: ref})
	require.NoError(t, err)
	assert.Len(t, b.Actions, 2)

	include := false
	b, err = Fetch(ctx, database, FetchInput{RefInput: ref, IncludeActions: &include})
	require.NoError(t, err)
	assert.NotNil(t, b.Actions)
	assert.Empty(t, b.Actions)
	assert.Len(t, b.Sponsors, 2, "only actions are dropped")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	storeBills(t, database, "1", "2", "3")

	out, err := List(ctx, database, ListInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, Pagination{Limit: 2, Offset: 0, HasMore: true, Total: 3}, out.Pagination)
	assert.Equal(t, "stored_at_desc", out.Sort)

	out, err = List(ctx, database, ListInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.False(t, out.Pagination.HasMore)

	out, err = List(ctx, database, ListInput{Status: "passed_house", PolicyArea: " health "})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Pagination.Total)

	out, err = List(ctx, database, ListInput{Status: "BECAME_LAW"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	out, err = List(ctx, database, ListInput{Congress: 118})
	require.NoError(t, err)
	assert.Zero(t, out.Pagination.Total)
}

func TestList_InvalidInput(t *testing.T) {
	database := openTestDB(t)

	_, err := List(context.Background(), database, ListInput{Status: "SIGNED"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = List(context.Background(), database, ListInput{Congress: -1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestCongress(t *testing.T) {
	out, err := Congress(CongressInput{Date: "2025-09-23"})
	require.NoError(t, err)
	assert.Equal(t, &CongressOutput{
		Date:       "2025-09-23",
		Number:     119,
		StartDate:  "2025-01-03",
		SessionDay: 263,
	}, out)

	out, err = Congress(CongressInput{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.Number, 119)
	assert.GreaterOrEqual(t, out.SessionDay, 0)

	_, err = Congress(CongressInput{Date: "yesterday"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
