package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/errors"
)

func member(party string, chambers ...string) congress.Member {
	m := congress.Member{PartyName: party}
	for i, c := range chambers {
		m.Terms.Item = append(m.Terms.Item, congress.Term{Chamber: c, StartYear: 2001 + 2*i})
	}
	return m
}

// roster builds n members of party serving in chamber.
func roster(n int, party, chamber string) []congress.Member {
	out := make([]congress.Member, n)
	for i := range out {
		out[i] = member(party, chamber)
	}
	return out
}

func concat(groups ...[]congress.Member) []congress.Member {
	var out []congress.Member
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTallyParties(t *testing.T) {
	members := []congress.Member{
		member("Democratic", "House of Representatives"),
		member("Democratic", "House of Representatives", "Senate"),
		member("Republican", "Senate"),
		member("Republican", "House of Representatives"),
		member("Independent"),
		member("Republican", "Joint Committee"),
	}

	house := TallyParties(members, bill.ChamberHouse)
	assert.Equal(t, PartyTally{"Democratic": 2, "Republican": 1}, house)

	senate := TallyParties(members, bill.ChamberSenate)
	assert.Equal(t, PartyTally{"Democratic": 1, "Republican": 1}, senate)
}

func TestTallyParties_Empty(t *testing.T) {
	tally := TallyParties(nil, bill.ChamberHouse)
	assert.NotNil(t, tally)
	assert.Empty(t, tally)

	tally = TallyParties([]congress.Member{member("Democratic", "Senate")}, bill.ChamberHouse)
	assert.Empty(t, tally)
}

func TestResolveMajority(t *testing.T) {
	tests := []struct {
		name       string
		tally      PartyTally
		wantParty  string // "" means no majority
		wantMargin int
	}{
		{"clear leader", PartyTally{"Republican": 220, "Democratic": 213}, "Republican", 7},
		{"three parties", PartyTally{"Democratic": 47, "Republican": 51, "Independent": 2}, "Republican", 4},
		{"single party", PartyTally{"Democratic": 5}, "Democratic", 5},
		{"two-way tie", PartyTally{"Democratic": 50, "Republican": 50}, "", 0},
		{"tie with third party", PartyTally{"Democratic": 49, "Republican": 49, "Independent": 2}, "", 0},
		{"runner-up tie is not a tie", PartyTally{"Democratic": 10, "Republican": 3, "Independent": 3}, "Democratic", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMajority(bill.ChamberSenate, tt.tally)
			require.NoError(t, err)
			if tt.wantParty == "" {
				assert.Nil(t, got.Party)
			} else {
				require.NotNil(t, got.Party)
				assert.Equal(t, tt.wantParty, *got.Party)
			}
			assert.Equal(t, tt.wantMargin, got.Margin)
			assert.GreaterOrEqual(t, got.Margin, 0)
		})
	}
}

func TestResolveMajority_EmptyTally(t *testing.T) {
	for _, tally := range []PartyTally{nil, {}} {
		_, err := ResolveMajority(bill.ChamberHouse, tally)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEmptyChamber))
	}
}

func TestCongressStartDate(t *testing.T) {
	assert.Equal(t, date(2023, time.January, 3), CongressStartDate(118))
	assert.Equal(t, date(2021, time.January, 3), CongressStartDate(117))
	assert.Equal(t, date(2019, time.January, 3), CongressStartDate(116))
	assert.Equal(t, date(1973, time.January, 3), CongressStartDate(93))
}

func TestCongressNumber(t *testing.T) {
	tests := []struct {
		at   time.Time
		want int
	}{
		{date(2024, time.January, 1), 118},
		{date(2024, time.January, 3), 118},
		{date(2024, time.July, 4), 118},
		{date(2025, time.January, 2), 118},
		{date(2025, time.January, 3), 119},
		{date(2025, time.July, 4), 119},
		{date(1973, time.January, 3), 93},
		{time.Date(2025, time.January, 2, 23, 59, 59, 0, time.UTC), 118},
		{time.Date(2025, time.January, 3, 0, 0, 1, 0, time.UTC), 119},
	}

	for _, tt := range tests {
		if got := CongressNumber(tt.at); got != tt.want {
			t.Errorf("CongressNumber(%s) = %d, want %d", tt.at.Format(time.RFC3339), got, tt.want)
		}
	}
}

func TestCongressNumber_UsesUTCDate(t *testing.T) {
	// 2025-01-02 20:00 in New York is already 2025-01-03 in UTC.
	ny := time.FixedZone("EST", -5*60*60)
	assert.Equal(t, 119, CongressNumber(time.Date(2025, time.January, 2, 20, 0, 0, 0, ny)))
}

func TestSessionDayOffset(t *testing.T) {
	assert.Equal(t, 0, SessionDayOffset(date(2025, time.January, 3), 119))
	assert.Equal(t, 1, SessionDayOffset(date(2025, time.January, 4), 119))
	assert.Equal(t, 263, SessionDayOffset(date(2025, time.September, 23), 119))
	assert.Equal(t, 263, SessionDayOffset(time.Date(2025, time.September, 23, 23, 59, 0, 0, time.UTC), 119))
	assert.Equal(t, -1, SessionDayOffset(date(2025, time.January, 2), 119))
}

func TestSessionDayOffset_IgnoresLocalZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 09:30 on Jan 4 in Tokyo is 00:30 on Jan 4 UTC.
	assert.Equal(t, 1, SessionDayOffset(time.Date(2025, time.January, 4, 9, 30, 0, 0, tokyo), 119))
}

func TestBuildComposition(t *testing.T) {
	members := concat(
		roster(3, "Republican", "House of Representatives"),
		roster(1, "Democratic", "House of Representatives"),
		roster(2, "Republican", "Senate"),
		roster(1, "Democratic", "Senate"),
	)

	got, err := BuildComposition(members, date(2025, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 119, got.Number)
	require.NotNil(t, got.PartyHouse)
	assert.Equal(t, "Republican", *got.PartyHouse)
	assert.Equal(t, 2, got.PartyMarginHouse)
	require.NotNil(t, got.PartySenate)
	assert.Equal(t, "Republican", *got.PartySenate)
	assert.Equal(t, 1, got.PartyMarginSenate)
	assert.True(t, got.UnifiedGovernment)
}

func TestBuildComposition_UnifiedGovernment(t *testing.T) {
	tests := []struct {
		name    string
		members []congress.Member
		want    bool
	}{
		{
			name: "split chambers",
			members: concat(
				roster(2, "Republican", "House of Representatives"),
				roster(2, "Democratic", "Senate"),
			),
			want: false,
		},
		{
			name: "both chambers tied",
			members: concat(
				roster(1, "Republican", "House of Representatives"),
				roster(1, "Democratic", "House of Representatives"),
				roster(1, "Republican", "Senate"),
				roster(1, "Democratic", "Senate"),
			),
			want: true,
		},
		{
			name: "one chamber tied",
			members: concat(
				roster(1, "Republican", "House of Representatives"),
				roster(1, "Democratic", "House of Representatives"),
				roster(2, "Republican", "Senate"),
			),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildComposition(tt.members, date(2024, time.July, 4))
			require.NoError(t, err)
			assert.Equal(t, 118, got.Number)
			assert.Equal(t, tt.want, got.UnifiedGovernment)
		})
	}
}

func TestBuildComposition_EmptyChamber(t *testing.T) {
	_, err := BuildComposition(roster(3, "Democratic", "Senate"), date(2025, time.March, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyChamber))
}

func details(originChamber string, sponsorParties ...string) *congress.BillDetails {
	d := &congress.BillDetails{
		Number:         "3076",
		Type:           "HR",
		Congress:       119,
		OriginChamber:  originChamber,
		Title:          "Example Act",
		IntroducedDate: "2025-04-29",
	}
	for _, p := range sponsorParties {
		d.Sponsors = append(d.Sponsors, congress.Sponsor{FullName: "Sponsor", Party: p})
	}
	return d
}

func TestSponsorIsMajorityParty(t *testing.T) {
	members := concat(
		roster(3, "Republican", "House of Representatives"),
		roster(2, "Democratic", "House of Representatives"),
		roster(3, "Democratic", "Senate"),
		roster(1, "Republican", "Senate"),
	)

	tests := []struct {
		name    string
		details *congress.BillDetails
		want    bool
	}{
		{"house bill, majority sponsor", details("House", "R"), true},
		{"house bill, minority sponsor", details("House", "D"), false},
		{"senate bill, majority sponsor", details("Senate", "D"), true},
		{"senate bill, independent sponsor", details("Senate", "I"), false},
		{"only the first sponsor counts", details("House", "R", "D"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SponsorIsMajorityParty(tt.details, members)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSponsorIsMajorityParty_NoMajority(t *testing.T) {
	members := concat(
		roster(2, "Republican", "House of Representatives"),
		roster(2, "Democratic", "House of Representatives"),
	)

	got, err := SponsorIsMajorityParty(details("House", "R"), members)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSponsorIsMajorityParty_UncodedMajority(t *testing.T) {
	members := roster(2, "Libertarian", "Senate")

	got, err := SponsorIsMajorityParty(details("Senate", "L"), members)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSponsorIsMajorityParty_MissingSponsor(t *testing.T) {
	_, err := SponsorIsMajorityParty(details("House"), roster(1, "Democratic", "House of Representatives"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingSponsor))
}

func TestSponsorIsMajorityParty_EmptyChamber(t *testing.T) {
	_, err := SponsorIsMajorityParty(details("Senate", "D"), roster(1, "Democratic", "House of Representatives"))
	assert.True(t, errors.Is(err, errors.ErrEmptyChamber))
}

func cosponsors(parties ...string) []congress.Cosponsor {
	out := make([]congress.Cosponsor, len(parties))
	for i, p := range parties {
		out[i] = congress.Cosponsor{FullName: "Cosponsor", Party: p}
	}
	return out
}

func TestBipartisanCosponsorCount(t *testing.T) {
	assert.Equal(t, 2, BipartisanCosponsorCount("D", cosponsors("R", "D", "I")))
	assert.Equal(t, 0, BipartisanCosponsorCount("D", cosponsors("D", "D")))
	assert.Equal(t, 0, BipartisanCosponsorCount("D", nil))
	assert.Equal(t, 2, BipartisanCosponsorCount("I", cosponsors("R", "D", "I")))
}

func TestOriginalCosponsorCount(t *testing.T) {
	flags := func(vals ...bool) []congress.Cosponsor {
		out := make([]congress.Cosponsor, len(vals))
		for i, v := range vals {
			out[i] = congress.Cosponsor{IsOriginalCosponsor: v}
		}
		return out
	}

	assert.Equal(t, 2, OriginalCosponsorCount(flags(true, false, true)))
	assert.Equal(t, 0, OriginalCosponsorCount(flags(false, false)))
	assert.Equal(t, 0, OriginalCosponsorCount(nil))
}

func TestPartyCode(t *testing.T) {
	for name, want := range map[string]string{"Democratic": "D", "Republican": "R", "Independent": "I"} {
		got, ok := PartyCode(name)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := PartyCode("Libertarian")
	assert.False(t, ok)
}
