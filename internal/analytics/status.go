package analytics

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
)

// statusByCode maps congress.gov action codes to lifecycle statuses.
// Resolving-differences codes are 19500/20500 in the data even though the
// published code list says 19000/20000.
var statusByCode = map[string]bill.Status{
	"1000":  bill.StatusIntroduced, // introduced in House
	"10000": bill.StatusIntroduced, // introduced in Senate
	"8000":  bill.StatusPassedHouse,
	"17000": bill.StatusPassedSenate,
	"19500": bill.StatusResolvingDifferences,
	"20500": bill.StatusResolvingDifferences,
	"28000": bill.StatusToPresident,
	"36000": bill.StatusBecameLaw,
	"39000": bill.StatusBecameLaw, // enacted over veto
	"31000": bill.StatusVetoed,
	"9000":  bill.StatusFailedHouse,
	"33000": bill.StatusFailedHouse, // veto override failed
	"18000": bill.StatusFailedSenate,
	"35000": bill.StatusFailedSenate, // veto override failed
}

// DeriveStatus replays coded actions in chronological order; the last one
// with a known code decides the status. No coded actions means INTRODUCED.
func DeriveStatus(actions []congress.Action) bill.Status {
	type timed struct {
		code string
		at   time.Time
	}

	coded := lo.FilterMap(actions, func(a congress.Action, _ int) (timed, bool) {
		return timed{code: a.ActionCode, at: actionTime(a)}, a.ActionCode != ""
	})
	slices.SortStableFunc(coded, func(a, b timed) int {
		return a.at.Compare(b.at)
	})

	status := bill.StatusIntroduced
	for _, a := range coded {
		if s, ok := statusByCode[a.code]; ok {
			status = s
		}
	}
	return status
}

// actionTime combines actionDate and actionTime in UTC; a missing or
// malformed time counts as midnight.
func actionTime(a congress.Action) time.Time {
	day, err := congress.ParseDate(a.ActionDate)
	if err != nil {
		return time.Time{}
	}
	if a.ActionTime == "" {
		return day
	}
	clock, err := time.Parse("15:04:05", a.ActionTime)
	if err != nil {
		return day
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour +
		time.Duration(clock.Minute())*time.Minute +
		time.Duration(clock.Second())*time.Second)
}
