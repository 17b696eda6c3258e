package analytics

import (
	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/errors"
)

// Majority is the leading party of a chamber and its lead over the runner-up.
// Party is nil when the top count is shared.
type Majority struct {
	Party  *string
	Margin int
}

// ResolveMajority finds the leading party in one pass over the tally.
// A lone party leads by its own count. An empty tally is an EMPTY_CHAMBER error.
func ResolveMajority(chamber bill.Chamber, t PartyTally) (Majority, error) {
	if len(t) == 0 {
		return Majority{}, errors.NewEmptyChamber(string(chamber))
	}

	first, second := -1, -1
	var leader string
	for party, n := range t {
		switch {
		case n > first:
			second = first
			first = n
			leader = party
		case n > second:
			second = n
		}
	}

	if first == second {
		return Majority{}, nil
	}
	if second < 0 {
		second = 0
	}
	return Majority{Party: &leader, Margin: first - second}, nil
}
