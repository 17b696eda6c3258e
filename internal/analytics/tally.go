// Package analytics derives chamber composition, bill status and sponsor
// statistics from congress.gov payloads. Every function is pure.
package analytics

import (
	"github.com/samber/lo"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
)

// PartyTally maps a party name to the number of legislators in one chamber.
type PartyTally map[string]int

// TallyParties counts members with at least one term in chamber, by party.
func TallyParties(members []congress.Member, chamber bill.Chamber) PartyTally {
	inChamber := lo.Filter(members, func(m congress.Member, _ int) bool {
		return servedIn(m, chamber)
	})
	return lo.CountValuesBy(inChamber, func(m congress.Member) string {
		return m.PartyName
	})
}

func servedIn(m congress.Member, chamber bill.Chamber) bool {
	return lo.ContainsBy(m.Terms.Item, func(t congress.Term) bool {
		c, ok := bill.ParseChamber(t.Chamber)
		return ok && c == chamber
	})
}
