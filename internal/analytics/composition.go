package analytics

import (
	"time"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
)

// ChamberMajority tallies one chamber of the roster and resolves its majority.
func ChamberMajority(members []congress.Member, chamber bill.Chamber) (Majority, error) {
	return ResolveMajority(chamber, TallyParties(members, chamber))
}

// BuildComposition computes the partisan makeup of both chambers. The
// congress number comes from ref, not from the roster.
//
// UnifiedGovernment is true when both chambers have the same majority party,
// which includes both chambers being tied.
func BuildComposition(members []congress.Member, ref time.Time) (bill.ChamberComposition, error) {
	house, err := ChamberMajority(members, bill.ChamberHouse)
	if err != nil {
		return bill.ChamberComposition{}, err
	}
	senate, err := ChamberMajority(members, bill.ChamberSenate)
	if err != nil {
		return bill.ChamberComposition{}, err
	}

	return bill.ChamberComposition{
		Number:            CongressNumber(ref),
		PartyHouse:        house.Party,
		PartyMarginHouse:  house.Margin,
		PartySenate:       senate.Party,
		PartyMarginSenate: senate.Margin,
		UnifiedGovernment: sameParty(house.Party, senate.Party),
	}, nil
}

func sameParty(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
