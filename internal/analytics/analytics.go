package analytics

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/errors"
)

// partyCodes maps roster party names to the single-letter codes used on
// sponsor records.
var partyCodes = map[string]string{
	"Democratic":  "D",
	"Republican":  "R",
	"Independent": "I",
}

// PartyCode returns the sponsor-record code for a roster party name.
func PartyCode(partyName string) (string, bool) {
	code, ok := partyCodes[partyName]
	return code, ok
}

// PrimarySponsor returns the bill's first listed sponsor.
func PrimarySponsor(details *congress.BillDetails) (congress.Sponsor, error) {
	if len(details.Sponsors) == 0 {
		return congress.Sponsor{}, errors.NewMissingSponsor(details.Type, details.Number)
	}
	return details.Sponsors[0], nil
}

// SponsorIsMajorityParty reports whether the primary sponsor belongs to the
// majority party of the bill's origin chamber. A tied chamber, or a majority
// party without a code, yields false.
func SponsorIsMajorityParty(details *congress.BillDetails, members []congress.Member) (bool, error) {
	sponsor, err := PrimarySponsor(details)
	if err != nil {
		return false, err
	}

	chamber, ok := bill.ParseChamber(details.OriginChamber)
	if !ok {
		return false, errors.NewSchemaValidation("", []string{"originChamber"},
			fmt.Errorf("unknown origin chamber %q", details.OriginChamber))
	}

	majority, err := ChamberMajority(members, chamber)
	if err != nil {
		return false, err
	}
	if majority.Party == nil {
		return false, nil
	}

	code, ok := PartyCode(*majority.Party)
	if !ok {
		return false, nil
	}
	return sponsor.Party == code, nil
}

// BipartisanCosponsorCount counts cosponsors whose party code differs from
// the sponsor's.
func BipartisanCosponsorCount(sponsorParty string, cosponsors []congress.Cosponsor) int {
	return lo.CountBy(cosponsors, func(c congress.Cosponsor) bool {
		return c.Party != sponsorParty
	})
}

// OriginalCosponsorCount counts cosponsors who signed on at introduction.
func OriginalCosponsorCount(cosponsors []congress.Cosponsor) int {
	return lo.CountBy(cosponsors, func(c congress.Cosponsor) bool {
		return c.IsOriginalCosponsor
	})
}
