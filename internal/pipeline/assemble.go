package pipeline

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/hpungsan/capitol/internal/analytics"
	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/errors"
)

// Fragments are the seven upstream responses that make up one bill.
type Fragments struct {
	Details    *congress.BillDetails
	Actions    []congress.Action
	Subjects   *congress.Subjects
	Cosponsors []congress.Cosponsor
	Summaries  []congress.Summary
	Committees []congress.Committee
	Members    []congress.Member
}

// Assemble merges fragments into a Bill and computes its analytics.
func Assemble(f Fragments) (*bill.Bill, error) {
	d := f.Details
	if d == nil {
		return nil, errors.NewSchemaValidation("", []string{"bill"}, errMissingFragment("bill details"))
	}

	introduced, err := congress.ParseDate(d.IntroducedDate)
	if err != nil {
		return nil, errors.NewSchemaValidation("", []string{"bill.introducedDate"}, err)
	}

	sponsor, err := analytics.PrimarySponsor(d)
	if err != nil {
		return nil, err
	}
	makeup, err := analytics.BuildComposition(f.Members, introduced)
	if err != nil {
		return nil, err
	}
	sponsorIsMajority, err := analytics.SponsorIsMajorityParty(d, f.Members)
	if err != nil {
		return nil, err
	}
	actions, err := mapActions(f.Actions)
	if err != nil {
		return nil, err
	}

	b := &bill.Bill{
		Number:                  d.Number,
		Type:                    d.Type,
		Congress:                d.Congress,
		CongressMakeup:          makeup,
		Title:                   d.Title,
		Status:                  analytics.DeriveStatus(f.Actions),
		IntroducedDate:          introduced,
		LegislativeSubjects:     mapSubjects(f.Subjects),
		IntroducedAtSessionDay:  analytics.SessionDayOffset(introduced, d.Congress),
		TotalCosponsors:         len(f.Cosponsors),
		TotalOriginalCosponsors: analytics.OriginalCosponsorCount(f.Cosponsors),
		BipartisanCosponsors:    analytics.BipartisanCosponsorCount(sponsor.Party, f.Cosponsors),
		SponsorIsMajority:       sponsorIsMajority,
		CommitteeCount:          len(f.Committees),
		Actions:                 actions,
		Sponsors:                mapSponsors(d.Sponsors, f.Cosponsors),
		Committees:              mapCommittees(f.Committees),
	}

	if d.PolicyArea != nil {
		b.PolicyArea = d.PolicyArea.Name
	}
	if d.UpdateDate != "" {
		updated, err := congress.ParseDate(d.UpdateDate)
		if err != nil {
			return nil, errors.NewSchemaValidation("", []string{"bill.updateDate"}, err)
		}
		b.UpdateDate = &updated
	}
	if n := len(f.Summaries); n > 0 {
		text := f.Summaries[n-1].Text
		b.Summary = &text
	}

	return b, nil
}

func mapActions(actions []congress.Action) ([]bill.Action, error) {
	out := make([]bill.Action, 0, len(actions))
	for i, a := range actions {
		day, err := congress.ParseDate(a.ActionDate)
		if err != nil {
			return nil, errors.NewSchemaValidation("", []string{fieldIndex("actions", i, "actionDate")}, err)
		}
		out = append(out, bill.Action{
			Code:       a.ActionCode,
			Text:       a.Text,
			Type:       a.Type,
			ActionDate: day,
		})
	}
	return out, nil
}

// mapSponsors lists primary sponsors first, then cosponsors, in upstream order.
func mapSponsors(sponsors []congress.Sponsor, cosponsors []congress.Cosponsor) []bill.Sponsor {
	out := make([]bill.Sponsor, 0, len(sponsors)+len(cosponsors))
	for _, s := range sponsors {
		out = append(out, bill.Sponsor{
			FullName:  s.FullName,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Party:     s.Party,
			State:     s.State,
			District:  copyDistrict(s.District),
			Role:      bill.RoleSponsor,
		})
	}
	for _, c := range cosponsors {
		out = append(out, bill.Sponsor{
			FullName:  c.FullName,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Party:     c.Party,
			State:     c.State,
			District:  copyDistrict(c.District),
			Role:      bill.RoleCosponsor,
		})
	}
	return out
}

func mapCommittees(committees []congress.Committee) []bill.Committee {
	return lo.Map(committees, func(c congress.Committee, _ int) bill.Committee {
		return bill.Committee{Name: c.Name, Chamber: c.Chamber}
	})
}

func mapSubjects(s *congress.Subjects) []bill.Subject {
	if s == nil {
		return make([]bill.Subject, 0)
	}
	return lo.Map(s.LegislativeSubjects, func(ls congress.LegislativeSubject, _ int) bill.Subject {
		return bill.Subject{Name: ls.Name}
	})
}

// copyDistrict keeps a bill from sharing memory with the fetched payload.
// District 0 is the upstream's at-large placeholder and is dropped.
func copyDistrict(d *int) *int {
	if d == nil || *d == 0 {
		return nil
	}
	return lo.ToPtr(*d)
}

func errMissingFragment(name string) error {
	return fmt.Errorf("%s missing", name)
}

func fieldIndex(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
