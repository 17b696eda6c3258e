package bill

import "time"

// Status is a bill's lifecycle status, derived from its action history.
type Status string

const (
	StatusIntroduced           Status = "INTRODUCED"
	StatusPassedHouse          Status = "PASSED_HOUSE"
	StatusPassedSenate         Status = "PASSED_SENATE"
	StatusResolvingDifferences Status = "RESOLVING_DIFFERENCES"
	StatusToPresident          Status = "TO_PRESIDENT"
	StatusBecameLaw            Status = "BECAME_LAW"
	StatusVetoed               Status = "VETOED"
	StatusFailedHouse          Status = "FAILED_HOUSE"
	StatusFailedSenate         Status = "FAILED_SENATE"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusIntroduced,
	StatusPassedHouse,
	StatusPassedSenate,
	StatusResolvingDifferences,
	StatusToPresident,
	StatusBecameLaw,
	StatusVetoed,
	StatusFailedHouse,
	StatusFailedSenate,
}

// SponsorRole tags an entry in Bill.Sponsors.
type SponsorRole string

const (
	RoleSponsor   SponsorRole = "SPONSOR"
	RoleCosponsor SponsorRole = "COSPONSOR"
)

// Bill is the aggregated record for one bill. It is built once per
// aggregation and owns all of its nested records.
type Bill struct {
	// Number is the bill number as the upstream reports it (e.g. "3076")
	Number string `json:"billNumber"`

	// Type is the upstream bill type (e.g. "HR", "S", "HJRES")
	Type string `json:"billType"`

	// Congress is the congress number the bill belongs to
	Congress int `json:"congress"`

	// CongressMakeup is the chamber composition at the time the bill was introduced
	CongressMakeup ChamberComposition `json:"congressMakeup"`

	Title  string `json:"title"`
	Status Status `json:"status"`

	IntroducedDate time.Time  `json:"introducedDate"`
	UpdateDate     *time.Time `json:"updateDate,omitempty"`

	// Summary is the text of the most recent summary version, if any
	Summary *string `json:"summary,omitempty"`

	// PolicyArea is empty when the upstream has not assigned one yet
	PolicyArea          string    `json:"policyArea"`
	LegislativeSubjects []Subject `json:"legislativeSubjects"`

	// IntroducedAtSessionDay is the number of days since the congress began.
	// Negative values mean the introduced date precedes the congress start.
	IntroducedAtSessionDay  int  `json:"introducedAtSessionDay"`
	TotalCosponsors         int  `json:"totalCosponsors"`
	TotalOriginalCosponsors int  `json:"totalOriginalCosponsors"`
	BipartisanCosponsors    int  `json:"bipartisanCosponsors"`
	SponsorIsMajority       bool `json:"sponsorIsMajority"`
	CommitteeCount          int  `json:"committeeCount"`

	Actions    []Action    `json:"actions"`
	Sponsors   []Sponsor   `json:"billSponsors"`
	Committees []Committee `json:"committees"`
}

// Ref returns the identifying triple of the bill.
func (b *Bill) Ref() Ref {
	return Ref{Congress: b.Congress, Type: NormalizeType(b.Type), Number: b.Number}
}

// Action is one entry of a bill's action history.
type Action struct {
	Code       string    `json:"actionCode,omitempty"`
	Text       string    `json:"text"`
	Type       string    `json:"type"`
	ActionDate time.Time `json:"actionDate"`
}

// Sponsor is a sponsor or cosponsor of a bill.
type Sponsor struct {
	FullName  string      `json:"fullName"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Party     string      `json:"party"`
	State     string      `json:"state"`
	District  *int        `json:"district,omitempty"`
	Role      SponsorRole `json:"role"`
}

// Committee is a committee a bill was referred to.
type Committee struct {
	Name    string `json:"name"`
	Chamber string `json:"chamber"`
}

// Subject is a legislative subject term.
type Subject struct {
	Name string `json:"name"`
}

// ChamberComposition is the partisan makeup of both chambers for one congress.
// A nil party means the chamber is tied with no majority.
type ChamberComposition struct {
	Number            int     `json:"number"`
	PartyHouse        *string `json:"partyHouse"`
	PartyMarginHouse  int     `json:"partyMarginHouse"`
	PartySenate       *string `json:"partySenate"`
	PartyMarginSenate int     `json:"partyMarginSenate"`
	UnifiedGovernment bool    `json:"unifiedGovernment"`
}
