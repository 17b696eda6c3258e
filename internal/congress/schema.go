package congress

// Wire types for the congress.gov v3 API. Field tags mirror the upstream JSON;
// validate tags are checked on every decoded payload.

// Pagination is the paging envelope attached to list responses.
type Pagination struct {
	Count int    `json:"count"`
	Next  string `json:"next,omitempty" validate:"omitempty,url"`
}

// RawBill is one entry of the bill listing endpoint.
type RawBill struct {
	Congress      int           `json:"congress" validate:"required,gt=0"`
	Type          string        `json:"type" validate:"required"`
	Number        string        `json:"number" validate:"required,numeric"`
	Title         string        `json:"title"`
	OriginChamber string        `json:"originChamber"`
	UpdateDate    string        `json:"updateDate"`
	URL           string        `json:"url"`
	LatestAction  *LatestAction `json:"latestAction,omitempty"`
}

// LatestAction is the abbreviated most-recent action attached to bill payloads.
type LatestAction struct {
	ActionDate string `json:"actionDate"`
	ActionTime string `json:"actionTime,omitempty"`
	Text       string `json:"text"`
}

// PolicyArea is the single top-level subject assigned to a bill.
type PolicyArea struct {
	Name string `json:"name" validate:"required"`
}

// Sponsor is a primary sponsor as listed on the bill details payload.
type Sponsor struct {
	BioguideID  string `json:"bioguideId" validate:"required"`
	FullName    string `json:"fullName" validate:"required"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	MiddleName  string `json:"middleName,omitempty"`
	Party       string `json:"party" validate:"required"`
	State       string `json:"state" validate:"required"`
	District    *int   `json:"district,omitempty"`
	IsByRequest string `json:"isByRequest,omitempty"`
	URL         string `json:"url,omitempty"`
}

// BillDetails is the payload of /bill/{congress}/{type}/{number}.
type BillDetails struct {
	Number                  string        `json:"number" validate:"required"`
	Type                    string        `json:"type" validate:"required"`
	Congress                int           `json:"congress" validate:"required,gt=0"`
	OriginChamber           string        `json:"originChamber" validate:"required,oneof=House Senate"`
	OriginChamberCode       string        `json:"originChamberCode,omitempty"`
	PolicyArea              *PolicyArea   `json:"policyArea,omitempty"`
	Title                   string        `json:"title" validate:"required"`
	IntroducedDate          string        `json:"introducedDate" validate:"required,datetime=2006-01-02"`
	UpdateDate              string        `json:"updateDate,omitempty"`
	UpdateDateIncludingText string        `json:"updateDateIncludingText,omitempty"`
	LegislationURL          string        `json:"legislationUrl,omitempty"`
	Sponsors                []Sponsor     `json:"sponsors" validate:"dive"`
	LatestAction            *LatestAction `json:"latestAction,omitempty"`
}

// SourceSystem identifies which chamber system recorded an action.
type SourceSystem struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// Action is one entry of /bill/.../actions.
type Action struct {
	ActionCode   string        `json:"actionCode,omitempty"`
	ActionDate   string        `json:"actionDate" validate:"required,datetime=2006-01-02"`
	ActionTime   string        `json:"actionTime,omitempty" validate:"omitempty,datetime=15:04:05"`
	Text         string        `json:"text"`
	Type         string        `json:"type"`
	SourceSystem *SourceSystem `json:"sourceSystem,omitempty"`
}

// LegislativeSubject is one subject term on /bill/.../subjects.
type LegislativeSubject struct {
	Name       string `json:"name" validate:"required"`
	UpdateDate string `json:"updateDate,omitempty"`
}

// Subjects is the payload of /bill/.../subjects.
type Subjects struct {
	LegislativeSubjects []LegislativeSubject `json:"legislativeSubjects" validate:"dive"`
	PolicyArea          *PolicyArea          `json:"policyArea,omitempty"`
}

// Cosponsor is one entry of /bill/.../cosponsors.
type Cosponsor struct {
	BioguideID          string `json:"bioguideId" validate:"required"`
	FullName            string `json:"fullName" validate:"required"`
	FirstName           string `json:"firstName" validate:"required"`
	LastName            string `json:"lastName" validate:"required"`
	MiddleName          string `json:"middleName,omitempty"`
	Party               string `json:"party" validate:"required"`
	State               string `json:"state" validate:"required"`
	District            *int   `json:"district,omitempty"`
	IsOriginalCosponsor bool   `json:"isOriginalCosponsor"`
	SponsorshipDate     string `json:"sponsorshipDate,omitempty"`
	URL                 string `json:"url,omitempty"`
}

// Summary is one summary version from /bill/.../summaries.
type Summary struct {
	ActionDate  string `json:"actionDate,omitempty"`
	ActionDesc  string `json:"actionDesc,omitempty"`
	Text        string `json:"text" validate:"required"`
	UpdateDate  string `json:"updateDate,omitempty"`
	VersionCode string `json:"versionCode,omitempty"`
}

// CommitteeActivity is a dated committee event (referral, markup, ...).
type CommitteeActivity struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// Committee is one entry of /bill/.../committees.
type Committee struct {
	Name       string              `json:"name" validate:"required"`
	Chamber    string              `json:"chamber" validate:"required"`
	SystemCode string              `json:"systemCode,omitempty"`
	Type       string              `json:"type,omitempty"`
	URL        string              `json:"url,omitempty"`
	Activities []CommitteeActivity `json:"activities,omitempty"`
}

// Term is one period of chamber service.
type Term struct {
	Chamber   string `json:"chamber" validate:"required"`
	StartYear int    `json:"startYear" validate:"required"`
	EndYear   *int   `json:"endYear,omitempty"`
}

// Terms wraps the upstream's {"item": [...]} term list.
type Terms struct {
	Item []Term `json:"item" validate:"dive"`
}

// Member is one legislator from /member/congress/{congress}.
type Member struct {
	BioguideID string `json:"bioguideId,omitempty"`
	Name       string `json:"name,omitempty"`
	State      string `json:"state,omitempty"`
	District   *int   `json:"district,omitempty"`
	PartyName  string `json:"partyName" validate:"required"`
	Terms      Terms  `json:"terms"`
}
