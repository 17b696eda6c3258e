package bill

// Summary is a bill without its nested sequences.
// Used for browse operations (list) to reduce data transfer.
type Summary struct {
	Congress int    `json:"congress"`
	Type     string `json:"bill_type"`
	Number   string `json:"bill_number"`
	Title    string `json:"title"`
	Status   Status `json:"status"`

	PolicyArea     string `json:"policy_area,omitempty"`
	IntroducedDate string `json:"introduced_date"`

	TotalCosponsors      int  `json:"total_cosponsors"`
	BipartisanCosponsors int  `json:"bipartisan_cosponsors"`
	SponsorIsMajority    bool `json:"sponsor_is_majority"`

	// StoredAt is when the bill was last written to the local store (Unix seconds)
	StoredAt int64 `json:"stored_at"`
}
