package bill

// Chamber is the canonical chamber identifier. The upstream spells the lower
// chamber "House" on bills and "House of Representatives" on member terms;
// both map to ChamberHouse.
type Chamber string

const (
	ChamberHouse  Chamber = "House of Representatives"
	ChamberSenate Chamber = "Senate"
)

var chamberAliases = map[string]Chamber{
	"house":                    ChamberHouse,
	"house of representatives": ChamberHouse,
	"h":                        ChamberHouse,
	"senate":                   ChamberSenate,
	"s":                        ChamberSenate,
}

// ParseChamber maps either upstream spelling to a Chamber.
func ParseChamber(s string) (Chamber, bool) {
	c, ok := chamberAliases[Normalize(s)]
	return c, ok
}

// Short returns the bill-side spelling ("House" or "Senate").
func (c Chamber) Short() string {
	if c == ChamberHouse {
		return "House"
	}
	return string(c)
}
