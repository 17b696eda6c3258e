package bill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/capitol/internal/errors"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// knownTypes are the bill types congress.gov accepts in URL paths.
var knownTypes = map[string]bool{
	"hr": true, "s": true,
	"hjres": true, "sjres": true,
	"hconres": true, "sconres": true,
	"hres": true, "sres": true,
}

// NormalizeType lowercases a bill type and strips whitespace and dots,
// so "H.R.", "HR" and " hr " all become "hr".
func NormalizeType(t string) string {
	t = Normalize(t)
	t = strings.ReplaceAll(t, ".", "")
	return strings.ReplaceAll(t, " ", "")
}

// IsKnownType reports whether t (after normalization) is a congress.gov bill type.
func IsKnownType(t string) bool {
	return knownTypes[NormalizeType(t)]
}

// Ref addresses one bill by congress, type and number.
type Ref struct {
	Congress int    `json:"congress"`
	Type     string `json:"bill_type"`
	Number   string `json:"bill_number"`
}

// String renders the ref as "congress/type/number".
func (r Ref) String() string {
	return fmt.Sprintf("%d/%s/%s", r.Congress, r.Type, r.Number)
}

// NewRef validates and normalizes a bill address.
func NewRef(congress int, billType, number string) (Ref, error) {
	if congress <= 0 {
		return Ref{}, errors.NewInvalidRequest("congress must be a positive number")
	}
	t := NormalizeType(billType)
	if t == "" {
		return Ref{}, errors.NewInvalidRequest("bill type is required")
	}
	if !knownTypes[t] {
		return Ref{}, errors.NewInvalidRequest(fmt.Sprintf("unknown bill type %q", billType))
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return Ref{}, errors.NewInvalidRequest("bill number is required")
	}
	if n, err := strconv.Atoi(number); err != nil || n <= 0 {
		return Ref{}, errors.NewInvalidRequest(fmt.Sprintf("bill number must be a positive integer, got %q", number))
	}
	return Ref{Congress: congress, Type: t, Number: number}, nil
}

// ParseRef parses "119/hr/3076" (or "119 HR 3076").
func ParseRef(s string) (Ref, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ' ' || r == '\t'
	})
	if len(parts) != 3 {
		return Ref{}, errors.NewInvalidRequest(fmt.Sprintf("bill reference must look like congress/type/number, got %q", s))
	}
	congress, err := strconv.Atoi(parts[0])
	if err != nil {
		return Ref{}, errors.NewInvalidRequest(fmt.Sprintf("invalid congress %q", parts[0]))
	}
	return NewRef(congress, parts[1], parts[2])
}
