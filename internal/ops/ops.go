// Package ops implements the user-facing operations shared by the CLI and
// the MCP server.
package ops

import (
	"time"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/errors"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultRunsLimit = 20
	MaxRunsLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampPage applies the default and maximum to limit and floors offset at 0.
func clampPage(limit, offset, def, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, max(offset, 0)
}

// errNoSource is returned by operations that reach congress.gov when no
// client could be built.
func errNoSource() error {
	return errors.NewInvalidRequest("congress.gov API key is not set (CONGRESS_API_KEY)")
}

func requireAggregator(agg *pipeline.Aggregator) error {
	if agg == nil {
		return errNoSource()
	}
	return nil
}

// RefInput identifies one bill.
type RefInput struct {
	Congress int
	Type     string
	Number   string
}

func (in RefInput) ref() (bill.Ref, error) {
	return bill.NewRef(in.Congress, in.Type, in.Number)
}

// parseOptionalDate parses an optional YYYY-MM-DD or RFC 3339 value.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := congress.ParseDate(s)
	if err != nil {
		return nil, errors.NewInvalidRequest(field + " must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

// errMessage returns the user-facing message of err.
func errMessage(err error) string {
	if ce, ok := errors.As(err); ok {
		return ce.Message
	}
	return err.Error()
}
