package ops

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Congress   int    // optional, 0 means all
	Status     string // optional, one of bill.AllStatuses
	PolicyArea string // optional, case-insensitive exact match
	Limit      int    // default: 20, max: 100
	Offset     int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []bill.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Sort       string         `json:"sort"`
}

// List retrieves stored bill summaries with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	if input.Congress < 0 {
		return nil, errors.NewInvalidRequest("congress must not be negative")
	}
	status, err := parseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	limit, offset := clampPage(input.Limit, input.Offset, DefaultListLimit, MaxListLimit)

	filter := db.BillFilter{
		Congress:   input.Congress,
		Status:     status,
		PolicyArea: strings.TrimSpace(input.PolicyArea),
	}
	summaries, total, err := db.ListBills(ctx, database, filter, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "stored_at_desc",
	}, nil
}

// parseStatus accepts any case; empty means no filter.
func parseStatus(s string) (bill.Status, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	st := bill.Status(s)
	if !slices.Contains(bill.AllStatuses, st) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}
