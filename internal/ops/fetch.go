package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/db"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	RefInput
	IncludeActions *bool // default: true (nil means default)
}

// Fetch retrieves a stored bill.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*bill.Bill, error) {
	ref, err := input.ref()
	if err != nil {
		return nil, err
	}

	b, err := db.GetBill(ctx, database, ref)
	if err != nil {
		return nil, err
	}

	if input.IncludeActions != nil && !*input.IncludeActions {
		b.Actions = []bill.Action{}
	}
	return b, nil
}
