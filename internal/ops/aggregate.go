package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// AggregateInput contains parameters for the Aggregate operation.
type AggregateInput struct {
	RefInput
	Persist bool // store the result in the local database
}

// AggregateOutput contains the result of the Aggregate operation.
type AggregateOutput struct {
	Bill   *bill.Bill `json:"bill"`
	Stored bool       `json:"stored"`
}

// Aggregate builds one bill from congress.gov and optionally stores it.
func Aggregate(ctx context.Context, database *sql.DB, agg *pipeline.Aggregator, input AggregateInput) (*AggregateOutput, error) {
	if err := requireAggregator(agg); err != nil {
		return nil, err
	}
	ref, err := input.ref()
	if err != nil {
		return nil, err
	}

	b, err := agg.AggregateBill(ctx, ref)
	if err != nil {
		return nil, err
	}

	if input.Persist {
		if err := db.UpsertBill(ctx, database, b, time.Now().Unix()); err != nil {
			return nil, err
		}
	}
	return &AggregateOutput{Bill: b, Stored: input.Persist}, nil
}
