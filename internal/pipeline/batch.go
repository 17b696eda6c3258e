package pipeline

import (
	"context"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/errors"
)

// Failure records one bill that could not be aggregated.
type Failure struct {
	Ref bill.Ref
	Err error
}

// BatchResult splits a batch into the bills that were built and the ones that failed.
// Listed is the size of the listing; it exceeds len(Bills)+len(Failures) when
// the batch was cancelled.
type BatchResult struct {
	Listed   int
	Bills    []*bill.Bill
	Failures []Failure
}

// AggregateBatch lists bills and aggregates them one at a time. A failing
// bill is logged and recorded in Failures; only a listing error fails the
// whole batch. When ctx is cancelled mid-batch the partial result is returned
// together with a CANCELLED error.
func (a *Aggregator) AggregateBatch(ctx context.Context, opts congress.ListOptions) (*BatchResult, error) {
	raws, err := a.src.ListBills(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.log.Info("bill listing fetched", "congress", opts.Congress, "count", len(raws))

	result := &BatchResult{
		Listed:   len(raws),
		Bills:    make([]*bill.Bill, 0, len(raws)),
		Failures: make([]Failure, 0),
	}

	for _, raw := range raws {
		if ctx.Err() != nil {
			return result, errors.NewCancelled("batch aggregation")
		}

		ref, err := bill.NewRef(raw.Congress, raw.Type, raw.Number)
		if err != nil {
			a.fail(result, bill.Ref{Congress: raw.Congress, Type: raw.Type, Number: raw.Number}, err)
			continue
		}

		b, err := a.AggregateBill(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return result, errors.NewCancelled("batch aggregation")
			}
			a.fail(result, ref, err)
			continue
		}
		result.Bills = append(result.Bills, b)
	}

	a.log.Info("batch aggregation finished",
		"congress", opts.Congress, "succeeded", len(result.Bills), "failed", len(result.Failures))
	return result, nil
}

func (a *Aggregator) fail(result *BatchResult, ref bill.Ref, err error) {
	a.log.Error("bill aggregation failed",
		"congress", ref.Congress, "bill_type", ref.Type, "bill_number", ref.Number,
		"code", errors.CodeOf(err), "err", err)
	result.Failures = append(result.Failures, Failure{Ref: ref, Err: err})
}
