// Package pipeline aggregates congress.gov fragments into bill.Bill records.
package pipeline

import (
	"context"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/congress"
)

// Source is the set of upstream fetches the pipeline needs.
type Source interface {
	ListBills(ctx context.Context, opts congress.ListOptions) ([]congress.RawBill, error)
	BillDetails(ctx context.Context, ref bill.Ref) (*congress.BillDetails, error)
	BillActions(ctx context.Context, ref bill.Ref) ([]congress.Action, error)
	BillSubjects(ctx context.Context, ref bill.Ref) (*congress.Subjects, error)
	BillCosponsors(ctx context.Context, ref bill.Ref) ([]congress.Cosponsor, error)
	BillSummaries(ctx context.Context, ref bill.Ref) ([]congress.Summary, error)
	BillCommittees(ctx context.Context, ref bill.Ref) ([]congress.Committee, error)
	CongressMembers(ctx context.Context, congressNumber int) ([]congress.Member, error)
}

var _ Source = (*congress.Client)(nil)
