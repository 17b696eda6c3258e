package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/capitol/internal/bill"
)

// Aggregator builds bills from a Source.
type Aggregator struct {
	src Source
	log *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger uses slog.Default().
func NewAggregator(src Source, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{src: src, log: log}
}

// AggregateBill fetches the seven fragments of one bill concurrently and
// assembles them. The first failing fetch cancels the others and its error
// is returned; no partial bill is ever produced.
func (a *Aggregator) AggregateBill(ctx context.Context, ref bill.Ref) (*bill.Bill, error) {
	var f Fragments

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		f.Details, err = a.src.BillDetails(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Actions, err = a.src.BillActions(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Subjects, err = a.src.BillSubjects(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Cosponsors, err = a.src.BillCosponsors(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Summaries, err = a.src.BillSummaries(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Committees, err = a.src.BillCommittees(gctx, ref)
		return err
	})
	g.Go(func() (err error) {
		f.Members, err = a.src.CongressMembers(gctx, ref.Congress)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b, err := Assemble(f)
	if err != nil {
		return nil, err
	}
	if b.IntroducedAtSessionDay < 0 {
		a.log.Warn("bill introduced before its congress began",
			"congress", ref.Congress, "bill_type", ref.Type, "bill_number", ref.Number,
			"session_day", b.IntroducedAtSessionDay)
	}
	a.log.Debug("bill aggregated", "bill", ref.String(), "status", b.Status)
	return b, nil
}
