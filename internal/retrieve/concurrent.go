package retrieve

import (
    "context"

    "golang.org/x/sync/errgroup"

    "jsequotes/internal/quote"
)

// tryDateConcurrent fetches every market for one date with bounded
// parallelism. Each attempt parses against the full watchlist, then the
// outcomes are merged strictly in configured market order, so the
// effective precedence is identical to the sequential loop regardless
// of completion order.
func (r *Retriever) tryDateConcurrent(ctx context.Context, date string, watchlist []string, res *Result) map[string]quote.Quote {
    type outcome struct {
        parsed map[string]quote.Quote
        asAt   string
        err    error
    }
    outcomes := make([]outcome, len(r.cfg.Markets))

    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(r.cfg.Concurrency)
    for i, market := range r.cfg.Markets {
        g.Go(func() error {
            parsed, asAt, err := r.attempt(gctx, date, market, watchlist)
            outcomes[i] = outcome{parsed: parsed, asAt: asAt, err: err}
            return nil
        })
    }
    _ = g.Wait()

    combined := make(map[string]quote.Quote, len(watchlist))
    for i, market := range r.cfg.Markets {
        o := outcomes[i]
        if o.err != nil {
            res.Failures = append(res.Failures, Failure{Date: date, Market: market, Err: o.err})
            r.log.Debug().Str("date", date).Int("market", market).Err(o.err).Msg("sheet attempt failed")
            continue
        }
        if len(o.parsed) > 0 && o.asAt != "" { res.SheetDate = o.asAt }
        Merge(combined, o.parsed)
    }
    return combined
}
