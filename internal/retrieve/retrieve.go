package retrieve

import (
    "context"
    "fmt"
    "time"

    "github.com/phuslu/log"

    "jsequotes/internal/quote"
    "jsequotes/internal/sheet"
)

// FetchFunc retrieves raw sheet bytes for one (date, market) attempt.
type FetchFunc func(ctx context.Context, date string, market int) ([]byte, error)

// ExtractFunc turns sheet bytes into per-page plain text.
type ExtractFunc func(doc []byte) ([]string, error)

// Config is the immutable retrieval policy. Markets are tried in slice
// order within each date; earlier markets win on symbol conflicts.
type Config struct {
    Markets      []int
    LookbackDays int
    // Location is the market-local calendar used to anchor "today".
    Location *time.Location
    // Concurrency > 1 fetches markets within one date in parallel.
    // Merge precedence stays defined by Markets order, not completion order.
    Concurrency int
    // Now overrides the clock in tests.
    Now func() time.Time
}

// Failure is one recorded non-fatal retrieval fault.
type Failure struct {
    Date   string
    Market int
    Err    error
}

func (f Failure) String() string {
    return fmt.Sprintf("%s market %d: %v", f.Date, f.Market, f.Err)
}

// Result is the reconciliation outcome. Quotes may be partial or empty;
// DateUsed is empty only when every candidate date came up empty.
// SheetDate is the last publication label taken from a sheet that
// resolved at least one symbol, kept as a fallback stamp for the
// symbols that sheet did not cover. Sheets with no hits contribute
// nothing, so a fully exhausted run carries no label at all.
type Result struct {
    Quotes    map[string]quote.Quote
    DateUsed  string
    SheetDate string
    Failures  []Failure
}

// The search is a small state machine: searchingDates advances through
// the candidate list newest-first, running the market loop for each
// date, and the run ends resolved (the current date produced at least
// one quote; older dates are never visited) or exhausted (no date
// produced anything).
type state int

const (
    searchingDates state = iota
    resolved
    exhausted
)

type Retriever struct {
    cfg     Config
    fetch   FetchFunc
    extract ExtractFunc
    log     log.Logger
}

func New(cfg Config, fetch FetchFunc, extract ExtractFunc, logger log.Logger) *Retriever {
    return &Retriever{cfg: cfg, fetch: fetch, extract: extract, log: logger}
}

// Retrieve walks candidate dates newest-first and markets in priority
// order, merging partial parses until the watchlist is covered or the
// lookback window runs out. Every fetch or extract fault is recorded
// and skipped; nothing here is fatal.
func (r *Retriever) Retrieve(ctx context.Context, watchlist []string) Result {
    res := Result{Quotes: make(map[string]quote.Quote, len(watchlist))}
    dates := r.candidateDates()

    st := searchingDates
    for i := 0; st == searchingDates; i++ {
        if i >= len(dates) {
            st = exhausted
            break
        }
        combined := r.tryDate(ctx, dates[i], watchlist, &res)
        if len(combined) > 0 {
            // first date with any signal wins, complete or not
            res.Quotes = combined
            res.DateUsed = dates[i]
            st = resolved
        }
    }

    r.log.Debug().
        Str("date", res.DateUsed).
        Int("resolved", len(res.Quotes)).
        Int("wanted", len(watchlist)).
        Int("failures", len(res.Failures)).
        Msg("retrieval finished")
    return res
}

// tryDate runs the market loop for one candidate date and returns the
// per-date combined mapping.
func (r *Retriever) tryDate(ctx context.Context, date string, watchlist []string, res *Result) map[string]quote.Quote {
    if r.cfg.Concurrency > 1 && len(r.cfg.Markets) > 1 {
        return r.tryDateConcurrent(ctx, date, watchlist, res)
    }

    combined := make(map[string]quote.Quote, len(watchlist))
    for _, market := range r.cfg.Markets {
        parsed, asAt, err := r.attempt(ctx, date, market, missing(watchlist, combined))
        if err != nil {
            res.Failures = append(res.Failures, Failure{Date: date, Market: market, Err: err})
            r.log.Debug().Str("date", date).Int("market", market).Err(err).Msg("sheet attempt failed")
            continue
        }
        if len(parsed) > 0 && asAt != "" { res.SheetDate = asAt }
        Merge(combined, parsed)
        if len(combined) == len(watchlist) {
            // full coverage for this date; remaining markets are skipped
            break
        }
    }
    return combined
}

// attempt is one (date, market) trial: fetch, extract, parse.
func (r *Retriever) attempt(ctx context.Context, date string, market int, wanted []string) (map[string]quote.Quote, string, error) {
    doc, err := r.fetch(ctx, date, market)
    if err != nil {
        return nil, "", err
    }
    pages, err := r.extract(doc)
    if err != nil {
        return nil, "", err
    }
    parsed, asAt := sheet.Parse(pages, wanted)
    return parsed, asAt, nil
}

// Merge copies src entries into dst without overwriting: the first
// writer for a symbol wins. Applied in market priority order this makes
// the configured order a trust order.
func Merge(dst, src map[string]quote.Quote) {
    for sym, q := range src {
        if _, ok := dst[sym]; !ok { dst[sym] = q }
    }
}

// missing returns the watchlist symbols not yet present in resolvedSet,
// preserving watchlist order.
func missing(watchlist []string, resolvedSet map[string]quote.Quote) []string {
    out := make([]string, 0, len(watchlist))
    for _, s := range watchlist {
        if _, ok := resolvedSet[s]; !ok { out = append(out, s) }
    }
    return out
}

// candidateDates generates the lookback window newest-first, anchored
// to today in the market's local calendar.
func (r *Retriever) candidateDates() []string {
    nowFn := r.cfg.Now
    if nowFn == nil { nowFn = time.Now }
    loc := r.cfg.Location
    if loc == nil { loc = time.UTC }

    days := r.cfg.LookbackDays
    if days <= 0 { days = 1 }

    today := nowFn().In(loc)
    out := make([]string, 0, days)
    for d := 0; d < days; d++ {
        out = append(out, today.AddDate(0, 0, -d).Format("2006-01-02"))
    }
    return out
}
