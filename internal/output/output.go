package output

import (
    "encoding/csv"
    "fmt"
    "io"

    "jsequotes/internal/quote"
    "jsequotes/internal/retrieve"
)

var header = []string{"symbol", "last_price", "as_at", "source"}

// WriteCSV renders one record per watchlist symbol, in watchlist order.
// Unresolved symbols still get a record with an empty price so the
// output shape is stable no matter how the retrieval went.
func WriteCSV(w io.Writer, watchlist []string, res retrieve.Result) error {
    cw := csv.NewWriter(w)
    if err := cw.Write(header); err != nil {
        return fmt.Errorf("write header: %w", err)
    }
    for _, sym := range watchlist {
        if err := cw.Write(Record(sym, res)); err != nil {
            return fmt.Errorf("write record %s: %w", sym, err)
        }
    }
    cw.Flush()
    return cw.Error()
}

// Record assembles the four output fields for one symbol. The as_at
// column falls back from the symbol's own sheet label to the last label
// seen anywhere, then to the trading date that was adopted; the source
// tag is populated regardless of resolution status.
func Record(sym string, res retrieve.Result) []string {
    price, asAt := "", ""
    if q, ok := res.Quotes[sym]; ok {
        if q.LastPrice != nil { price = q.LastPrice.String() }
        asAt = q.AsAt
    }
    if asAt == "" { asAt = res.SheetDate }
    if asAt == "" { asAt = res.DateUsed }
    return []string{sym, price, asAt, quote.Source}
}
