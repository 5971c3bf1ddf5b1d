package output

import (
    "bytes"
    "encoding/csv"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/require"

    "jsequotes/internal/quote"
    "jsequotes/internal/retrieve"
)

func TestWriteCSV_WatchlistOrderAndFallbacks(t *testing.T) {
    price := decimal.RequireFromString("141.25")
    res := retrieve.Result{
        Quotes: map[string]quote.Quote{
            "BNS": {Symbol: "BNS", LastPrice: &price, AsAt: "January 31, 2025", Source: quote.Source},
            // resolved line with no numeric cells: price stays empty
            "NCB": {Symbol: "NCB", AsAt: "January 31, 2025", Source: quote.Source},
        },
        DateUsed:  "2025-01-31",
        SheetDate: "January 31, 2025",
    }

    var buf bytes.Buffer
    require.NoError(t, WriteCSV(&buf, []string{"AAA", "BNS", "NCB"}, res))

    rows, err := csv.NewReader(&buf).ReadAll()
    require.NoError(t, err)
    require.Equal(t, [][]string{
        {"symbol", "last_price", "as_at", "source"},
        {"AAA", "", "January 31, 2025", "JSE_DAILY_PDF"},
        {"BNS", "141.25", "January 31, 2025", "JSE_DAILY_PDF"},
        {"NCB", "", "January 31, 2025", "JSE_DAILY_PDF"},
    }, rows)
}

func TestRecord_ExhaustedRunIsEmptyButTagged(t *testing.T) {
    res := retrieve.Result{Quotes: map[string]quote.Quote{}}
    require.Equal(t, []string{"AAA", "", "", "JSE_DAILY_PDF"}, Record("AAA", res))
}

func TestRecord_FallsBackToTriedDateWithoutLabel(t *testing.T) {
    res := retrieve.Result{
        Quotes:   map[string]quote.Quote{},
        DateUsed: "2025-01-30",
    }
    require.Equal(t, []string{"AAA", "", "2025-01-30", "JSE_DAILY_PDF"}, Record("AAA", res))
}
