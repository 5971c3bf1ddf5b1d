package sheet

import (
    "regexp"
    "strings"

    "github.com/shopspring/decimal"

    "jsequotes/internal/quote"
)

// sheetDateRE matches the publication date printed somewhere on the
// sheet, e.g. "March 4, 2024". The first match stamps every quote
// parsed from that document.
var sheetDateRE = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)

// numberRE matches a signed decimal cell; thousand separators allowed.
var numberRE = regexp.MustCompile(`^[+-]?\d[\d,]*\.?\d*$`)

// SheetDate returns the first publication date label found in text, or "".
func SheetDate(text string) string { return sheetDateRE.FindString(text) }

// IsNumericField reports whether tok looks like a price/volume cell.
func IsNumericField(tok string) bool { return numberRE.MatchString(tok) }

// Parse scans the concatenated page texts for quote lines and returns a
// symbol -> Quote mapping for the wanted symbols, plus the sheet-date
// label for the whole document.
//
// A line is a quote line when some token normalizes to a wanted symbol
// not yet resolved in this pass; the first such token anchors the line.
// Everything after the anchor is scanned for numeric cells in order:
// index 0 is the last traded price, index 1 the closing price. The
// closing price wins when both are present. A symbol resolved once is
// never overwritten by a later line.
func Parse(pages []string, wanted []string) (map[string]quote.Quote, string) {
    want := make(map[string]struct{}, len(wanted))
    for _, s := range wanted { want[s] = struct{}{} }

    full := strings.Join(pages, "\n")
    asAt := SheetDate(full)

    out := make(map[string]quote.Quote, len(want))
    for _, line := range strings.Split(full, "\n") {
        if len(out) == len(want) { break }
        toks := strings.Fields(line)
        if len(toks) == 0 { continue }

        sym, idx, ok := anchor(toks, want, out)
        if !ok { continue }

        nums := make([]string, 0, 8)
        for _, t := range toks[idx+1:] {
            if IsNumericField(t) { nums = append(nums, t) }
        }

        lastTraded := fieldAt(nums, 0)
        closing := fieldAt(nums, 1)
        price := closing
        if price == nil { price = lastTraded }

        q := quote.New(sym)
        q.LastPrice = price
        q.AsAt = asAt
        out[sym] = q
    }
    return out, asAt
}

// anchor locates the first token normalizing to a wanted, still
// unresolved symbol. Position 0 is the common case; sheets sometimes
// prefix rows with notes, so the scan continues across the line.
func anchor(toks []string, want map[string]struct{}, resolved map[string]quote.Quote) (string, int, bool) {
    for i, t := range toks {
        sym := quote.Normalize(t)
        if _, ok := want[sym]; !ok { continue }
        if _, done := resolved[sym]; done { continue }
        return sym, i, true
    }
    return "", 0, false
}

// fieldAt converts the i-th collected numeric token, nil when the field
// is absent or unparseable.
func fieldAt(nums []string, i int) *decimal.Decimal {
    if i >= len(nums) { return nil }
    d, err := decimal.NewFromString(strings.ReplaceAll(nums[i], ",", ""))
    if err != nil { return nil }
    return &d
}
