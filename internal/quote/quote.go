package quote

import (
    "github.com/shopspring/decimal"
)

// Source is the provenance tag stamped on every output record,
// resolved or not.
const Source = "JSE_DAILY_PDF"

// Quote is the normalized shape for one watchlist symbol.
// LastPrice is nil while the symbol is unresolved, so "no price on the
// sheet" stays distinguishable from "traded at zero". AsAt is the
// publication date string printed inside the sheet itself.
type Quote struct {
    Symbol    string           `json:"symbol"`
    LastPrice *decimal.Decimal `json:"last_price,omitempty"`
    AsAt      string           `json:"as_at"`
    Source    string           `json:"source"`
}

// New returns an unresolved Quote for sym carrying the fixed source tag.
func New(sym string) Quote {
    return Quote{Symbol: sym, Source: Source}
}
