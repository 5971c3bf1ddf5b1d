package quote

import "strings"

// Normalize canonicalizes a raw token into a symbol: uppercase with
// trailing punctuation stripped. Internal punctuation is preserved so
// tickers like "138SL" or numeric-looking cells like "10.00" survive
// comparison unmangled.
func Normalize(tok string) string {
    return strings.TrimRight(strings.ToUpper(strings.TrimSpace(tok)), ".,;")
}
