package fetcher

import (
    "context"
)

// Key identifies one sheet request: an ISO trading date plus the
// integer identifier the exchange uses for its sub-market boards.
type Key struct {
    Date   string
    Market int
}

// Fetcher retrieves the raw bytes of one daily quote sheet.
type Fetcher interface {
    Name() string
    FetchSheet(ctx context.Context, date string, market int) ([]byte, error)
}
