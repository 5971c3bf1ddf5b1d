package ratelimit

import (
    "context"
    "sync"
    "time"

    "jsequotes/internal/fetcher"
)

// MinInterval wraps a fetcher and enforces a minimum time between calls.
// Concurrent calls wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
    F        fetcher.Fetcher
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Name() string { return m.F.Name() }

func (m *MinInterval) FetchSheet(ctx context.Context, date string, market int) ([]byte, error) {
    if m.Interval > 0 {
        // simple gate: ensure at least Interval since last
        m.mu.Lock()
        wait := time.Until(m.last.Add(m.Interval))
        m.mu.Unlock()
        if wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return nil, ctx.Err()
            case <-t.C:
            }
        }
    }
    doc, err := m.F.FetchSheet(ctx, date, market)
    if m.Interval > 0 {
        m.mu.Lock()
        m.last = time.Now()
        m.mu.Unlock()
    }
    return doc, err
}
