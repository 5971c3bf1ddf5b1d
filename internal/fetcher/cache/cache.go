package cache

import (
    "context"
    "sync"
    "time"

    "jsequotes/internal/fetcher"
)

// entry stores one fetched sheet with expiry.
type entry struct {
    expiresAt time.Time
    doc       []byte
}

// Fetcher caches sheet bytes per (date, market) for a TTL. Sheets are
// published once per day, so even a short TTL removes repeat downloads
// when several retrievals hit the same trading date.
type Fetcher struct {
    F        fetcher.Fetcher
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[fetcher.Key]entry
}

func (c *Fetcher) Name() string { return c.F.Name() }

// FetchSheet returns cached bytes when valid. Failures are not cached;
// the orchestrator retries the same key on a later run.
func (c *Fetcher) FetchSheet(ctx context.Context, date string, market int) ([]byte, error) {
    if c.F == nil || c.TTL <= 0 {
        return c.F.FetchSheet(ctx, date, market)
    }

    key := fetcher.Key{Date: date, Market: market}
    now := time.Now()

    c.mu.RLock()
    if e, ok := c.items[key]; ok && now.Before(e.expiresAt) {
        doc := e.doc
        c.mu.RUnlock()
        return doc, nil
    }
    c.mu.RUnlock()

    doc, err := c.F.FetchSheet(ctx, date, market)
    if err != nil {
        return nil, err
    }

    c.mu.Lock()
    if c.items == nil { c.items = make(map[fetcher.Key]entry, 8) }
    c.items[key] = entry{expiresAt: now.Add(c.TTL), doc: doc}
    // best-effort cap cache size: drop expired first, then arbitrary keys
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        for k, v := range c.items {
            if time.Now().After(v.expiresAt) { delete(c.items, k) }
            if len(c.items) <= c.MaxItems { break }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            delete(c.items, k)
        }
    }
    c.mu.Unlock()

    return doc, nil
}
