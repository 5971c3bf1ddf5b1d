package ratelimit

import (
    "context"

    "golang.org/x/time/rate"

    "jsequotes/internal/fetcher"
)

// Limiter wraps a fetcher and gates calls through a token bucket.
type Limiter struct {
    F fetcher.Fetcher
    L *rate.Limiter
}

// NewLimiter builds a token-bucket limiter from a requests-per-minute
// budget. The bucket starts full so the initial date/market sweep is
// not delayed.
func NewLimiter(f fetcher.Fetcher, maxPerMinute int, burst int) *Limiter {
    if burst <= 0 { burst = 1 }
    return &Limiter{F: f, L: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), burst)}
}

func (l *Limiter) Name() string { return l.F.Name() }

func (l *Limiter) FetchSheet(ctx context.Context, date string, market int) ([]byte, error) {
    if l.L != nil {
        if err := l.L.Wait(ctx); err != nil { return nil, err }
    }
    return l.F.FetchSheet(ctx, date, market)
}
