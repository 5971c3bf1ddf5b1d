package quote

import (
    "bufio"
    "fmt"
    "io"
    "os"
    "sort"
    "strings"
)

// NormalizeAll normalizes, deduplicates, and sorts raw symbol tokens
// into watchlist order.
func NormalizeAll(raw []string) []string {
    seen := make(map[string]struct{}, len(raw))
    out := make([]string, 0, len(raw))
    for _, s := range raw {
        sym := Normalize(s)
        if sym == "" { continue }
        if _, dup := seen[sym]; dup { continue }
        seen[sym] = struct{}{}
        out = append(out, sym)
    }
    sort.Strings(out)
    return out
}

// ReadWatchlist loads symbols from a plain-text file: one symbol per
// line, blank lines and '#' comments ignored, entries normalized and
// deduplicated. The returned slice is sorted; that order is also the
// output record order.
func ReadWatchlist(path string) ([]string, error) {
    f, err := os.Open(path)
    if err != nil {
        if os.IsNotExist(err) { return nil, nil }
        return nil, fmt.Errorf("open watchlist: %w", err)
    }
    defer f.Close()
    return ParseWatchlist(f)
}

// ParseWatchlist reads watchlist lines from r. Split out from
// ReadWatchlist so it is testable without touching the filesystem.
func ParseWatchlist(r io.Reader) ([]string, error) {
    seen := make(map[string]struct{})
    syms := make([]string, 0, 16)
    sc := bufio.NewScanner(r)
    for sc.Scan() {
        s := strings.TrimSpace(sc.Text())
        if s == "" || strings.HasPrefix(s, "#") { continue }
        sym := Normalize(s)
        if sym == "" { continue }
        if _, dup := seen[sym]; dup { continue }
        seen[sym] = struct{}{}
        syms = append(syms, sym)
    }
    if err := sc.Err(); err != nil {
        return nil, fmt.Errorf("read watchlist: %w", err)
    }
    sort.Strings(syms)
    return syms, nil
}
