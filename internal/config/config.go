package config

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/pelletier/go-toml/v2"
)

type Server struct {
    Port              string `toml:"port"`
    RequestTimeoutSec int    `toml:"request_timeout_sec"`
}

type JSE struct {
    BaseURL string `toml:"base_url"`
    // Markets lists the sub-market ids to try, in priority order.
    // 31 is the confirmed Main Market; the others are fallbacks.
    Markets      []int  `toml:"markets"`
    LookbackDays int    `toml:"lookback_days"`
    Timezone     string `toml:"timezone"`
    // Headers adds or overrides HTTP headers sent to the exchange.
    Headers map[string]string `toml:"headers"`
    // Concurrency > 1 fetches a date's markets in parallel.
    Concurrency           int `toml:"concurrency"`
    MaxRequestsPerMinute  int `toml:"max_requests_per_minute"`
    Burst                 int `toml:"burst"`
    MinRequestIntervalSec int `toml:"min_request_interval_sec"`
    CacheTTLSeconds       int `toml:"cache_ttl_sec"`
    CacheMaxItems         int `toml:"cache_max_items"`
}

type Output struct {
    WatchlistFile string `toml:"watchlist_file"`
    PricesFile    string `toml:"prices_file"`
}

type Config struct {
    Server  Server `toml:"server"`
    JSE     JSE    `toml:"jse"`
    Output  Output `toml:"output"`
    Verbose bool   `toml:"verbose"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 90},
        JSE: JSE{
            BaseURL:      "https://www.jamstockex.com/trading/trade-quotes/daily-quote-pdf/",
            Markets:      []int{33, 31, 32, 34, 35, 36},
            LookbackDays: 10,
            Timezone:     "America/Jamaica",
        },
        Output: Output{
            WatchlistFile: "watchlist.txt",
            PricesFile:    "prices.csv",
        },
    }
}

// Location resolves the market calendar timezone, falling back to the
// machine's local zone when tzdata is missing.
func (j JSE) Location() *time.Location {
    loc, err := time.LoadLocation(j.Timezone)
    if err != nil { return time.Local }
    return loc
}

// Load reads TOML config from path. If path is empty or the file does
// not exist, it returns defaults. Environment variables override select
// fields afterwards.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.toml"); err == nil {
            path = "config.toml"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := toml.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("JSE_BASE_URL"); v != "" { cfg.JSE.BaseURL = v }
    if v := os.Getenv("JSE_MARKETS"); v != "" {
        if ids := parseMarkets(v); len(ids) > 0 { cfg.JSE.Markets = ids }
    }
    if v := os.Getenv("JSE_LOOKBACK_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.JSE.LookbackDays = x }
    }
    if v := os.Getenv("JSE_TIMEZONE"); v != "" { cfg.JSE.Timezone = v }
    if v := os.Getenv("JSE_USER_AGENT"); v != "" {
        if cfg.JSE.Headers == nil { cfg.JSE.Headers = map[string]string{} }
        cfg.JSE.Headers["User-Agent"] = v
    }
    if v := os.Getenv("JSE_CONCURRENCY"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.JSE.Concurrency = x }
    }
    if v := os.Getenv("JSE_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.JSE.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("JSE_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.JSE.Burst = x }
    }
    if v := os.Getenv("JSE_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.JSE.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("JSE_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.JSE.CacheTTLSeconds = x }
    }
    if v := os.Getenv("JSE_CACHE_MAX_ITEMS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.JSE.CacheMaxItems = x }
    }
    if v := os.Getenv("WATCHLIST_FILE"); v != "" { cfg.Output.WatchlistFile = v }
    if v := os.Getenv("PRICES_FILE"); v != "" { cfg.Output.PricesFile = v }
    if v := os.Getenv("DEBUG"); v != "" {
        switch strings.ToLower(v) {
        case "1", "true", "yes", "y": cfg.Verbose = true
        case "0", "false", "no", "n": cfg.Verbose = false
        }
    }
}

// parseMarkets reads a comma-separated market id list, skipping
// anything non-numeric.
func parseMarkets(s string) []int {
    parts := strings.Split(s, ",")
    out := make([]int, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" { continue }
        id, err := strconv.Atoi(p)
        if err != nil { continue }
        out = append(out, id)
    }
    return out
}
