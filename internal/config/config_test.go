package config

import (
    "os"
    "path/filepath"
    "testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
    cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if cfg.JSE.LookbackDays != 10 { t.Fatalf("lookback = %d", cfg.JSE.LookbackDays) }
    if len(cfg.JSE.Markets) != 6 || cfg.JSE.Markets[0] != 33 {
        t.Fatalf("markets = %v", cfg.JSE.Markets)
    }
    if cfg.Output.PricesFile != "prices.csv" { t.Fatalf("prices file = %q", cfg.Output.PricesFile) }
}

func TestLoad_TOMLAndEnvOverride(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "config.toml")
    body := "[jse]\nmarkets = [31]\nlookback_days = 3\n\n[output]\nwatchlist_file = \"wl.txt\"\n"
    if err := os.WriteFile(path, []byte(body), 0o600); err != nil { t.Fatal(err) }

    t.Setenv("JSE_MARKETS", "34, 35, bogus")
    t.Setenv("DEBUG", "1")

    cfg, err := Load(path)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if cfg.JSE.LookbackDays != 3 { t.Fatalf("lookback = %d", cfg.JSE.LookbackDays) }
    if cfg.Output.WatchlistFile != "wl.txt" { t.Fatalf("watchlist = %q", cfg.Output.WatchlistFile) }
    // env wins over file, invalid entries skipped
    if len(cfg.JSE.Markets) != 2 || cfg.JSE.Markets[0] != 34 || cfg.JSE.Markets[1] != 35 {
        t.Fatalf("markets = %v", cfg.JSE.Markets)
    }
    if !cfg.Verbose { t.Fatal("DEBUG=1 should enable verbose") }
}

func TestLoad_HeadersFromFileAndEnv(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "config.toml")
    body := "[jse.headers]\n\"Accept-Language\" = \"en-JM\"\n\"User-Agent\" = \"from-file\"\n"
    if err := os.WriteFile(path, []byte(body), 0o600); err != nil { t.Fatal(err) }

    t.Setenv("JSE_USER_AGENT", "from-env")

    cfg, err := Load(path)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if cfg.JSE.Headers["Accept-Language"] != "en-JM" {
        t.Fatalf("headers = %v", cfg.JSE.Headers)
    }
    if cfg.JSE.Headers["User-Agent"] != "from-env" {
        t.Fatalf("env should win: %v", cfg.JSE.Headers)
    }
}

func TestParseMarkets_Empty(t *testing.T) {
    if got := parseMarkets(" , abc ,"); len(got) != 0 {
        t.Fatalf("got %v", got)
    }
}
