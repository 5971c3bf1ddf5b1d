package main

import (
    "context"
    "flag"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/phuslu/log"

    "jsequotes/internal/config"
    "jsequotes/internal/fetcher"
    "jsequotes/internal/fetcher/cache"
    "jsequotes/internal/fetcher/ratelimit"
    "jsequotes/internal/httpx"
    "jsequotes/internal/jse"
    "jsequotes/internal/output"
    "jsequotes/internal/pdftext"
    "jsequotes/internal/quote"
    "jsequotes/internal/retrieve"
)

func main() { os.Exit(run()) }

func run() int {
    var configPath string
    var watchlistPath string
    var outPath string
    var lookback int
    var verbose bool

    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.toml (optional)")
    flag.StringVar(&watchlistPath, "watchlist", "", "watchlist file (overrides config)")
    flag.StringVar(&outPath, "out", "", "output CSV path (overrides config)")
    flag.IntVar(&lookback, "lookback", 0, "lookback window in days (overrides config)")
    flag.BoolVar(&verbose, "v", false, "verbose diagnostics")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        return 1
    }
    if watchlistPath != "" { cfg.Output.WatchlistFile = watchlistPath }
    if outPath != "" { cfg.Output.PricesFile = outPath }
    if lookback > 0 { cfg.JSE.LookbackDays = lookback }
    if verbose { cfg.Verbose = true }

    logger := log.Logger{
        Level:  log.WarnLevel,
        Writer: &log.ConsoleWriter{ColorOutput: true, EndWithMessage: true},
    }
    if cfg.Verbose { logger.Level = log.DebugLevel }

    symbols, err := quote.ReadWatchlist(cfg.Output.WatchlistFile)
    if err != nil {
        logger.Error().Err(err).Msg("watchlist")
        return 1
    }
    if len(symbols) == 0 {
        // the one fatal configuration fault: nothing to resolve
        fmt.Fprintf(os.Stderr, "No symbols in %s\n", cfg.Output.WatchlistFile)
        return 2
    }

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    r, err := newRetriever(cfg, logger)
    if err != nil {
        logger.Error().Err(err).Msg("wiring")
        return 1
    }
    res := r.Retrieve(ctx, symbols)

    f, err := os.Create(cfg.Output.PricesFile)
    if err != nil {
        logger.Error().Err(err).Msg("create output")
        return 1
    }
    if err := output.WriteCSV(f, symbols, res); err != nil {
        f.Close()
        logger.Error().Err(err).Msg("write output")
        return 1
    }
    if err := f.Close(); err != nil {
        logger.Error().Err(err).Msg("close output")
        return 1
    }

    dateTry := res.DateUsed
    if dateTry == "" { dateTry = "n/a" }
    fmt.Printf("Wrote %s for %d symbols (date_try=%s).\n", cfg.Output.PricesFile, len(symbols), dateTry)

    if cfg.Verbose && len(res.Failures) > 0 {
        fmt.Fprintln(os.Stderr, "Errors (first 10):")
        for i, f := range res.Failures {
            if i >= 10 { break }
            fmt.Fprintf(os.Stderr, " - %s\n", f)
        }
    }
    return 0
}

// newRetriever wires the HTTP client, optional rate limiting and sheet
// caching, and the orchestrator from one config value.
func newRetriever(cfg config.Config, logger log.Logger) (*retrieve.Retriever, error) {
    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    header := http.Header{}
    for k, v := range cfg.JSE.Headers { header.Set(k, v) }

    jseClient, err := jse.NewDailyQuoteClient(
        jse.WithHTTPClient(httpClient),
        jse.WithBaseURL(cfg.JSE.BaseURL),
        jse.WithHeader(header),
    )
    if err != nil {
        return nil, err
    }

    var f fetcher.Fetcher = jseClient
    if cfg.JSE.MaxRequestsPerMinute > 0 {
        f = ratelimit.NewLimiter(f, cfg.JSE.MaxRequestsPerMinute, cfg.JSE.Burst)
    } else if cfg.JSE.MinRequestIntervalSec > 0 {
        f = &ratelimit.MinInterval{F: f, Interval: time.Duration(cfg.JSE.MinRequestIntervalSec) * time.Second}
    }
    if cfg.JSE.CacheTTLSeconds > 0 {
        f = &cache.Fetcher{F: f, TTL: time.Duration(cfg.JSE.CacheTTLSeconds) * time.Second, MaxItems: cfg.JSE.CacheMaxItems}
    }

    return retrieve.New(retrieve.Config{
        Markets:      cfg.JSE.Markets,
        LookbackDays: cfg.JSE.LookbackDays,
        Location:     cfg.JSE.Location(),
        Concurrency:  cfg.JSE.Concurrency,
    }, f.FetchSheet, pdftext.Extract, logger), nil
}
