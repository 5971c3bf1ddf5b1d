package main

import (
    "compress/gzip"
    "context"
    "encoding/json"
    "io"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "sync"
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

// quotesResponse is one retrieval rendered as JSON. Records follow the
// CSV output shape: every requested symbol appears, resolved or not.
type quotesResponse struct {
    DateUsed  string   `json:"date_used,omitempty"`
    SheetDate string   `json:"sheet_date,omitempty"`
    Records   []record `json:"records"`
}

type record struct {
    Symbol    string `json:"symbol"`
    LastPrice string `json:"last_price"`
    AsAt      string `json:"as_at"`
    Source    string `json:"source"`
}

func main() {
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        log.Fatal().Err(err).Msg("config")
    }

    logger := log.Logger{
        Level:  log.InfoLevel,
        Writer: &log.ConsoleWriter{ColorOutput: true, EndWithMessage: true},
    }
    if cfg.Verbose { logger.Level = log.DebugLevel }

    r, err := newRetriever(cfg, logger)
    if err != nil {
        log.Fatal().Err(err).Msg("wiring")
    }

    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/quotes", func(w http.ResponseWriter, req *http.Request) {
        switch req.Method {
        case http.MethodGet:
            handleGetQuotes(w, req, r)
        case http.MethodPost:
            handlePostQuotes(w, req, r)
        default:
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        }
    })

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(mux)))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec+30) * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        logger.Info().Str("port", cfg.Server.Port).Msg("server listening")
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("server")
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

func handleGetQuotes(w http.ResponseWriter, r *http.Request, ret *retrieve.Retriever) {
    q := r.URL.Query().Get("symbols")
    if strings.TrimSpace(q) == "" {
        http.Error(w, "missing symbols query param", http.StatusBadRequest)
        return
    }
    symbols := quote.NormalizeAll(splitCSV(q))
    if len(symbols) == 0 {
        http.Error(w, "symbols cannot be empty", http.StatusBadRequest)
        return
    }
    if len(symbols) > 1000 {
        http.Error(w, "too many symbols (max 1000)", http.StatusBadRequest)
        return
    }
    writeQuotes(w, r.Context(), ret, symbols)
}

type postBody struct {
    Symbols []string `json:"symbols"`
}

func handlePostQuotes(w http.ResponseWriter, r *http.Request, ret *retrieve.Retriever) {
    var b postBody
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&b); err != nil {
        http.Error(w, "invalid JSON body", http.StatusBadRequest)
        return
    }
    symbols := quote.NormalizeAll(b.Symbols)
    if len(symbols) == 0 {
        http.Error(w, "symbols cannot be empty", http.StatusBadRequest)
        return
    }
    if len(symbols) > 1000 {
        http.Error(w, "too many symbols (max 1000)", http.StatusBadRequest)
        return
    }
    writeQuotes(w, r.Context(), ret, symbols)
}

// writeQuotes runs one retrieval and renders the full record set. An
// empty result is still a 200: best effort always produces records.
func writeQuotes(w http.ResponseWriter, rctx context.Context, ret *retrieve.Retriever, symbols []string) {
    res := ret.Retrieve(rctx, symbols)

    resp := quotesResponse{
        DateUsed:  res.DateUsed,
        SheetDate: res.SheetDate,
        Records:   make([]record, 0, len(symbols)),
    }
    for _, sym := range symbols {
        f := output.Record(sym, res)
        resp.Records = append(resp.Records, record{Symbol: f[0], LastPrice: f[1], AsAt: f[2], Source: f[3]})
    }

    w.WriteHeader(http.StatusOK)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(resp)
}

// newRetriever wires the HTTP client, optional rate limiting and sheet
// caching, and the orchestrator from one config value. The sheet cache
// matters here: concurrent API calls for the same trading date reuse
// one download.
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

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
        next.ServeHTTP(gw, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
    const maxBody = 1 << 20 // 1MB
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPost && r.Body != nil {
            r.Body = http.MaxBytesReader(w, r.Body, maxBody)
        }
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
