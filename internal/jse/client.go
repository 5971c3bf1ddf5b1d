package jse

import (
	"net/http"
	"net/url"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=jse_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// baseURL is the exchange page serving the daily quote sheet. The page
// answers either with the PDF itself or with an HTML wrapper that links
// to it.
const baseURL = "https://www.jamstockex.com/trading/trade-quotes/daily-quote-pdf/"

// userAgent mirrors a desktop browser; the exchange serves an
// interstitial to clients it does not recognize.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121 Safari/537.36"

// DailyQuoteClient fetches daily quote sheet documents from the exchange.
type DailyQuoteClient struct {
	// baseURL is the quote page URL.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
}

// DailyQuoteClientOption is a configuration option for the client.
type DailyQuoteClientOption func(*DailyQuoteClient)

// WithBaseURL sets the quote page URL.
func WithBaseURL(baseURL string) DailyQuoteClientOption {
	return func(c *DailyQuoteClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for both the page request
// and the follow-up document request.
func WithHTTPClient(httpClient HTTPClient) DailyQuoteClientOption {
	return func(c *DailyQuoteClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
// A configured key replaces the default for that key.
func WithHeader(header http.Header) DailyQuoteClientOption {
	return func(c *DailyQuoteClient) {
		for key, values := range header {
			c.header.Del(key)
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewDailyQuoteClient creates a new daily quote sheet client.
func NewDailyQuoteClient(options ...DailyQuoteClientOption) (*DailyQuoteClient, error) {
	var dailyQuoteClient = &DailyQuoteClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	dailyQuoteClient.header.Set("User-Agent", userAgent)
	dailyQuoteClient.header.Set("Accept", "application/pdf,text/html;q=0.9,*/*;q=0.8")
	dailyQuoteClient.header.Set("Accept-Language", "en-US,en;q=0.9")
	for _, option := range options {
		option(dailyQuoteClient)
	}
	return dailyQuoteClient, nil
}

// Name identifies this fetcher in diagnostics.
func (c *DailyQuoteClient) Name() string { return "JSE" }
