package jse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// pdfHrefRE finds the first document link inside the HTML wrapper page.
var pdfHrefRE = regexp.MustCompile(`(?i)href=["']([^"']+\.pdf[^"']*)["']`)

// pdfMagic is the byte signature every valid document must start with.
var pdfMagic = []byte("%PDF")

// FetchSheet retrieves the daily quote sheet for one trading date and
// market id. The exchange either serves the PDF directly or an HTML
// wrapper page; in the wrapper case the first embedded .pdf link is
// resolved against the request URL and fetched, and the result is
// validated by its magic bytes. Any other shape is a fetch error.
func (c *DailyQuoteClient) FetchSheet(ctx context.Context, date string, market int) ([]byte, error) {
	query := maps.Clone(c.query)
	if query == nil {
		query = url.Values{}
	}
	query.Set("date", date)
	query.Set("market", strconv.Itoa(market))

	pageURL := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())
	body, ctype, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	// Direct PDF response
	if strings.Contains(strings.ToLower(ctype), "pdf") || bytes.HasPrefix(body, pdfMagic) {
		return body, nil
	}

	// HTML wrapper: find embedded pdf link and fetch it
	m := pdfHrefRE.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no pdf link in wrapper page for %s market %d", date, market)
	}
	docURL, err := resolveRef(pageURL, string(m[1]))
	if err != nil {
		return nil, fmt.Errorf("resolving pdf link: %w", err)
	}

	doc, _, err := c.get(ctx, docURL)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(doc, pdfMagic) {
		return nil, fmt.Errorf("linked content is not a pdf (%s)", docURL)
	}
	return doc, nil
}

// get performs one GET and returns the body and content type.
func (c *DailyQuoteClient) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, "", fmt.Errorf("GET %s -> %d", rawURL, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	return body, res.Header.Get("Content-Type"), nil
}

// resolveRef resolves a possibly relative link against the page URL.
func resolveRef(pageURL, ref string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}
