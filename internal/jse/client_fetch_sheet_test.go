package jse_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"jsequotes/internal/jse"
)

func pdfBody() []byte {
	return []byte("%PDF-1.7\nfake sheet body")
}

func response(status int, contentType string, body []byte) *http.Response {
	res := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
	if contentType != "" {
		res.Header.Set("Content-Type", contentType)
	}
	return res
}

func TestFetchSheet_DirectPDF(t *testing.T) {
	t.Parallel()

	// Arrange: a mock http client serving the PDF straight from the page URL.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "2025-01-31", req.URL.Query().Get("date"))
			require.Equal(t, "31", req.URL.Query().Get("market"))
			require.NotEmpty(t, req.Header.Get("User-Agent"))
			return response(http.StatusOK, "application/pdf", pdfBody()), nil
		}).
		Times(1)

	client, err := jse.NewDailyQuoteClient(jse.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: fetch the sheet.
	doc, err := client.FetchSheet(t.Context(), "2025-01-31", 31)

	// Assert: the PDF body comes back untouched.
	require.NoError(t, err)
	require.Equal(t, pdfBody(), doc)
}

func TestFetchSheet_ConfiguredHeaderReplacesDefault(t *testing.T) {
	t.Parallel()

	// Arrange: a configured User-Agent must replace the built-in one,
	// not stack a second value next to it.
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, []string{"sheets-bot/1.0"}, req.Header.Values("User-Agent"))
			return response(http.StatusOK, "application/pdf", pdfBody()), nil
		}).
		Times(1)

	header := http.Header{}
	header.Set("User-Agent", "sheets-bot/1.0")
	client, err := jse.NewDailyQuoteClient(
		jse.WithHTTPClient(httpClient),
		jse.WithHeader(header),
	)
	require.NoError(t, err)

	// Act
	_, err = client.FetchSheet(t.Context(), "2025-01-31", 31)

	// Assert
	require.NoError(t, err)
}

func TestFetchSheet_MagicBytesWithoutContentType(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusOK, "", pdfBody()), nil).
		Times(1)

	client, err := jse.NewDailyQuoteClient(jse.WithHTTPClient(httpClient))
	require.NoError(t, err)

	doc, err := client.FetchSheet(t.Context(), "2025-01-31", 31)
	require.NoError(t, err)
	require.Equal(t, pdfBody(), doc)
}

func TestFetchSheet_WrapperPageLinkFollowed(t *testing.T) {
	t.Parallel()

	// Arrange: first call serves an HTML wrapper with a relative link,
	// second call must hit the resolved document URL.
	wrapper := `<html><body><a href="/sheets/qs-2025-01-31.pdf?dl=1">download</a></body></html>`

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	first := httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusOK, "text/html", []byte(wrapper)), nil).
		Times(1)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "https://quotes.example.com/sheets/qs-2025-01-31.pdf?dl=1", req.URL.String())
			return response(http.StatusOK, "application/pdf", pdfBody()), nil
		}).
		Times(1).
		After(first)

	client, err := jse.NewDailyQuoteClient(
		jse.WithHTTPClient(httpClient),
		jse.WithBaseURL("https://quotes.example.com/trading/daily-quote-pdf/"),
	)
	require.NoError(t, err)

	// Act
	doc, err := client.FetchSheet(t.Context(), "2025-01-31", 33)

	// Assert
	require.NoError(t, err)
	require.Equal(t, pdfBody(), doc)
}

func TestFetchSheet_WrapperWithoutLinkFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusOK, "text/html", []byte("<html>nothing published</html>")), nil).
		Times(1)

	client, err := jse.NewDailyQuoteClient(jse.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchSheet(t.Context(), "2025-01-31", 31)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no pdf link")
}

func TestFetchSheet_LinkedContentNotPDFFails(t *testing.T) {
	t.Parallel()

	wrapper := `<a href="again.pdf">x</a>`

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	first := httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusOK, "text/html", []byte(wrapper)), nil).
		Times(1)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusOK, "text/html", []byte("<html>try later</html>")), nil).
		Times(1).
		After(first)

	client, err := jse.NewDailyQuoteClient(jse.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchSheet(t.Context(), "2025-01-31", 31)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a pdf")
}

func TestFetchSheet_NonSuccessStatusFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(response(http.StatusNotFound, "text/html", nil), nil).
		Times(1)

	client, err := jse.NewDailyQuoteClient(jse.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.FetchSheet(t.Context(), "2025-01-31", 31)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "404"))
}
