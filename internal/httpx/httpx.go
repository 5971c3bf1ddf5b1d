package httpx

import (
    "net"
    "net/http"
    "time"
)

// Client is a small wrapper around http.Client with sane defaults for
// pulling sheet documents from a slow public site. Request headers are
// the exchange client's concern; this layer only owns the transport.
type Client struct {
    HTTP *http.Client
}

// New builds a client with a generous overall timeout; sheet PDFs can
// take a while to generate server-side.
func New(timeout time.Duration) *Client {
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
        MaxIdleConns:          10,
        MaxIdleConnsPerHost:   4,
        ForceAttemptHTTP2:     true,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   10 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
        ResponseHeaderTimeout: 30 * time.Second,
    }
    return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}}
}

// Do performs the request. Context comes in on the request itself.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
    return c.HTTP.Do(req)
}
