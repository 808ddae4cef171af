// Package client fetches pre-computed SEO reports from the report backend.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seo-optimizer/dashboard/report"
)

const (
	reportPath = "/seo-report/"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512

	userAgent = "SEODashboard/1.0"
)

// Client issues exactly one request per FetchReport call. It does not retry,
// cache or impose a timeout of its own; callers bound the call with ctx.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the backend at baseURL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Transport: newTransport()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// ReportURL builds the report endpoint URL for a domain and a comma separated
// keyword list.
func (c *Client) ReportURL(domain, keywords string) string {
	u := *c.baseURL
	u.Path = u.Path + reportPath
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("keywords", keywords)
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchReport requests the report for domain and keywords. Keywords may be
// empty. Failures are *APIError, *NetworkError or *MalformedResponseError.
func (c *Client) FetchReport(ctx context.Context, domain, keywords string) (*report.SEOReport, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, ErrEmptyDomain
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ReportURL(domain, keywords), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read report body: %w", err)}
	}

	var r report.SEOReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	return &r, nil
}
