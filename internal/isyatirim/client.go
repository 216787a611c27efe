// Package isyatirim fetches the IS Yatirim fundamentals page that carries
// the Borsa İstanbul sector and daily-return tables.
package isyatirim

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultPageURL is the fundamentals page listing every BIST stock.
	DefaultPageURL = "https://www.isyatirim.com.tr/tr-tr/analiz/hisse/Sayfalar/Temel-Degerler-Ve-Oranlar.aspx#page-1"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	// One public page, so one request per second is already generous.
	DefaultRateLimit = 1

	// DefaultMaxBodySize caps the response body at 10MB.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Client retrieves the source page.
type Client struct {
	pageURL     string
	userAgent   string
	maxBodySize int64
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(maxBytes int64) ClientOption {
	return func(c *Client) {
		c.maxBodySize = maxBytes
	}
}

// NewClient creates a page client. An empty pageURL falls back to
// DefaultPageURL.
func NewClient(pageURL string, opts ...ClientOption) *Client {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}

	c := &Client{
		pageURL:     pageURL,
		maxBodySize: DefaultMaxBodySize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the page URL this client fetches.
func (c *Client) URL() string {
	return c.pageURL
}

// FetchPage retrieves the source page and returns its raw HTML. Every
// failure mode of the fetch stage — rate-limit wait cancellation,
// transport errors, timeouts, non-OK statuses, truncated reads — surfaces
// as a *FetchError so callers never mistake it for a parse-stage failure.
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &FetchError{URL: c.pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: c.pageURL, Err: err}
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.7")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.pageURL).
			Msg("Fetching source page")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: c.pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: c.pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", &FetchError{URL: c.pageURL, Err: err}
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("bytes", len(body)).
			Dur("duration", time.Since(start)).
			Msg("Source page fetched")
	}

	return string(body), nil
}
