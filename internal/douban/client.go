// Package douban provides a client for looking up book metadata on Douban.
package douban

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/doubanmeta/internal/ratelimit"
)

const (
	defaultSearchBaseURL = "https://www.douban.com/j/search"
	defaultBookBaseURL   = "https://book.douban.com"
	defaultMaxAttempts   = 3
	defaultMaxCoverWidth = 1000
	// Douban throttles aggressively; anything above ~1 request per second
	// just earns more 403s.
	defaultRatePerSecond = 1
	defaultThrottleWait  = 2 * time.Second
	defaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	// ErrNoCover is returned when a book has no real cover image.
	ErrNoCover = errors.New("cover not available")
	// ErrEmptyQuery is returned when no usable search terms are available.
	ErrEmptyQuery = errors.New("insufficient metadata to construct query")
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// BrowserFetchFunc fetches a rendered page through a headless browser.
// Used as a fallback when Douban keeps refusing plain HTTP requests.
type BrowserFetchFunc func(ctx context.Context, url string) (string, error)

// Client is a Douban book catalog client.
type Client struct {
	searchBaseURL   string
	bookBaseURL     string
	httpClient      HTTPDoer
	rateLimiter     *ratelimit.Limiter
	retryAttempts   int
	throttleWait    time.Duration
	userAgent       string
	browserFallback bool
	browserFetch    BrowserFetchFunc
}

// NewClient creates a new Douban client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		searchBaseURL: defaultSearchBaseURL,
		bookBaseURL:   defaultBookBaseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		rateLimiter:   ratelimit.New("Douban", defaultRatePerSecond),
		retryAttempts: defaultMaxAttempts,
		throttleWait:  defaultThrottleWait,
		userAgent:     defaultUserAgent,
		browserFetch:  fetchRenderedPage,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithSearchBaseURL sets a custom base URL for the search endpoint.
func WithSearchBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.searchBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithBookBaseURL sets a custom base URL for book detail pages.
func WithBookBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.bookBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRetryAttempts sets the number of retry attempts for failed requests.
func WithRetryAttempts(attempts int) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithThrottleWait sets how long to wait before retrying a 403 response.
func WithThrottleWait(wait time.Duration) Option {
	return func(client *Client) {
		if wait >= 0 {
			client.throttleWait = wait
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithBrowserFallback enables fetching pages through a headless browser
// when plain HTTP requests keep getting throttled.
func WithBrowserFallback(enabled bool) Option {
	return func(client *Client) {
		client.browserFallback = enabled
	}
}

// WithBrowserFetchFunc overrides the headless browser fetcher.
func WithBrowserFetchFunc(fetch BrowserFetchFunc) Option {
	return func(client *Client) {
		if fetch != nil {
			client.browserFetch = fetch
		}
	}
}

// BookURL returns the detail-page URL for a Douban subject ID.
func (c *Client) BookURL(subjectID string) string {
	return c.bookBaseURL + "/subject/" + subjectID + "/"
}
