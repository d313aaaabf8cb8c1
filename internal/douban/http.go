package douban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	douerrors "github.com/lepinkainen/doubanmeta/internal/errors"
)

// getJSON performs a GET request and unmarshals the JSON response into target.
func (c *Client) getJSON(ctx context.Context, requestURL string, target any) error {
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", requestURL, err)
	}
	return nil
}

// getDocument performs a GET request and parses the response body as HTML.
func (c *Client) getDocument(ctx context.Context, requestURL string) (*goquery.Document, error) {
	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", requestURL, err)
	}
	return doc, nil
}

// get fetches a URL with transport-level retries. Throttling (403) is handled
// separately inside doGet because Douban expects a fixed pause, not backoff.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			slog.Debug("Retrying request", "url", requestURL, "attempt", attempt+1, "delay", delay)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.doGet(ctx, requestURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// doGet performs a single GET request, applying the rate limiter and the
// throttle policy: a 403 response earns one fixed pause and one retry before
// the request is declared throttled.
func (c *Client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	retried := false

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.5")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request to %s failed: %w", requestURL, err)
		}

		if resp.StatusCode == http.StatusForbidden {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			if retried {
				if c.browserFallback {
					slog.Info("Still throttled after retry, falling back to headless browser", "url", requestURL)
					html, berr := c.browserFetch(ctx, requestURL)
					if berr == nil {
						return []byte(html), nil
					}
					slog.Warn("Headless browser fetch failed", "url", requestURL, "error", berr)
				}
				return nil, douerrors.NewThrottledError(requestURL)
			}

			slog.Warn("Douban returned 403, pausing before retry", "url", requestURL, "wait", c.throttleWait)
			if err := sleepCtx(ctx, c.throttleWait); err != nil {
				return nil, err
			}
			retried = true
			continue
		}

		body, err := io.ReadAll(resp.Body)
		closeErr := resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response from %s: %w", requestURL, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close response body: %w", closeErr)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestURL)
		}

		return body, nil
	}
}

// isRetryable reports whether a request error is worth another attempt.
// Timeouts and connection resets are transient; everything else is not.
func isRetryable(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		msg := urlErr.Err.Error()
		return strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "EOF")
	}
	return false
}

// backoffDelay returns an exponential delay for the given attempt, capped at 10s.
func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

// sleepCtx sleeps for the given duration unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
