package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pourcost/backend/internal/domain"
	applog "github.com/pourcost/backend/internal/log"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
	maxErrorBodyBytes  = 4096
	userAgent          = "PourCost/1.0"
)

// ClientConfig holds settings for the catalog feed client
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       int
	RetryDelay        time.Duration
}

// Client reads the product feed published by the catalog scraper
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a new catalog feed client
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// Feed pages are cheap, but the scraper host is shared with the crawlers
	limit := rate.Limit(config.RequestsPerSecond)
	if config.RequestsPerSecond <= 0 {
		limit = rate.Limit(2)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 5
	}

	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      config.APIKey,
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// FetchProducts downloads and maps the full product feed. Rows that cannot
// be mapped are dropped with a warning.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.getWithRetry(ctx, c.baseURL+"/products")
	if err != nil {
		return nil, err
	}

	var feed FeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("%w: decode feed: %v", domain.ErrCatalogFeedFailure, err)
	}

	products := make([]domain.Product, 0, len(feed.Products))
	for _, row := range feed.Products {
		product, err := MapFeedProduct(row)
		if err != nil {
			applog.Warn(ctx, "dropping feed row", "id", row.ID, "error", err)
			continue
		}
		products = append(products, product)
	}

	applog.Info(ctx, "fetched catalog feed", "rows", len(feed.Products), "products", len(products))
	return products, nil
}

// getWithRetry performs a rate-limited GET, retrying transport errors,
// 429 and 5xx responses with linear backoff. Other 4xx responses fail fast.
func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			applog.Warn(ctx, "catalog feed request failed", "attempt", attempt, "error", err)
			lastErr = err
			if !c.sleep(ctx, attempt) {
				return nil, lastErr
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: read body: %v", domain.ErrCatalogFeedFailure, err)
			}
			return body, nil
		}

		body, _ := readLimitedBody(resp.Body, maxErrorBodyBytes)
		resp.Body.Close()
		lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrCatalogFeedFailure, resp.StatusCode, strings.TrimSpace(string(body)))
		applog.Warn(ctx, "catalog feed returned error status", "attempt", attempt, "status", resp.StatusCode)

		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
		if !c.sleep(ctx, attempt) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFeedFailure, err)
	}
	return resp, nil
}

// sleep waits out the backoff for attempt. It returns false when ctx ends
// first or no attempts remain.
func (c *Client) sleep(ctx context.Context, attempt int) bool {
	if attempt >= c.maxAttempts {
		return false
	}
	timer := time.NewTimer(linearBackoff(c.retryDelay, attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func linearBackoff(base time.Duration, attempt int) time.Duration {
	return time.Duration(attempt) * base
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
