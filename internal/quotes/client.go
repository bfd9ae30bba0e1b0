// Package quotes fetches price snapshots from public market data APIs and
// runs batch lookups on a background worker pool.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/atharvakonge/portfolio-ledger/internal/logging"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

var (
	// ErrNoQuote means the provider answered without a usable price.
	ErrNoQuote = errors.New("no quote available")
	// ErrUnsupported means the provider cannot price the ticker at all.
	ErrUnsupported = errors.New("unsupported ticker")
)

// client is the HTTP plumbing shared by every provider.
type client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	limiter    *rate.Limiter
}

// ClientOption configures a provider client
type ClientOption func(*client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func newClient(name, baseURL string, opts []ClientOption) *client {
	c := &client{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logging.NewSilent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON waits for the limiter, issues a GET and decodes a 200 response into out.
func (c *client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("provider", c.name).Str("path", path).Dur("elapsed", elapsed).Msg("Quote request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Str("provider", c.name).Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Quote provider non-OK response")
		return fmt.Errorf("%s error: status %d", c.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	c.logger.Debug().Str("provider", c.name).Str("path", path).Dur("elapsed", elapsed).Msg("Quote provider call")
	return nil
}

// number decodes JSON numbers and numeric strings alike; providers are not
// consistent about which they send.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = number(f)
	return nil
}
