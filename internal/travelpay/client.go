// Package travelpay verifies product links pointing at the TravelPay
// payment platform. Group trips reference a TravelPay product per term;
// the admin dashboard surfaces whether those links still resolve.
package travelpay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/resilience"
)

const (
	// UpstreamName identifies the TravelPay upstream in the health registry.
	UpstreamName = "travelpay"
)

// ErrInvalidProductURL is returned when the URL is not an absolute http(s) URL.
var ErrInvalidProductURL = errors.New("invalid product url")

// Status describes the outcome of a product URL check.
type Status string

const (
	// StatusVerified means the product URL resolved successfully.
	StatusVerified Status = "VERIFIED"

	// StatusNotFound means TravelPay no longer knows the product.
	StatusNotFound Status = "NOT_FOUND"

	// StatusUnverified means the check could not be completed. The link may
	// still be fine; TravelPay was unreachable or the circuit is open.
	StatusUnverified Status = "UNVERIFIED"
)

// Verification is the result of checking a single product URL.
type Verification struct {
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	HTTPCode  int       `json:"httpCode,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// RequestMetrics records upstream request outcomes.
// *middleware.UpstreamMetrics satisfies it.
type RequestMetrics interface {
	RecordRequest(upstream, operation string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the TravelPay client.
type ClientConfig struct {
	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Registry, when set and HTTPClient is nil, tracks the upstream's health.
	Registry *resilience.Registry

	// Metrics, when set, records every verification request (optional).
	Metrics RequestMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client checks TravelPay product URLs.
type Client struct {
	httpClient *resilience.Client
	metrics    RequestMetrics
	logger     zerolog.Logger
}

// NewClient creates a new TravelPay client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(UpstreamName)
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return UpstreamName
}

// VerifyProductURL checks that a product URL still resolves on TravelPay.
// Network failures and an open circuit degrade to StatusUnverified rather
// than an error, so trip saves are never blocked by a TravelPay outage.
func (c *Client) VerifyProductURL(ctx context.Context, productURL string) (*Verification, error) {
	if err := validateProductURL(productURL); err != nil {
		return nil, err
	}

	result := &Verification{
		URL:       productURL,
		CheckedAt: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, productURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordRequest(UpstreamName, "verify-product", time.Since(start), err)
	}
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Warn().Str("url", productURL).Msg("travelpay circuit open, skipping verification")
		} else {
			c.logger.Warn().Err(err).Str("url", productURL).Msg("travelpay verification failed")
		}
		result.Status = StatusUnverified
		return result, nil
	}
	defer resp.Body.Close()

	result.HTTPCode = resp.StatusCode
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Status = StatusNotFound
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = StatusVerified
	default:
		result.Status = StatusUnverified
	}

	return result, nil
}

// VerifyProductURLs checks a batch of product URLs, preserving input order.
// Invalid URLs are reported as StatusUnverified with no HTTP code.
func (c *Client) VerifyProductURLs(ctx context.Context, urls []string) ([]Verification, error) {
	results := make([]Verification, 0, len(urls))
	for _, u := range urls {
		v, err := c.VerifyProductURL(ctx, u)
		if err != nil {
			if errors.Is(err, ErrInvalidProductURL) {
				results = append(results, Verification{
					URL:       u,
					Status:    StatusUnverified,
					CheckedAt: time.Now(),
				})
				continue
			}
			return nil, err
		}
		results = append(results, *v)
	}
	return results, nil
}

func validateProductURL(productURL string) error {
	if !strings.HasPrefix(productURL, "http://") && !strings.HasPrefix(productURL, "https://") {
		return fmt.Errorf("%w: %q", ErrInvalidProductURL, productURL)
	}
	if _, err := url.ParseRequestURI(productURL); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProductURL, productURL)
	}
	return nil
}
