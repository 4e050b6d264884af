// Package fetch implements the HTTP poll fetchers from spec §4
// component 6: P2P earthquake summary, shake-level gauge, EEW image +
// JSON, global seismicity, and (per SPEC_FULL §10 item 1) the JMA Atom
// tsunami fallback poller used when the dmdata module is disabled.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/relayerr"
	"github.com/shindosokuho/relay/internal/telemetry"
)

const maxResponseBodyBytes = 8 << 20

// Config tunes the retry/backoff policy, spec §5: "HTTP default 3.5s
// with up to 3 retries and quadratic backoff (retries² seconds)".
type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig mirrors spec §5's defaults.
func DefaultConfig() Config {
	return Config{Timeout: 3500 * time.Millisecond, MaxRetries: 3}
}

// Client is a retrying HTTP client for the poll fetchers, grounded on
// the teacher's internal/worker.RetryHTTPClient quadratic-backoff
// pattern, issuing GET requests only (Get is its one request method).
type Client struct {
	httpClient *http.Client
	config     Config
	metrics    *metrics.Registry
	logger     *telemetry.EventLogger
}

// New returns a Client. logger/reg may be nil.
func New(cfg Config, reg *metrics.Registry, logger *telemetry.EventLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		metrics:    reg,
		logger:     logger,
	}
}

// Get performs a GET against url with quadratic backoff between
// retries, labeling metrics/logs by source.
func (c *Client) Get(ctx context.Context, source, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		body, err := c.doOnce(ctx, url)
		if c.metrics != nil {
			c.metrics.FetchRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		}
		if err == nil {
			return body, nil
		}
		lastErr = err
		if _, retryable := err.(*retryableStatusError); !retryable {
			if _, isStatus := err.(*statusError); isStatus {
				break
			}
		}
	}

	if c.metrics != nil {
		c.metrics.FetchRequestFailures.WithLabelValues(source).Inc()
	}
	return nil, relayerr.New("fetch."+source, relayerr.KindTransport, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, &retryableStatusError{code: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return nil, &statusError{code: resp.StatusCode}
	}

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(body) > maxResponseBodyBytes {
		body = body[:maxResponseBodyBytes]
	}
	return body, nil
}

type retryableStatusError struct{ code int }

func (e *retryableStatusError) Error() string { return "upstream server error" }

type statusError struct{ code int }

func (e *statusError) Error() string { return "unexpected upstream status" }
