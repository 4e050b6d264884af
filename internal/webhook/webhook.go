// Package webhook implements the fire-and-forget outbound fan-out from
// spec §4.1 "side effects on each successful decode": a copy of the raw
// telegram body goes to an optional database-append sink and an
// optional outbound webhook, both with a 5-second join timeout.
package webhook

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/telemetry"
)

// JoinWindow bounds how long FanOut waits for every sink before
// returning, spec §4.1/§5's 5-second fan-out join.
const JoinWindow = 5 * time.Second

// Sink is the fan-out target interface, spec §10 Non-goals: persistence
// itself is out of scope, but the streaming client's fan-out needs
// something to call. OQ3 decision: a no-op sink is always wired so this
// code path runs unconditionally whether or not a real sink is
// configured.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, telegramType string, body []byte) error
}

// HTTPSink POSTs the raw XML body to a configured URL, spec §6 Egress
// "optional outbound webhook (raw XML body, Content-Type:
// application/xml, 5s timeout)".
type HTTPSink struct {
	URL        string
	httpClient *http.Client
}

// NewHTTPSink returns a Sink that POSTs to url.
func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{URL: url, httpClient: &http.Client{Timeout: JoinWindow}}
}

func (s *HTTPSink) Name() string { return "webhook" }

func (s *HTTPSink) Deliver(ctx context.Context, telegramType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// NoopSink is the always-wired no-op extension point for the database
// append sink, spec §10 Non-goals "database persistence driver" — the
// actual driver is out of scope, this is the seam a real one would plug
// into.
type NoopSink struct{}

func (NoopSink) Name() string { return "db" }
func (NoopSink) Deliver(context.Context, string, []byte) error { return nil }

// FanOut delivers body to every sink concurrently, each capped at
// JoinWindow, and logs/records a metric per outcome. It never returns
// an error itself — delivery failures are logged, not propagated, since
// this path is fire-and-forget by design.
func FanOut(ctx context.Context, sinks []Sink, telegramType string, body []byte, reg *metrics.Registry, logger *telemetry.EventLogger) {
	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(sink Sink) {
			defer wg.Done()
			deliverCtx, cancel := context.WithTimeout(ctx, JoinWindow)
			defer cancel()

			err := sink.Deliver(deliverCtx, telegramType, body)
			outcome := "ok"
			if err != nil {
				outcome = "error"
				if logger != nil {
					logger.LogWebhookDelivery(sink.Name(), err)
				}
			}
			if reg != nil {
				reg.WebhookDeliveries.WithLabelValues(sink.Name(), outcome).Inc()
			}
		}(sink)
	}
	wg.Wait()
}
