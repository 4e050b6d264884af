// Package telemetry provides the relay's structured logging and OpenTelemetry
// wiring. EventLogger binds a small set of always-present attributes (the
// running module, the upstream classification) to a slog.Logger and exposes
// named Log<Event> helpers so call sites never hand-format log lines.
package telemetry

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// EventLogger wraps a *slog.Logger with relay-specific bound attributes and
// named event methods.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLoggerWithWriter creates an EventLogger writing JSON to the given
// writer at the given level.
func NewEventLoggerWithWriter(w io.Writer, level slog.Level) *EventLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &EventLogger{logger: slog.New(h)}
}

// NewEventLogger creates an EventLogger around an existing *slog.Logger.
func NewEventLogger(base *slog.Logger) *EventLogger {
	return &EventLogger{logger: base}
}

// With returns a new EventLogger with additional bound attributes, e.g.
// module name or classification, without mutating the receiver.
func (l *EventLogger) With(args ...any) *EventLogger {
	return &EventLogger{logger: l.logger.With(args...)}
}

// Logger exposes the underlying slog.Logger for ad-hoc log sites.
func (l *EventLogger) Logger() *slog.Logger { return l.logger }

// LogReconnect records a dmdata WebSocket reconnect attempt.
func (l *EventLogger) LogReconnect(reason string, attempt int, err error) {
	args := []any{"event", "dmdata.reconnect", "reason", reason, "attempt", attempt}
	if err != nil {
		l.logger.Warn("reconnecting to dmdata", append(args, "error", err.Error())...)
		return
	}
	l.logger.Info("reconnecting to dmdata", args...)
}

// LogTokenRefresh records an OAuth2 token refresh.
func (l *EventLogger) LogTokenRefresh(ok bool, err error) {
	if !ok {
		l.logger.Error("token refresh failed", "event", "dmdata.token_refresh", "error", err)
		return
	}
	l.logger.Info("token refreshed", "event", "dmdata.token_refresh")
}

// LogSessionOpened records a successful session-open negotiation.
func (l *EventLogger) LogSessionOpened(socketID string) {
	l.logger.Info("dmdata session opened", "event", "dmdata.session_opened", "socket_id", socketID)
}

// LogSessionClosed records a session close, planned or otherwise.
func (l *EventLogger) LogSessionClosed(socketID string, planned bool) {
	l.logger.Info("dmdata session closed", "event", "dmdata.session_closed", "socket_id", socketID, "planned", planned)
}

// LogKeepAliveStall records a keep-alive probe that found a stale pong.
func (l *EventLogger) LogKeepAliveStall(sinceLastPong time.Duration) {
	l.logger.Warn("keep-alive stall detected", "event", "dmdata.keepalive_stall", "since_last_pong", sinceLastPong.String())
}

// LogTelegramDropped records a telegram that was rejected before dispatch
// because its frame body could not be decoded.
func (l *EventLogger) LogTelegramDropped(reason string, telegramType string) {
	l.logger.Warn("telegram dropped", "event", "telegram.dropped", "reason", reason, "type", telegramType)
}

// LogParseError records a telegram parse failure for a given head.Type.
func (l *EventLogger) LogParseError(headType string, err error) {
	l.logger.Error("telegram parse failed", "event", "telegram.parse_error", "head_type", headType, "error", err)
}

// LogSchedulerPanic records a recovered panic inside a scheduled job.
func (l *EventLogger) LogSchedulerPanic(job string, recovered any) {
	l.logger.Error("recovered panic in scheduled job", "event", "scheduler.panic", "job", job, "recovered", recovered)
}

// LogSchedulerSkip records a job tick skipped because the job's
// max-instances limit was already reached.
func (l *EventLogger) LogSchedulerSkip(job string) {
	l.logger.Debug("skipping job tick, previous run still in flight", "event", "scheduler.skip", "job", job)
}

// LogArbitration records which EEW source the arbitrator selected.
func (l *EventLogger) LogArbitration(eventID, source string) {
	l.logger.Info("eew arbitration decision", "event", "eewarbiter.decision", "event_id", eventID, "source", source)
}

// LogWebhookDelivery records the outcome of a fan-out sink delivery.
func (l *EventLogger) LogWebhookDelivery(sink string, err error) {
	if err != nil {
		l.logger.Warn("webhook sink delivery failed", "event", "webhook.delivery_failed", "sink", sink, "error", err)
		return
	}
	l.logger.Debug("webhook sink delivered", "event", "webhook.delivered", "sink", sink)
}

var (
	globalMu     sync.RWMutex
	globalLogger = NewEventLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
)

// SetGlobalEventLogger installs the process-wide EventLogger.
func SetGlobalEventLogger(l *EventLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalEventLogger returns the process-wide EventLogger, defaulting to a
// no-op logger if none has been installed.
func GetGlobalEventLogger() *EventLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
