package dmdata

import "time"

// Status is the read-only snapshot exposed to the HTTP layer, spec
// §4.1 "Status accessor".
type Status struct {
	Status           string
	ActiveSocketID   string
	WebSocketErrored bool
	LastPongTime     time.Time
	HasLastPong      bool
	PongTimeDelta    time.Duration
}

// staleAfter is the liveness threshold spec §4.1 uses for both the
// status accessor's "OK" determination and the keep-alive probe's
// reconnect trigger.
const staleAfter = 30 * time.Minute

// Status reports the connection's current health. A nil WebSocket
// counts as errored, matching the original implementation's behavior
// (no separate "no socket yet" state).
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		ActiveSocketID:   c.socketID,
		WebSocketErrored: c.errored || c.conn == nil,
		LastPongTime:     c.lastPong,
		HasLastPong:      c.lastPongSet,
	}

	if s.HasLastPong {
		s.PongTimeDelta = c.clock.Since(c.lastPong)
	} else {
		s.PongTimeDelta = staleAfter + time.Second
	}

	if s.ActiveSocketID != "" && !s.WebSocketErrored && s.PongTimeDelta < staleAfter {
		s.Status = "OK"
	} else {
		s.Status = "FAIL"
	}
	return s
}
