package dmdata

import (
	"context"
	"time"
)

// maxReconnectAttempts and reconnectPause implement spec §4.1's liveness
// probe: "retry up to 2 times with a 10-second pause between attempts."
const (
	maxReconnectAttempts = 2
	reconnectPause       = 10 * time.Second
)

// KeepAliveProbe is run every minute by the scheduler. If there is no
// active WebSocket, or the last pong is stale, it refreshes the token
// and reconnects, retrying up to maxReconnectAttempts times.
func (c *Client) KeepAliveProbe(ctx context.Context) {
	st := c.Status()
	if st.ActiveSocketID != "" && !st.WebSocketErrored && st.PongTimeDelta <= staleAfter {
		return
	}

	if c.logger != nil {
		c.logger.LogKeepAliveStall(st.PongTimeDelta)
	}

	if _, err := c.tokens.Refresh(ctx); err != nil {
		if c.logger != nil {
			c.logger.LogTokenRefresh(false, err)
		}
		return
	}

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		go func() {
			_ = c.Connect(ctx)
		}()

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(reconnectPause):
		}

		if st := c.Status(); st.ActiveSocketID != "" && !st.WebSocketErrored {
			return
		}
		if c.logger != nil {
			c.logger.LogReconnect("keepalive_stall", attempt, nil)
		}
	}
}
