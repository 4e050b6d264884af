// Package dmdata implements the streaming ingest client from spec §4.1:
// OAuth2 token acquisition, WebSocket session negotiation, frame
// handling, and reconnect/liveness management for the vendor's
// telegram-delivery socket.
package dmdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/relayerr"
	"github.com/shindosokuho/relay/internal/telegram"
	"github.com/shindosokuho/relay/internal/telemetry"
	"github.com/shindosokuho/relay/internal/webhook"
)

// Config bundles everything Client needs to authenticate, negotiate a
// session, and dial the resulting socket.
type Config struct {
	Token   TokenConfig
	Session SessionConfig
}

// Client drives the DISCONNECTED → TOKEN_OK → SESSION_OK → CONNECTED
// state machine from spec §4.1.
type Client struct {
	tokens  *TokenManager
	session *SessionClient
	sinks   []webhook.Sink
	clock   clockwork.Clock
	metrics *metrics.Registry
	logger  *telemetry.EventLogger

	dial func(url string) (wsConn, error)

	// OnEvent, when set, is called with every successfully dispatched
	// telegram so the caller can route it into module state and the EEW
	// arbitrator. Left nil in tests that only exercise frame handling.
	OnEvent func(domain.TelegramEvent)

	mu           sync.Mutex
	conn         wsConn
	socketID     string
	errored      bool
	lastPong     time.Time
	lastPongSet  bool
	lastPongID   string
	shuttingDown bool
}

// wsConn is the subset of *websocket.Conn the client needs, narrowed so
// tests can substitute a fake.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

// New returns a Client. clock may be nil to use the real clock.
func New(cfg Config, reg *metrics.Registry, logger *telemetry.EventLogger, clock clockwork.Clock, sinks []webhook.Sink) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		tokens:  NewTokenManager(cfg.Token, nil),
		session: NewSessionClient(cfg.Session, nil),
		sinks:   sinks,
		clock:   clock,
		metrics: reg,
		logger:  logger,
		dial:    dialWebSocket,
	}
}

func dialWebSocket(url string) (wsConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Connect runs one full TOKEN_OK → SESSION_OK → CONNECTED attempt and
// then blocks reading frames until the connection drops or ctx is
// cancelled. Callers drive reconnection by calling Connect again.
func (c *Client) Connect(ctx context.Context) error {
	tok, err := c.tokens.Refresh(ctx)
	if err != nil {
		cached, ok := c.tokens.Token()
		if !ok {
			return err
		}
		tok = cached
	}

	sess, err := c.session.Start(ctx, tok)
	if err != nil {
		return err
	}

	conn, err := c.dial(sess.WebSocketURL)
	if err != nil {
		return relayerr.New("dmdata.connect", relayerr.KindTransport, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.errored = false
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DMDataConnected.Set(1)
	}

	return c.readLoop(ctx, conn)
}

// readLoop consumes frames until the socket closes or ctx is done.
func (c *Client) readLoop(ctx context.Context, conn wsConn) error {
	defer func() {
		c.mu.Lock()
		wasShuttingDown := c.shuttingDown
		c.conn = nil
		if !wasShuttingDown {
			c.errored = true
		}
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.DMDataConnected.Set(0)
		}
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return relayerr.New("dmdata.readloop", relayerr.KindTransport, err)
		}

		var f frameJSON
		if err := json.Unmarshal(raw, &f); err != nil {
			if c.logger != nil {
				c.logger.LogParseError("dmdata.frame", err)
			}
			continue
		}

		c.handleFrame(ctx, conn, f)
	}
}

func (c *Client) handleFrame(ctx context.Context, conn wsConn, f frameJSON) {
	switch f.Type {
	case "start":
		c.mu.Lock()
		c.socketID = f.SocketID.String()
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.LogSessionOpened(f.SocketID.String())
		}
	case "ping":
		c.handlePing(conn, f.PingID)
	case "data":
		c.handleData(ctx, f)
	case "error":
		c.handleError(conn, f)
	}
}

func (c *Client) handlePing(conn wsConn, pingID string) {
	c.mu.Lock()
	c.lastPong = c.clock.Now()
	c.lastPongSet = true
	c.lastPongID = pingID
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DMDataLastPongAge.Set(0)
	}
	_ = conn.WriteJSON(map[string]string{"type": "pong", "pingId": pingID})
}

func (c *Client) handleData(ctx context.Context, f frameJSON) {
	body, err := decodeFrameBody(f)
	if err != nil {
		if c.logger != nil {
			c.logger.LogTelegramDropped(err.Error(), "")
		}
		return
	}

	headType, err := telegram.PeekHeadType(body)
	if err != nil {
		if c.logger != nil {
			c.logger.LogParseError("unknown", err)
		}
		return
	}

	ev, err := telegram.Dispatch(body)
	if err != nil {
		if c.logger != nil {
			c.logger.LogParseError(headType, err)
		}
		return
	}
	if c.OnEvent != nil {
		c.OnEvent(ev)
	}

	webhook.FanOut(ctx, c.sinks, headType, body, c.metrics, c.logger)
}

func (c *Client) handleError(conn wsConn, f frameJSON) {
	if f.Close {
		c.mu.Lock()
		c.errored = true
		c.mu.Unlock()
		return
	}
	if benignShutdownCodes[f.Code] {
		return
	}
	if f.Code == pingVerificationFailureCode {
		c.mu.Lock()
		id := c.lastPongID
		had := c.lastPongSet
		c.mu.Unlock()
		if had {
			_ = conn.WriteJSON(map[string]string{"type": "pong", "pingId": id})
		}
	}
}

// Shutdown marks the client as intentionally stopping (so the read loop
// does not mark itself errored) and closes the active session.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.shuttingDown = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	tok, _ := c.tokens.Token()
	return c.session.Close(ctx, tok, 0, 0)
}
