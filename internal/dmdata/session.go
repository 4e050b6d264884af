package dmdata

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/shindosokuho/relay/internal/relayerr"
)

// Classifications and telegram type codes the session declares interest
// in, spec §4.1 "Session start".
var (
	DefaultClassifications = []string{"application.jquake", "telegram.earthquake", "eew.forecast"}
	DefaultTelegramTypes   = []string{
		"VXSE51", "VXSE52", "VXSE53", "VXSE61",
		"VTSE41", "VTSE51",
		"VXSE43", "VXSE44", "VXSE45",
	}
)

// SessionConfig is the vendor endpoint and app identity used for
// session negotiation.
type SessionConfig struct {
	StartURL string
	CloseURL string // must accept socket id appended by the caller
	AppName  string
}

type sessionRequestJSON struct {
	Classifications []string `json:"classifications"`
	Types           []string `json:"types"`
	AppName         string   `json:"appName"`
}

type sessionResponseJSON struct {
	WebSocket struct {
		URL string `json:"url"`
		ID  int    `json:"id"`
	} `json:"websocket"`
	Ticket string `json:"ticket"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SessionClient negotiates and tears down dmdata WebSocket sessions.
type SessionClient struct {
	cfg        SessionConfig
	httpClient *http.Client
}

// NewSessionClient returns a SessionClient.
func NewSessionClient(cfg SessionConfig, httpClient *http.Client) *SessionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SessionClient{cfg: cfg, httpClient: httpClient}
}

// Session is the result of a successful session start.
type Session struct {
	WebSocketURL string
	SocketID     int
}

// Start opens a session using tok for bearer auth, spec §4.1 "Session
// start": accepts either a success envelope or a typed error envelope.
func (c *SessionClient) Start(ctx context.Context, tok *oauth2.Token) (Session, error) {
	reqBody, err := json.Marshal(sessionRequestJSON{
		Classifications: DefaultClassifications,
		Types:           DefaultTelegramTypes,
		AppName:         c.cfg.AppName,
	})
	if err != nil {
		return Session{}, relayerr.New("dmdata.session.start", relayerr.KindSession, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.StartURL, bytes.NewReader(reqBody))
	if err != nil {
		return Session{}, relayerr.New("dmdata.session.start", relayerr.KindSession, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Session{}, relayerr.New("dmdata.session.start", relayerr.KindSession, err)
	}
	defer resp.Body.Close()

	var body sessionResponseJSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Session{}, relayerr.New("dmdata.session.start", relayerr.KindSession, err)
	}
	if body.Error != nil {
		return Session{}, relayerr.New("dmdata.session.start", relayerr.KindSession, errSessionRejected(body.Error.Message))
	}

	return Session{WebSocketURL: body.WebSocket.URL, SocketID: body.WebSocket.ID}, nil
}

// Close best-effort DELETEs the session, spec §5 "zero-retry best-effort
// DELETE" on shutdown and up to 3 retries otherwise.
func (c *SessionClient) Close(ctx context.Context, tok *oauth2.Token, socketID int, retries int) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cfg.CloseURL, nil)
		if err != nil {
			return relayerr.New("dmdata.session.close", relayerr.KindSession, err)
		}
		if tok != nil {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode < 500 {
			return nil
		}
		lastErr = errSessionRejected("close failed")
	}
	if lastErr == nil {
		return nil
	}
	return relayerr.New("dmdata.session.close", relayerr.KindSession, lastErr)
}

type errSessionRejected string

func (e errSessionRejected) Error() string { return string(e) }
