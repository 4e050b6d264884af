package dmdata

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/shindosokuho/relay/internal/relayerr"
)

// TokenConfig holds the OAuth2 endpoint and credential the token
// manager exchanges a refresh token against, spec §4.1 "Token
// acquisition".
type TokenConfig struct {
	TokenURL     string
	ClientID     string
	RefreshToken string
}

// tokenResponseJSON is the vendor's non-standard token response: plain
// JSON rather than the RFC 6749 form the stdlib oauth2 package expects,
// so the exchange is hand-rolled and the result is carried in an
// oauth2.Token for every downstream consumer that wants the standard
// shape (DOMAIN STACK note).
type tokenResponseJSON struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenManager exchanges the long-lived refresh credential for a
// short-lived access token and caches the result. A Client's manager is
// refreshed before every session start (Client.Connect) and when the
// keep-alive probe finds the connection stale; no timer refreshes it
// between those calls.
type TokenManager struct {
	cfg        TokenConfig
	httpClient *http.Client

	mu    sync.RWMutex
	token *oauth2.Token
}

// NewTokenManager returns a TokenManager with no cached token.
func NewTokenManager(cfg TokenConfig, httpClient *http.Client) *TokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenManager{cfg: cfg, httpClient: httpClient}
}

// Token returns the cached token, if any.
func (m *TokenManager) Token() (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != nil
}

// Refresh exchanges the refresh token for a fresh access token. On
// failure the previous token (if any) is retained so the caller can let
// the hourly timer retry, per spec §7 AuthError handling.
func (m *TokenManager) Refresh(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", m.cfg.RefreshToken)
	form.Set("client_id", m.cfg.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, relayerr.New("dmdata.token.refresh", relayerr.KindAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, relayerr.New("dmdata.token.refresh", relayerr.KindAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, relayerr.New("dmdata.token.refresh", relayerr.KindAuth, errBadTokenStatus(resp.StatusCode))
	}

	var body tokenResponseJSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, relayerr.New("dmdata.token.refresh", relayerr.KindAuth, err)
	}

	tok := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   body.TokenType,
		Expiry:      time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}

	m.mu.Lock()
	m.token = tok
	m.mu.Unlock()

	return tok, nil
}

type errBadTokenStatus int

func (e errBadTokenStatus) Error() string { return "unexpected token endpoint status" }
