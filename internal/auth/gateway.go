// Package auth implements the Kakao OAuth login flow: it watches a stream of
// redirect URLs, extracts the authorization code and exchanges it with the
// backend for a session token.
package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"somgil/internal/metrics"
	"somgil/internal/session"
	"somgil/internal/somgilapi"
)

// Kakao authorization endpoint. Token exchange goes through the Somgil
// backend, not through Kakao's token URL.
var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

// ScreenHome is the fail-open landing target.
const ScreenHome = "Home"

// Landing tells the caller where to navigate after an observation was
// handled.
type Landing struct {
	Screen  string
	Params  map[string]string
	Refresh bool
}

// Exchanger trades an authorization code for a backend session.
type Exchanger interface {
	ExchangeKakaoCode(ctx context.Context, code string) (*somgilapi.LoginResponse, error)
}

// Gateway drives the login flow. The embedded browser may report the same
// redirect several times while it settles; the gateway guarantees at most
// one concurrent exchange.
type Gateway struct {
	oauth    oauth2.Config
	client   Exchanger
	sessions *session.Store
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	returnTo *Landing
}

// NewGateway builds a gateway for the given Kakao app key and redirect URI.
func NewGateway(restAPIKey, redirectURI string, client Exchanger, sessions *session.Store, logger zerolog.Logger) *Gateway {
	return &Gateway{
		oauth: oauth2.Config{
			ClientID:    restAPIKey,
			Endpoint:    kakaoEndpoint,
			RedirectURL: redirectURI,
		},
		client:   client,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// AuthCodeURL returns the Kakao authorize URL to open in a browser view.
func (g *Gateway) AuthCodeURL() string {
	return g.oauth.AuthCodeURL("")
}

// SetReturnTo records where to resume after a successful login. Several
// flows start login from a package screen and must land back there.
func (g *Gateway) SetReturnTo(screen string, params map[string]string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.returnTo = &Landing{Screen: screen, Params: params}
}

// ExtractCode pulls the authorization code out of an observed URL.
// Returns "" when the URL is not the redirect target.
func (g *Gateway) ExtractCode(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	redirect, err := url.Parse(g.oauth.RedirectURL)
	if err != nil || !strings.HasPrefix(u.Path, redirect.Path) {
		return ""
	}
	return u.Query().Get("code")
}

// ObserveRedirect feeds one observed navigation URL to the gateway. URLs
// without a code are ignored. When a code is present, the exchange runs at
// most once per observation burst; duplicates arriving while an exchange is
// in flight are dropped.
//
// The returned Landing is nil when the observation required no navigation.
// Exchange failure fails open: the session is cleared and the user lands on
// Home as anonymous; err reports the cause for logging only.
func (g *Gateway) ObserveRedirect(ctx context.Context, rawURL string) (*Landing, error) {
	code := g.ExtractCode(rawURL)
	if code == "" {
		return nil, nil
	}

	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		g.logger.Debug().Msg("duplicate redirect observation dropped")
		return nil, nil
	}
	g.inFlight = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	}()

	resp, err := g.client.ExchangeKakaoCode(ctx, code)
	if err != nil {
		metrics.IncCodeExchange("failure")
		g.logger.Warn().Err(err).Msg("code exchange failed, continuing anonymous")
		// Drop any partial token so LoggedIn never lies.
		if clearErr := g.sessions.Clear(ctx); clearErr != nil {
			g.logger.Error().Err(clearErr).Msg("clearing session after failed exchange")
		}
		return &Landing{Screen: ScreenHome}, err
	}

	if err := g.sessions.Set(ctx, resp.Token, resp.Email, resp.Nickname); err != nil {
		metrics.IncCodeExchange("failure")
		g.logger.Error().Err(err).Msg("storing session failed")
		return &Landing{Screen: ScreenHome}, err
	}
	metrics.IncCodeExchange("success")

	g.mu.Lock()
	target := g.returnTo
	g.returnTo = nil
	g.mu.Unlock()

	if target != nil {
		target.Refresh = true
		g.logger.Info().Str("screen", target.Screen).Msg("login complete, resuming caller context")
		return target, nil
	}
	g.logger.Info().Msg("login complete")
	return &Landing{Screen: ScreenHome, Refresh: true}, nil
}
