package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/logging"
)

// ErrNoCredentials is returned when neither a credentials file nor a client
// id/secret pair is configured.
var ErrNoCredentials = errors.New("no Google OAuth client configured: provide GOOGLE_CREDENTIALS_PATH or GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET")

// LoadOAuthConfig builds the OAuth client configuration. An installed-app
// credentials file at credentialsPath wins over clientID/clientSecret.
func LoadOAuthConfig(credentialsPath, clientID, clientSecret string, scopes []string) (*oauth2.Config, error) {
	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		switch {
		case err == nil:
			conf, err := google.ConfigFromJSON(data, scopes...)
			if err != nil {
				return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsPath, err)
			}
			return conf, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsPath, err)
		}
	}

	if clientID == "" || clientSecret == "" {
		return nil, ErrNoCredentials
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}, nil
}

// Authenticator hands out authorized HTTP clients, running the interactive
// flow at most once per process.
type Authenticator struct {
	Config *oauth2.Config
	Store  TokenStore

	// Browser opens the consent page. Nil only prints the URL.
	Browser BrowserOpener

	// Out receives user-facing instructions during the interactive flow.
	Out io.Writer

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger

	mu     sync.Mutex
	source oauth2.TokenSource
}

// TokenSource returns a refreshing token source backed by the store. When no
// usable token is cached the interactive flow runs first.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.source != nil {
		return a.source, nil
	}

	// Refreshes happen long after the caller's context is gone.
	bg := context.WithoutCancel(ctx)

	tok := a.cachedToken(bg)
	if tok == nil {
		var err error
		tok, err = Authorize(ctx, a.Config, a.Browser, a.out())
		if err != nil {
			a.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
			return nil, fmt.Errorf("failed to authorize with Google: %w", err)
		}
		a.Metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)
		if err := a.Store.Save(tok); err != nil {
			return nil, fmt.Errorf("failed to cache token: %w", err)
		}
	}

	a.source = &savingTokenSource{
		base:    a.Config.TokenSource(bg, tok),
		store:   a.Store,
		last:    tok.AccessToken,
		logger:  a.logger(),
		metrics: a.Metrics,
	}
	return a.source, nil
}

// cachedToken returns the stored token if it is valid or can be refreshed.
func (a *Authenticator) cachedToken(ctx context.Context) *oauth2.Token {
	tok, err := a.Store.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.logger().Warn("ignoring unreadable token cache", logging.Err(err))
		}
		return nil
	}
	if tok.Valid() {
		return tok
	}

	refreshed, err := a.Config.TokenSource(ctx, tok).Token()
	if err != nil {
		a.Metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultExpired)
		a.logger().Warn("cached token could not be refreshed, re-authorizing", logging.Err(err))
		return nil
	}
	a.Metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
	if err := a.Store.Save(refreshed); err != nil {
		a.logger().Warn("failed to persist refreshed token", logging.Err(err))
	}
	return refreshed
}

// HTTPClient returns an authorized client. HTTP/2 is disabled; some Google
// endpoints reset long-lived HTTP/2 connections from desktop clients.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	ts, err := a.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(context.WithoutCancel(ctx), ts)
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}

// Revoke forgets the cached token so the next run re-authorizes.
func (a *Authenticator) Revoke() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = nil
	return a.Store.Delete()
}

func (a *Authenticator) out() io.Writer {
	if a.Out == nil {
		return os.Stderr
	}
	return a.Out
}

func (a *Authenticator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

// savingTokenSource persists every new access token it sees.
type savingTokenSource struct {
	base    oauth2.TokenSource
	store   TokenStore
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultFailure)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		s.metrics.RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultSuccess)
		s.logger.Debug("access token refreshed",
			slog.String("access_token", logging.SanitizeToken(tok.AccessToken)),
			slog.Time("expiry", tok.Expiry))
		if err := s.store.Save(tok); err != nil {
			s.logger.Warn("failed to persist refreshed token", logging.Err(err))
		}
	}
	return tok, nil
}
