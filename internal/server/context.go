package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/ykykj/assistant/internal/calendar"
	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/docs"
	"github.com/ykykj/assistant/internal/drive"
	"github.com/ykykj/assistant/internal/gmail"
	"github.com/ykykj/assistant/internal/google"
	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/maps"
	"github.com/ykykj/assistant/internal/weather"
	"github.com/ykykj/assistant/internal/websearch"
)

// ErrShutdown is returned for client requests after Shutdown.
var ErrShutdown = errors.New("server context is shut down")

// Options configures a ServerContext.
type Options struct {
	Config *config.Config

	// Authenticator authorizes Google API calls. Without one, Google tools
	// fail until a client is injected with the Set methods.
	Authenticator *google.Authenticator

	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
	Logger      *slog.Logger

	// Now overrides the clock used by time-dependent tools.
	Now func() time.Time
}

// ServerContext holds the configuration and the lazily created clients.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg         *config.Config
	auth        *google.Authenticator
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	now         func() time.Time
	location    *time.Location

	mu             sync.Mutex
	googleOpts     []option.ClientOption
	gmailClient    *gmail.Client
	calendarClient *calendar.Client
	docsClient     *docs.Client
	driveClient    *drive.Client
	mapsService    *maps.Service
	weatherClient  *weather.Client
	searcher       websearch.Searcher
	userInfo       *google.UserInfo
	shutdown       bool
}

// NewServerContext creates a ServerContext. Clients that need no network
// access at construction, maps and weather, are built immediately.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.Config == nil {
		return nil, errors.New("configuration is required")
	}
	cfg := opts.Config

	loc := time.UTC
	if cfg.Google.CalendarTimezone != "" {
		l, err := time.LoadLocation(cfg.Google.CalendarTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid calendar time zone %q: %w", cfg.Google.CalendarTimezone, err)
		}
		loc = l
	}

	mapsService, err := maps.NewService(cfg.Maps.APIKey, cfg.Maps.Language)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		cfg:           cfg,
		auth:          opts.Authenticator,
		metrics:       opts.Metrics,
		auditLogger:   opts.AuditLogger,
		logger:        logger,
		now:           now,
		location:      loc,
		mapsService:   mapsService,
		weatherClient: weather.NewClient(cfg.Weather.APIKey),
	}, nil
}

// Context returns the server context, cancelled by Shutdown.
func (sc *ServerContext) Context() context.Context { return sc.ctx }

// Config returns the configuration.
func (sc *ServerContext) Config() *config.Config { return sc.cfg }

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics { return sc.metrics }

// AuditLogger returns the audit logger. It may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger { return sc.auditLogger }

// Logger returns the process logger.
func (sc *ServerContext) Logger() *slog.Logger { return sc.logger }

// Now returns the current time in the calendar time zone.
func (sc *ServerContext) Now() time.Time { return sc.now().In(sc.location) }

// Location returns the calendar time zone.
func (sc *ServerContext) Location() *time.Location { return sc.location }

// UserEmail returns the configured Google account address.
func (sc *ServerContext) UserEmail() string { return sc.cfg.Google.AuthEmail }

// googleOptionsLocked returns client options carrying the OAuth HTTP client,
// authorizing on first use. Failures are not cached so a later call can retry.
func (sc *ServerContext) googleOptionsLocked(ctx context.Context) ([]option.ClientOption, error) {
	if sc.shutdown {
		return nil, ErrShutdown
	}
	if sc.googleOpts != nil {
		return sc.googleOpts, nil
	}
	if sc.auth == nil {
		return nil, errors.New("google account is not authorized, run `assistant auth` first")
	}
	hc, err := sc.auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	sc.googleOpts = []option.ClientOption{option.WithHTTPClient(hc)}
	return sc.googleOpts, nil
}

// GmailClient returns the Gmail client, creating it on first use.
func (sc *ServerContext) GmailClient(ctx context.Context) (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.gmailClient != nil {
		return sc.gmailClient, nil
	}
	opts, err := sc.googleOptionsLocked(ctx)
	if err != nil {
		return nil, err
	}
	client, err := gmail.NewClient(sc.ctx, sc.cfg.Google.AuthEmail, opts...)
	if err != nil {
		return nil, err
	}
	sc.gmailClient = client
	return client, nil
}

// CalendarClient returns the Calendar client, creating it on first use.
func (sc *ServerContext) CalendarClient(ctx context.Context) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}
	opts, err := sc.googleOptionsLocked(ctx)
	if err != nil {
		return nil, err
	}
	client, err := calendar.NewClient(sc.ctx, sc.location.String(), opts...)
	if err != nil {
		return nil, err
	}
	sc.calendarClient = client
	return client, nil
}

// DocsClient returns the Docs client, creating it on first use.
func (sc *ServerContext) DocsClient(ctx context.Context) (*docs.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.docsClient != nil {
		return sc.docsClient, nil
	}
	opts, err := sc.googleOptionsLocked(ctx)
	if err != nil {
		return nil, err
	}
	client, err := docs.NewClient(sc.ctx, opts...)
	if err != nil {
		return nil, err
	}
	sc.docsClient = client
	return client, nil
}

// DriveClient returns the Drive client, creating it on first use.
func (sc *ServerContext) DriveClient(ctx context.Context) (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.driveClient != nil {
		return sc.driveClient, nil
	}
	opts, err := sc.googleOptionsLocked(ctx)
	if err != nil {
		return nil, err
	}
	client, err := drive.NewClient(sc.ctx, opts...)
	if err != nil {
		return nil, err
	}
	sc.driveClient = client
	return client, nil
}

// UserInfo returns the profile of the authorized account, fetched once.
func (sc *ServerContext) UserInfo(ctx context.Context) (*google.UserInfo, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.userInfo != nil {
		return sc.userInfo, nil
	}
	opts, err := sc.googleOptionsLocked(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	info, err := google.GetUserInfo(ctx, opts...)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	sc.metrics.RecordAPIOperation(ctx, instrumentation.ServiceUserInfo, "get", status, time.Since(start))
	if err != nil {
		return nil, err
	}
	sc.userInfo = info
	return info, nil
}

// MapsService returns the Maps service. It is never nil; without an API key
// every call reports maps.ErrNotConfigured.
func (sc *ServerContext) MapsService() *maps.Service {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.mapsService
}

// WeatherClient returns the QWeather client. It is never nil.
func (sc *ServerContext) WeatherClient() *weather.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.weatherClient
}

// Searcher returns the web search provider, or websearch.ErrNotConfigured.
func (sc *ServerContext) Searcher(ctx context.Context) (websearch.Searcher, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.searcher != nil {
		return sc.searcher, nil
	}
	s, err := websearch.New(ctx, websearch.Config{
		TavilyAPIKey:   sc.cfg.Search.TavilyAPIKey,
		GoogleAPIKey:   sc.cfg.Search.GoogleAPIKey,
		GoogleEngineID: sc.cfg.Search.GoogleEngineID,
	})
	if err != nil {
		return nil, err
	}
	sc.searcher = s
	return s, nil
}

// Integrations reports which optional API-key services are usable.
func (sc *ServerContext) Integrations() map[string]bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	search := sc.cfg.Search
	return map[string]bool{
		"maps":    sc.mapsService.Configured(),
		"weather": sc.weatherClient.Configured(),
		"search":  sc.searcher != nil || search.TavilyAPIKey != "" || (search.GoogleAPIKey != "" && search.GoogleEngineID != ""),
	}
}

// Google authorization states reported by GoogleAuthState.
const (
	GoogleAuthorized    = "authorized"
	GoogleTokenCached   = "token cached"
	GoogleNotAuthorized = "not authorized"
	GoogleNoCredentials = "no credentials"
)

// GoogleAuthState reports how far Google authorization has progressed without
// starting the interactive flow.
func (sc *ServerContext) GoogleAuthState() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	switch {
	case sc.googleOpts != nil, sc.gmailClient != nil, sc.calendarClient != nil,
		sc.docsClient != nil, sc.driveClient != nil:
		return GoogleAuthorized
	case sc.auth == nil:
		return GoogleNoCredentials
	case sc.auth.Store != nil && sc.auth.Store.Exists():
		return GoogleTokenCached
	default:
		return GoogleNotAuthorized
	}
}

// SetGmailClient replaces the Gmail client.
func (sc *ServerContext) SetGmailClient(c *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClient = c
}

// SetCalendarClient replaces the Calendar client.
func (sc *ServerContext) SetCalendarClient(c *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClient = c
}

// SetDocsClient replaces the Docs client.
func (sc *ServerContext) SetDocsClient(c *docs.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.docsClient = c
}

// SetDriveClient replaces the Drive client.
func (sc *ServerContext) SetDriveClient(c *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClient = c
}

// SetMapsService replaces the Maps service.
func (sc *ServerContext) SetMapsService(s *maps.Service) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mapsService = s
}

// SetWeatherClient replaces the weather client.
func (sc *ServerContext) SetWeatherClient(c *weather.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.weatherClient = c
}

// SetSearcher replaces the web search provider.
func (sc *ServerContext) SetSearcher(s websearch.Searcher) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.searcher = s
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context. Further Google client creation fails.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
