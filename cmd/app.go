package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/google"
	"github.com/ykykj/assistant/internal/instrumentation"
	"github.com/ykykj/assistant/internal/logging"
	"github.com/ykykj/assistant/internal/server"
	"github.com/ykykj/assistant/internal/tools"
)

// appOptions are the settings shared by the commands that build the tool
// registry.
type appOptions struct {
	// Debug forces debug logging regardless of LOG_LEVEL.
	Debug bool

	// LogOutput receives log records. stdout is reserved for the MCP
	// protocol under serve, so callers pass stderr.
	LogOutput io.Writer

	// AuthOutput receives the OAuth consent instructions.
	AuthOutput io.Writer
}

// app is the assembled runtime shared by chat and serve.
type app struct {
	cfg           *config.Config
	logger        *slog.Logger
	provider      *instrumentation.Provider
	authenticator *google.Authenticator
	serverContext *server.ServerContext
	tools         *mcpserver.MCPServer
}

// newAuthenticator builds the Google authenticator from cfg. It returns
// google.ErrNoCredentials when no OAuth client is configured.
func newAuthenticator(cfg *config.Config, out io.Writer, metrics *instrumentation.Metrics, logger *slog.Logger) (*google.Authenticator, error) {
	oauthConfig, err := google.LoadOAuthConfig(
		cfg.Google.CredentialsPath,
		cfg.Google.OAuthClientID,
		cfg.Google.OAuthClientSecret,
		google.DefaultScopes,
	)
	if err != nil {
		return nil, err
	}
	return &google.Authenticator{
		Config:  oauthConfig,
		Store:   google.NewFileTokenStore(cfg.Google.TokenPath),
		Browser: google.OpenBrowser,
		Out:     out,
		Metrics: metrics,
		Logger:  logger,
	}, nil
}

// newApp wires logging, instrumentation, Google authorization and the tool
// registry. The caller must call close.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	level := cfg.Log.Level
	if opts.Debug {
		level = "debug"
	}
	logger, _ := logging.New(level, opts.LogOutput)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, provider: provider}

	authenticator, err := newAuthenticator(cfg, opts.AuthOutput, provider.Metrics(), logging.WithService(logger, "oauth"))
	switch {
	case errors.Is(err, google.ErrNoCredentials):
		logger.Warn("Google tools are disabled", logging.Err(err))
	case err != nil:
		a.close(ctx)
		return nil, err
	default:
		a.authenticator = authenticator
	}

	a.serverContext, err = server.NewServerContext(ctx, server.Options{
		Config:        cfg,
		Authenticator: a.authenticator,
		Metrics:       provider.Metrics(),
		AuditLogger:   instrumentation.NewAuditLoggerWithConfig(logger, provider.AuditConfig()),
		Logger:        logger,
	})
	if err != nil {
		a.close(ctx)
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}

	a.tools = mcpserver.NewMCPServer(config.AppName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := tools.RegisterAll(a.tools, a.serverContext); err != nil {
		a.close(ctx)
		return nil, err
	}

	return a, nil
}

// close releases the server context and flushes telemetry.
func (a *app) close(ctx context.Context) {
	if a.serverContext != nil {
		if err := a.serverContext.Shutdown(); err != nil {
			a.logger.Warn("Error during server context shutdown", logging.Err(err))
		}
	}
	if err := a.provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("Error during instrumentation shutdown", logging.Err(err))
	}
}
