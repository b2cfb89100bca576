package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ykykj/assistant/internal/config"
	"github.com/ykykj/assistant/internal/logging"
	"github.com/ykykj/assistant/internal/resources"
	"github.com/ykykj/assistant/internal/server"
)

// metricsStartupTimeout bounds how long serve waits for the metrics listener.
const metricsStartupTimeout = 500 * time.Millisecond

func newServeCmd() *cobra.Command {
	var (
		debugMode   bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio, exposing the same tools the chat agent uses.

Logs go to stderr because stdout carries the protocol. With --metrics-addr and
INSTRUMENTATION_ENABLED=true, Prometheus metrics and health probes are served
on that address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(debugMode, metricsAddr)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics, /healthz and /readyz on this address (e.g. "+server.DefaultMetricsAddr+")")

	return cmd
}

func runServe(debugMode bool, metricsAddr string) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateTools(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	a, err := newApp(shutdownCtx, cfg, appOptions{
		Debug:      debugMode,
		LogOutput:  os.Stderr,
		AuthOutput: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer a.close(shutdownCtx)

	if err := resources.RegisterResources(a.tools, a.serverContext); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	if metricsAddr != "" {
		metricsServer, err := startMetricsServer(a, metricsAddr)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				a.logger.Warn("Error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	a.logger.Info("Starting MCP server on stdio", "version", version)
	return runStdioServer(shutdownCtx, a.tools)
}

// startMetricsServer starts the metrics endpoint in the background and fails
// fast when the address cannot be bound.
func startMetricsServer(a *app, addr string) (*server.MetricsServer, error) {
	if !a.provider.Enabled() {
		return nil, errors.New("--metrics-addr requires INSTRUMENTATION_ENABLED=true")
	}
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: a.provider,
		Health:                  server.NewHealthChecker(a.serverContext),
		Logger:                  a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(metricsStartupTimeout):
		a.logger.Info("Metrics server started", "addr", metricsServer.Addr())
	}
	return metricsServer, nil
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
	case <-ctx.Done():
	}
	return nil
}
