package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/logger"
	"github.com/marmos91/cryptoolstore/internal/telemetry"
	storeadapter "github.com/marmos91/cryptoolstore/pkg/adapter/store"
	"github.com/marmos91/cryptoolstore/pkg/api"
	"github.com/marmos91/cryptoolstore/pkg/api/handlers"
	"github.com/marmos91/cryptoolstore/pkg/auth"
	"github.com/marmos91/cryptoolstore/pkg/auth/lockout"
	"github.com/marmos91/cryptoolstore/pkg/blobstore"
	"github.com/marmos91/cryptoolstore/pkg/config"
	"github.com/marmos91/cryptoolstore/pkg/metrics"
	"github.com/marmos91/cryptoolstore/pkg/tlsutil"

	// Links the Prometheus implementations into pkg/metrics.
	_ "github.com/marmos91/cryptoolstore/pkg/metrics/prometheus"
)

var pidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the store server",
	Long: `Start the CrypToolStore server in the foreground.

The server listens for TLS connections on server.port (default 15151) and,
unless disabled, serves health and metrics endpoints on api.port.

Examples:
  # Start with the default configuration
  storesrv start

  # Start with a custom config file
  storesrv start --config /etc/cryptoolstore/config.yaml

  # Override settings from the environment
  CRYPTOOLSTORE_LOGGING_LEVEL=DEBUG storesrv start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "cryptoolstore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
		Attributes:     cfg.Telemetry.Attributes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "cryptoolstore",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
		Tags:           cfg.Telemetry.Attributes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("CrypToolStore server starting", "version", Version, "commit", Commit)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	// The registry must exist before any metrics constructor runs.
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics collection enabled")
	}
	storeMetrics := metrics.NewStoreMetrics()

	st, adminPassword, err := config.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	logger.Info("Database opened", "type", cfg.Database.Type)
	if adminPassword != "" {
		logger.Info("Admin developer created", logger.KeyUsername, cfg.Admin.Username)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n*** Admin developer %q created with password: %s ***\n", cfg.Admin.Username, adminPassword)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Save this password. It will not be shown again.")
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	blobs, err := config.CreateBlobStore(ctx, cfg.Blobs)
	if err != nil {
		return err
	}
	blobs = blobstore.Instrument(blobs, string(cfg.Blobs.Type), metrics.NewBlobMetrics())
	defer func() { _ = blobs.Close() }()
	logger.Info("Blob store ready", "type", cfg.Blobs.Type)

	reloader, err := tlsutil.NewReloader(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w\n\nCreate a self-signed certificate with:\n  storesrv cert generate", err)
	}
	deps := storeadapter.Deps{
		Store:   st,
		Blobs:   blobs,
		Auth:    auth.NewAuthenticator(st, lockout.New(cfg.Lockout)),
		TLS:     tlsutil.ServerConfig(reloader),
		Metrics: storeMetrics,
	}
	if cfg.TLS.IsReloadEnabled() {
		deps.Reloader = reloader
	}

	server, err := storeadapter.New(cfg.Server, deps)
	if err != nil {
		return err
	}

	var apiServer *api.Server
	if cfg.API.IsEnabled() {
		routerDeps := api.RouterDeps{
			Checks: []handlers.Check{
				{Name: "database", Ping: st.Healthcheck},
				{Name: "blobs", Ping: blobs.HealthCheck},
				handlers.ListenerCheck(server.Running),
			},
		}
		if metrics.IsEnabled() {
			routerDeps.Metrics = metrics.Handler()
		}
		apiServer = api.NewServer(cfg.API, routerDeps)
	} else {
		logger.Info("Status API disabled")
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Serve(ctx) }()

	apiDone := make(chan error, 1)
	if apiServer != nil {
		go func() { apiDone <- apiServer.Start(ctx) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown", "signal", sig.String())
	case runErr = <-serverDone:
		if runErr != nil {
			logger.Error("Store server failed", logger.Err(runErr))
		}
		serverDone = nil
	case err := <-apiDone:
		if err != nil {
			logger.Error("Status API failed", logger.Err(err))
			runErr = fmt.Errorf("status API: %w", err)
		}
	}

	return shutdown(cfg.ShutdownTimeout, cancel, server, apiServer, serverDone, runErr)
}

// shutdown cancels the serving context and waits for the store server to
// drain, bounded by timeout. Sessions still running when it expires are
// left to end on their own.
func shutdown(timeout time.Duration, cancel context.CancelFunc, server *storeadapter.Adapter, apiServer *api.Server, serverDone <-chan error, runErr error) error {
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), timeout)
	defer done()

	if serverDone != nil {
		select {
		case err := <-serverDone:
			runErr = errors.Join(runErr, err)
		case <-shutdownCtx.Done():
			logger.Warn("Store server did not stop in time", "timeout", timeout)
		}
	}
	// Stop joins the background workers even when Serve never ran.
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		runErr = errors.Join(runErr, err)
	}
	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Warn("Status API shutdown error", logger.Err(err))
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}
