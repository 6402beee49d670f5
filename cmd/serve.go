package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tantle27/esap-events-api/internal/config"
	"github.com/tantle27/esap-events-api/internal/event"
	"github.com/tantle27/esap-events-api/internal/instrumentation"
	"github.com/tantle27/esap-events-api/internal/logging"
	"github.com/tantle27/esap-events-api/internal/server"
)

const metricsStartupTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		httpAddr         string
		calendarID       string
		clientEmail      string
		privateKeyFile   string
		credentialsFile  string
		timeZone         string
		recurrencePolicy string
		allowedOrigins   []string
		logLevel         string
		metricsEnabled   bool
		metricsAddr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar events HTTP API server",
		Long: `Start the HTTP API server that creates Google Calendar events.

Configuration is read from ESAP_* environment variables first; flags
override the environment when set explicitly.

Credentials:
  Either a service account JSON key file:
    --credentials-file OR ESAP_CREDENTIALS_FILE
  Or the client email plus a private key:
    --client-email OR ESAP_CLIENT_EMAIL
    --private-key-file OR ESAP_PRIVATE_KEY_FILE OR ESAP_PRIVATE_KEY
  A key supplied via ESAP_PRIVATE_KEY may use "\n" escapes for newlines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("calendar-id") {
				cfg.CalendarID = calendarID
			}
			if cmd.Flags().Changed("client-email") {
				cfg.ClientEmail = clientEmail
			}
			if cmd.Flags().Changed("private-key-file") {
				cfg.PrivateKeyFile = privateKeyFile
			}
			if cmd.Flags().Changed("credentials-file") {
				cfg.CredentialsFile = credentialsFile
			}
			if cmd.Flags().Changed("timezone") {
				cfg.TimeZone = timeZone
			}
			if cmd.Flags().Changed("recurrence-policy") {
				cfg.RecurrencePolicy = recurrencePolicy
			}
			if cmd.Flags().Changed("allowed-origin") {
				cfg.AllowedOrigins = allowedOrigins
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			return runServe(cfg, logLevel)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", config.DefaultHTTPAddr,
		"Address for the HTTP API server")
	cmd.Flags().StringVar(&calendarID, "calendar-id", "",
		"Google Calendar ID to create events on")
	cmd.Flags().StringVar(&clientEmail, "client-email", "",
		"Service account client email")
	cmd.Flags().StringVar(&privateKeyFile, "private-key-file", "",
		"Path to a PEM file holding the service account private key")
	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "",
		"Path to a service account JSON key file")
	cmd.Flags().StringVar(&timeZone, "timezone", "",
		"IANA time zone recorded on normalized instants (default "+event.DefaultTimeZone+")")
	cmd.Flags().StringVar(&recurrencePolicy, "recurrence-policy", "lenient",
		"Recurrence validation policy: lenient drops malformed rules, strict rejects the request")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origin", nil,
		"Browser origin allowed by CORS (repeatable)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false,
		"Serve Prometheus metrics on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr,
		"Address for the metrics server")

	return cmd
}

func runServe(cfg *config.Config, logLevel string) error {
	logger := logging.Setup(logLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}
	// Credentials are checked lazily on first upstream use, but warn at
	// startup so misconfiguration is visible before the first request.
	if err := cfg.ValidateCredentials(); err != nil {
		logger.Warn("calendar credentials incomplete, event creation will fail", logging.Err(err))
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(cfg.MetricsAddr, provider)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case err := <-metricsErr:
			if err != nil {
				return fmt.Errorf("metrics server failed to start: %w", err)
			}
		case <-time.After(metricsStartupTimeout):
		}
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
	}

	srv := server.New(cfg,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
	)

	logger.Info("serving calendar events API",
		slog.String("addr", cfg.HTTPAddr),
		logging.CalendarID(cfg.CalendarID),
	)
	if err := srv.Start(shutdownCtx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	if metricsServer != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer stopCancel()
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("metrics server shutdown failed", logging.Err(err))
		}
	}

	logger.Info("shutdown complete")
	return nil
}
