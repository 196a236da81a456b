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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/maka4h/user-service/internal/api"
	"github.com/maka4h/user-service/internal/api/handlers"
	"github.com/maka4h/user-service/internal/config"
	"github.com/maka4h/user-service/internal/domain/users"
	"github.com/maka4h/user-service/internal/metrics"
	"github.com/maka4h/user-service/internal/notify"
	"github.com/maka4h/user-service/internal/storage/postgres"
	"github.com/maka4h/user-service/internal/telemetry"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the user service HTTP server",
	Long: `Start the user service HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Connect to PostgreSQL (required) and RabbitMQ (best-effort)
- Serve the user record API with health and metrics endpoints
- Handle graceful shutdown on SIGINT/SIGTERM

A broker that is unreachable at startup does not prevent the server from
starting: the service runs degraded and domain events are dropped until
the broker returns.

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting user service")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.Init(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	// Record store: required. The pool is shared by every request and
	// released at shutdown.
	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database.URL, cfg.Database.MaxConnections)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()

	repo, err := postgres.NewUserRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	// Event notifier: best-effort. Startup proceeds without it.
	publisher, brokerConn := connectBroker(cfg.Broker, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("publisher close error")
		}
		if brokerConn != nil {
			if err := brokerConn.Close(); err != nil {
				logger.Error().Err(err).Msg("broker connection close error")
			}
		}
	}()

	service := users.NewService(repo, publisher, cfg.API.MaxPageSize, logger)
	health := handlers.NewHealthChecker(pool, publisher, Version)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, service, health),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

// connectBroker dials RabbitMQ and returns a ready publisher, or a
// disconnected one when the broker cannot be reached. The health surface
// reports the difference; mutations work either way. The returned connection
// is nil in the disconnected case.
func connectBroker(cfg config.BrokerConfig, logger zerolog.Logger) (*notify.Publisher, *notify.Connection) {
	conn, err := notify.Dial(cfg.URL, cfg.DialAttempts, logger)
	if err != nil {
		logger.Error().Err(err).Msg("broker unreachable; starting degraded, events will be dropped")
		return notify.Disconnected(cfg.Exchange, logger), nil
	}

	publisher, err := notify.NewPublisher(conn, cfg.Exchange, logger)
	if err != nil {
		logger.Error().Err(err).Msg("publisher init failed; starting degraded, events will be dropped")
		_ = conn.Close()
		return notify.Disconnected(cfg.Exchange, logger), nil
	}
	return publisher, conn
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
