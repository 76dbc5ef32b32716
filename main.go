package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/config"
	"github.com/harekrishna1602/anvesha-2.0/logging"
	"github.com/harekrishna1602/anvesha-2.0/middleware"
	"github.com/harekrishna1602/anvesha-2.0/services"
	"github.com/harekrishna1602/anvesha-2.0/session"
	"github.com/harekrishna1602/anvesha-2.0/socket"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("Starting shop floor API server", "env", cfg.GoEnv, "port", cfg.Port)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migration completed successfully")

	storage, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	events, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	hub := socket.NewHub()
	tracker := session.NewTracker()
	app := newApp(db, logger, storage, events, hub, tracker)
	app.Auth = middleware.Authenticate(cfg)
	app.MetricsEnabled = cfg.MetricsEnabled
	app.CORSOrigins = cfg.CORSAllowedOrigins

	poller := services.NewSummaryPoller(app.Summaries, tracker, hub, cfg.SummaryPollInterval)
	go poller.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server is running", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newObjectStorage uses S3 when a bucket is configured and keeps exports in
// memory otherwise
func newObjectStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.ObjectStorage, error) {
	if cfg.AWSS3Bucket == "" {
		logger.Warn("AWS_S3_BUCKET not set, exports are kept in memory")
		return services.NewMemoryStorage(), nil
	}
	return services.NewS3Storage(ctx, services.S3Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.AWSS3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
}

func newEventPublisher(cfg *config.Config, logger *slog.Logger) (services.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, order events are not published")
		return services.NopPublisher{}, nil
	}
	return services.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
