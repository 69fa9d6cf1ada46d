package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sehatnabha/telecare/internal/api/router"
	"github.com/sehatnabha/telecare/internal/appointments"
	appconfig "github.com/sehatnabha/telecare/internal/config"
	"github.com/sehatnabha/telecare/internal/messaging"
	"github.com/sehatnabha/telecare/internal/observability/metrics"
	"github.com/sehatnabha/telecare/internal/ops"
	"github.com/sehatnabha/telecare/internal/prescriptions"
	"github.com/sehatnabha/telecare/internal/reports"
	"github.com/sehatnabha/telecare/internal/sos"
	"github.com/sehatnabha/telecare/internal/triage"
	"github.com/sehatnabha/telecare/internal/users"
	"github.com/sehatnabha/telecare/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telecare API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// database/sql handle over the same pool config, for the repos and
	// dashboards that speak the standard interface.
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	smsMetrics := metrics.NewMessagingMetrics(registry)
	triageMetrics := metrics.NewTriageMetrics(registry)

	// Repositories
	userRepo := users.NewPostgresRepository(pool)
	apptRepo := appointments.NewPostgresRepository(pool)
	rxRepo := prescriptions.NewSQLRepository(sqlDB)
	reportRepo := reports.NewPostgresRepository(pool)
	sosRepo := sos.NewSQLRepository(sqlDB)

	// SMS transcripts (optional)
	var transcripts *messaging.TranscriptStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		transcripts = messaging.NewTranscriptStore(redis.NewClient(opts))
		logger.Info("sms transcript store enabled", "addr", cfg.RedisAddr)
	}

	// Report object storage
	var s3Client reports.S3API
	if cfg.ReportsBucket != "" {
		loadOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.AWSRegion),
		}
		if cfg.AWSAccessKeyID != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = &cfg.AWSEndpointOverride
				o.UsePathStyle = true
			}
		})
	}
	reportStore := reports.NewObjectStore(s3Client, cfg.ReportsBucket, logger)

	// Outbound SMS
	messenger, provider := messaging.BuildMessenger(messaging.MessengerConfig{
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioFromNumber,
		SendTimeout:      cfg.SMSSendTimeout,
	}, logger)
	logger.Info("sms provider selected", "provider", provider)

	// Domain services and handlers
	provisioner := users.NewSMSProvisioningPolicy(userRepo, logger)
	workflow := messaging.NewBookingWorkflow(userRepo, provisioner, apptRepo, messenger, smsMetrics, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		TriageHandler:       triage.NewHandler(triage.NewEngine(logger), triageMetrics, logger),
		MessagingHandler:    messaging.NewHandler(cfg.TwilioWebhookSecret, workflow, messenger, transcripts, smsMetrics, logger),
		UsersHandler:        users.NewHandler(userRepo, logger),
		AppointmentsHandler: appointments.NewHandler(appointments.NewService(apptRepo, userRepo, logger), logger),
		RxHandler:           prescriptions.NewHandler(rxRepo, apptRepo, userRepo, logger),
		ReportsHandler:      reports.NewHandler(reportRepo, reportStore, userRepo, cfg.ReportMaxBytes, logger),
		SOSHandler:          sos.NewHandler(sosRepo, logger),
		OpsHandler:          ops.NewHandler(sqlDB, registry, logger),
		UsersRepo:           userRepo,
		JWTSecret:           cfg.JWTSecret,
		AdminAuthSecret:     cfg.AdminAuthToken,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSecond:  cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
