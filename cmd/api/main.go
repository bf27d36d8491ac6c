// Package main provides the entrypoint for the TripDesk admin API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api"
	"github.com/tripdesk/tripdesk/internal/api/middleware"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/category"
	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/database"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/reservation"
	"github.com/tripdesk/tripdesk/internal/resilience"
	"github.com/tripdesk/tripdesk/internal/tag"
	"github.com/tripdesk/tripdesk/internal/telemetry"
	"github.com/tripdesk/tripdesk/internal/travelpay"
	"github.com/tripdesk/tripdesk/internal/trip"
	"github.com/tripdesk/tripdesk/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripdesk-api"

	// A missing .env file is fine; containers configure via real env.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripDesk API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1)
	}

	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Auth
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.tripdesk.pl",
		Audience:   "tripdesk-admin",
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    auth.NewPostgresUserRepository(pool),
		RefreshRepo: auth.NewPostgresRefreshTokenRepository(pool),
	})

	// A fresh deployment needs a way in; credentials come from env.
	if admin, err := authService.EnsureAdmin(ctx, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin account")
	} else if admin != nil {
		log.Info().Str("email", admin.Email).Msg("admin account present")
	}

	// Domain services
	tripService := trip.NewService(trip.NewPostgresRepository(pool))
	categoryService := category.NewService(category.NewPostgresRepository(pool))
	tagService := tag.NewService(tag.NewPostgresRepository(pool))
	contentService := content.NewService(content.NewPostgresRepository(pool))

	// Reservation events go to the worker when Pub/Sub is configured.
	var reservationEvents reservation.Publisher
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topic := os.Getenv("PUBSUB_TOPIC")
		if topic == "" {
			topic = "tripdesk-jobs"
		}
		publisher, err := worker.NewPubSubPublisher(ctx, projectID, topic)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub publisher")
		}
		defer publisher.Close()
		reservationEvents = publisher
		log.Info().Str("topic", topic).Msg("reservation events publishing to pubsub")
	}

	reservationService := reservation.NewService(reservation.ServiceConfig{
		Repository: reservation.NewPostgresRepository(pool),
		Events:     reservationEvents,
		Logger:     log,
	})

	// Media storage: S3 when a bucket is configured, memory otherwise.
	var storage media.Storage
	if bucket := os.Getenv("MEDIA_BUCKET"); bucket != "" {
		s3Storage, err := media.NewS3Storage(ctx, bucket, os.Getenv("MEDIA_REGION"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create S3 storage")
		}
		storage = s3Storage
		log.Info().Str("bucket", bucket).Msg("media stored in S3")
	} else {
		storage = media.NewInMemoryStorage()
		log.Warn().Msg("MEDIA_BUCKET not set - uploads are held in memory")
	}
	mediaService := media.NewService(storage, log)

	// TravelPay link verification
	upstreamMetrics, err := middleware.NewUpstreamMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize upstream metrics")
		os.Exit(1)
	}

	upstreams := resilience.NewRegistry()
	travelPayClient := travelpay.NewClient(travelpay.ClientConfig{
		Registry: upstreams,
		Metrics:  upstreamMetrics,
		Logger:   log,
	})

	var corsOrigins []string
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		corsOrigins = strings.Split(raw, ",")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		CORSOrigins:        corsOrigins,
		DB:                 pool,
		Upstreams:          upstreams,
		AuthService:        authService,
		TripService:        tripService,
		CategoryService:    categoryService,
		TagService:         tagService,
		ContentService:     contentService,
		ReservationService: reservationService,
		MediaService:       mediaService,
		TravelPayClient:    travelPayClient,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
