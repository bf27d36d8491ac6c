// Package main provides the entrypoint for the TripDesk worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/database"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/reservation"
	"github.com/tripdesk/tripdesk/internal/trip"
	"github.com/tripdesk/tripdesk/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripdesk-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripDesk worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	tripService := trip.NewService(trip.NewPostgresRepository(pool))
	contentService := content.NewService(content.NewPostgresRepository(pool))
	reservationService := reservation.NewService(reservation.ServiceConfig{
		Repository: reservation.NewPostgresRepository(pool),
		Logger:     log,
	})

	var storage media.Storage
	if bucket := os.Getenv("MEDIA_BUCKET"); bucket != "" {
		s3Storage, err := media.NewS3Storage(ctx, bucket, os.Getenv("MEDIA_REGION"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create S3 storage")
		}
		storage = s3Storage
	} else {
		storage = media.NewInMemoryStorage()
		log.Warn().Msg("MEDIA_BUCKET not set - cleanup runs against empty storage")
	}
	mediaService := media.NewService(storage, log)

	cleanupJob := worker.NewCleanupJob(worker.CleanupJobConfig{
		Config:       worker.DefaultCleanupConfig(),
		Logger:       log,
		TripService:  tripService,
		PageService:  contentService,
		MediaService: mediaService,
	})
	occupancyJob := worker.NewOccupancyJob(tripService, reservationService, log)

	// Health endpoint for the container platform.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Pub/Sub when configured, timer loop otherwise.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	go func() {
		if projectID != "" && subscription != "" {
			handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
				ProjectID:        projectID,
				SubscriptionName: subscription,
				CleanupJob:       cleanupJob,
				OccupancyJob:     occupancyJob,
				Logger:           log,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create pubsub handler")
			}
			defer handler.Close()

			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("pubsub handler stopped")
			}
			return
		}

		log.Info().Msg("PUBSUB_PROJECT_ID not set - running timer loop")
		loop := worker.NewLoop(worker.DefaultLoopConfig(), cleanupJob, occupancyJob, log)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("worker loop stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
