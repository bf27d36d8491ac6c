// Package api provides the HTTP API for the TripDesk admin backend.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/tripdesk/tripdesk/internal/api/handler"
	"github.com/tripdesk/tripdesk/internal/api/middleware"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/category"
	"github.com/tripdesk/tripdesk/internal/content"
	"github.com/tripdesk/tripdesk/internal/media"
	"github.com/tripdesk/tripdesk/internal/reservation"
	"github.com/tripdesk/tripdesk/internal/resilience"
	"github.com/tripdesk/tripdesk/internal/tag"
	"github.com/tripdesk/tripdesk/internal/travelpay"
	"github.com/tripdesk/tripdesk/internal/trip"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// CORSOrigins lists the dashboard origins allowed to call the API.
	// Empty means same-origin only.
	CORSOrigins []string

	DB        handler.Pinger
	Upstreams *resilience.Registry

	AuthService        *auth.Service
	TripService        *trip.Service
	CategoryService    *category.Service
	TagService         *tag.Service
	ContentService     *content.Service
	ReservationService *reservation.Service
	MediaService       *media.Service
	TravelPayClient    *travelpay.Client
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tripdesk-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}).Handler)
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Upstreams)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	tripHandler := handler.NewTripHandler(cfg.TripService, cfg.MediaService, cfg.Logger)
	categoryHandler := handler.NewCategoryHandler(cfg.CategoryService, cfg.Logger)
	tagHandler := handler.NewTagHandler(cfg.TagService, cfg.Logger)
	contentHandler := handler.NewContentHandler(cfg.ContentService, cfg.MediaService, cfg.Logger)
	reservationHandler := handler.NewReservationHandler(cfg.ReservationService, cfg.Logger)
	fileHandler := handler.NewFileHandler(cfg.MediaService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	requireAdmin := middleware.RequireAdmin

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Post("/logout-all", authHandler.LogoutAll)
				r.Get("/me", authHandler.Me)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		// Ops endpoints (public except status)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Everything below is the authenticated admin surface.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(userRateLimit)

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", tripHandler.List)
				r.Post("/", tripHandler.Create)
				r.Route("/{tripId}", func(r chi.Router) {
					r.Get("/", tripHandler.Get)
					r.Put("/", tripHandler.Update)
					r.With(requireAdmin).Delete("/", tripHandler.Delete)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/by-type/{tripType}", categoryHandler.ListByType)
				r.Get("/parent-options", categoryHandler.ParentOptions)
				r.Post("/", categoryHandler.Create)
				r.Route("/{categoryId}", func(r chi.Router) {
					r.Get("/", categoryHandler.Get)
					r.Put("/", categoryHandler.Update)
					r.With(requireAdmin).Delete("/", categoryHandler.Delete)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.List)
				r.Post("/", tagHandler.Create)
				r.Route("/{tagId}", func(r chi.Router) {
					r.Get("/", tagHandler.Get)
					r.Put("/", tagHandler.Update)
					r.With(requireAdmin).Delete("/", tagHandler.Delete)
				})
			})

			r.Route("/pages", func(r chi.Router) {
				r.Get("/", contentHandler.List)
				r.Post("/", contentHandler.Create)
				r.Route("/{pageId}", func(r chi.Router) {
					r.Get("/", contentHandler.Get)
					r.Put("/", contentHandler.Update)
					r.With(requireAdmin).Delete("/", contentHandler.Delete)
				})
			})

			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", reservationHandler.List)
				r.Route("/by-trip/{tripId}", func(r chi.Router) {
					r.Get("/", reservationHandler.ListByTrip)
					r.Get("/occupancy", reservationHandler.Occupancy)
				})
				r.Route("/{reservationId}", func(r chi.Router) {
					r.Get("/", reservationHandler.Get)
					r.Post("/approve", reservationHandler.Approve)
					r.Post("/cancel", reservationHandler.Cancel)
				})
			})

			r.Route("/files", func(r chi.Router) {
				r.Post("/", fileHandler.Upload)
				r.Delete("/", fileHandler.Delete)
			})

			if cfg.TravelPayClient != nil {
				travelPayHandler := handler.NewTravelPayHandler(cfg.TravelPayClient, cfg.Logger)
				r.With(expensiveRateLimit).Post("/travelpay/verify", travelPayHandler.Verify)
			}
		})

		// Stored images are public so the dashboard can embed them.
		r.With(standardRateLimit).Get("/files/*", fileHandler.Serve)
	})

	return r
}
