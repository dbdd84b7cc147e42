package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recetapp/recetapp/internal/metrics"
	"github.com/recetapp/recetapp/internal/middleware"
	"github.com/recetapp/recetapp/internal/service"
)

// RouterConfig holds everything the HTTP surface is built from.
type RouterConfig struct {
	Logger        *slog.Logger
	IsDevelopment bool

	Users   *service.UserService
	Recipes *service.RecipeService
	Images  ImageOpener
	Tokens  middleware.TokenValidator

	DB    HealthChecker
	Cache HealthChecker

	Metrics        metrics.Recorder
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	MaxBodySize        int64
	MaxUploadBodySize  int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	h := New()
	healthHandler := NewHealthHandler(cfg.DB, cfg.Cache)
	authHandler := NewAuthHandler(cfg.Users, logger, cfg.IsDevelopment)
	userHandler := NewUserHandler(cfg.Users, logger, cfg.IsDevelopment)
	recipeHandler := NewRecipeHandler(cfg.Recipes, logger, cfg.IsDevelopment)
	uploadHandler := NewUploadHandler(cfg.Images, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Get("/uploads/{file}", uploadHandler.Serve)

	jsonBody := middleware.MaxBodySize(cfg.MaxBodySize)
	uploadBody := middleware.MaxBodySize(cfg.MaxUploadBodySize)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(jsonBody)
			r.Post("/register", authHandler.Register)
			r.Post("/registro", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.With(jsonBody).Delete("/users/remove-email", userHandler.RemoveEmail)

		r.Route("/recipes", func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{
				Logger: logger,
				Tokens: cfg.Tokens,
			}))

			r.Get("/", recipeHandler.List)
			r.Get("/{id}", recipeHandler.Get)
			r.With(uploadBody).Post("/", recipeHandler.Create)
			r.With(uploadBody).Put("/{id}", recipeHandler.Update)
			r.Delete("/{id}", recipeHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
