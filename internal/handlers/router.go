package handlers

import (
	"net/http"
	"time"

	"thisisjapan-backend/internal/metrics"
	"thisisjapan-backend/internal/middleware"
	"thisisjapan-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps holds everything the router serves
type Deps struct {
	Users       *services.UserService
	Photos      *services.PhotoService
	Words       *services.WordService
	Experiences *services.ExperienceService
	Likes       *services.LikeService
	Hub         *services.WSHub
	Store       Pinger

	Auth *middleware.Auth
	// LikeLimiter may be nil to disable like rate limiting.
	LikeLimiter *middleware.RateLimiter

	Cookie         CookieConfig
	AllowedOrigin  string
	RequestTimeout time.Duration
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// NewRouter builds the HTTP routes
func NewRouter(deps Deps) http.Handler {
	userHandler := NewUserHandler(deps.Users, deps.Cookie)
	photoHandler := NewPhotoHandler(deps.Photos, deps.Likes)
	wordHandler := NewWordHandler(deps.Words, deps.Likes)
	experienceHandler := NewExperienceHandler(deps.Experiences)
	wsHandler := NewWebSocketHandler(deps.Hub, deps.AllowedOrigin)

	likeLimit := func(next http.Handler) http.Handler { return next }
	if deps.LikeLimiter != nil {
		likeLimit = deps.LikeLimiter.Handler
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if deps.AccessLog {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(corsMiddleware(deps.AllowedOrigin))

	r.Method(http.MethodGet, "/healthz", NewHealthHandler(deps.Store))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// long-lived, so no request timeout
	r.With(deps.Auth.OptionalAuth).Get("/ws", wsHandler.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		if deps.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(deps.RequestTimeout))
		}

		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)
		r.With(deps.Auth.RequireAuth).Get("/user", userHandler.CurrentUser)

		r.Route("/photos", func(r chi.Router) {
			r.Get("/", photoHandler.List)
			r.Get("/top", photoHandler.Top)
			r.Get("/{id}", photoHandler.Get)
			r.With(deps.Auth.RequireAuth).Post("/", photoHandler.Create)
			r.With(deps.Auth.RequireAuth, likeLimit).Post("/{id}/like", photoHandler.Like)
		})

		r.Route("/words", func(r chi.Router) {
			r.Get("/", wordHandler.List)
			r.Get("/top", wordHandler.Top)
			r.Get("/{id}", wordHandler.Get)
			r.With(deps.Auth.RequireAuth).Post("/", wordHandler.Create)
			r.With(deps.Auth.RequireAuth, likeLimit).Post("/{id}/like", wordHandler.Like)
		})

		r.Route("/experiences", func(r chi.Router) {
			r.Get("/", experienceHandler.List)
			r.Get("/{id}", experienceHandler.Get)
		})
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if allowedOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
