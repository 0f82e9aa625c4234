package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/erazemk/najdeno/internal/auth"
)

// RouterConfig holds the deployment-specific router settings.
type RouterConfig struct {
	// CORSOrigins are the origins allowed to make cross-origin requests.
	// "*" allows any origin; empty sends no CORS headers.
	CORSOrigins []string
	// TrustProxy rewrites the client address from X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that sets those headers.
	TrustProxy bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, verifier *auth.Verifier, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggingMiddleware)
	r.Use(recoverPanics)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	authHandler := &AuthHandler{DB: db, Verifier: verifier}
	itemsHandler := &ItemsHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}

	authn := RequireAuth(verifier, db)

	r.Get("/health", health(db))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authn).Get("/me", authHandler.Me)
		})

		// Items: read (public), report (any user), moderate (admin).
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemsHandler.List)
			r.With(authn).Post("/", itemsHandler.Create)
			r.Get("/{id}", itemsHandler.Get)
			r.With(authn, RequireAdmin).Put("/{id}/status", itemsHandler.UpdateStatus)
			r.With(authn, RequireAdmin).Delete("/{id}", itemsHandler.Delete)
			r.With(authn).Put("/{id}/image", itemsHandler.UploadImage)
			r.Get("/{id}/image", itemsHandler.GetImage)
		})

		// Users (admin only).
		r.Route("/users", func(r chi.Router) {
			r.Use(authn, RequireAdmin)
			r.Get("/", usersHandler.List)
			r.Put("/{id}/role", usersHandler.UpdateRole)
			r.Delete("/{id}", usersHandler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// recoverPanics reports a panic to the request's Sentry hub, then answers 500.
func recoverPanics(next http.Handler) http.Handler {
	return middleware.Recoverer(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(next))
}

// health reports whether the database is reachable.
func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
