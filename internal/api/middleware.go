package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

type contextKey string

const userKey contextKey = "user"

// RequireAuth verifies the bearer token, loads the user it names and adds
// that user to the request context. The role always comes from the
// database, so demotions and deletions apply to tokens already issued.
func RequireAuth(verifier *auth.Verifier, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := loadIdentity(r, verifier, db)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loadIdentity(r *http.Request, verifier *auth.Verifier, db *sql.DB) (*model.User, error) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := store.GetUser(r.Context(), db, claims.UserID())
	if err != nil {
		return nil, fmt.Errorf("loading user %s: %w", claims.UserID(), err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s no longer exists", auth.ErrUnauthenticated, claims.UserID())
	}
	return user, nil
}

// RequireAdmin rejects requests whose user is not an administrator. It must
// run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			writeError(w, r, fmt.Errorf("%w: no identity on request", auth.ErrUnauthenticated))
			return
		}
		if !user.IsAdmin() {
			slog.Warn("admin access denied", "user", user.ID, "path", r.URL.Path)
			writeError(w, r, errAdminRequired())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser retrieves the authenticated user from the context.
func CurrentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
