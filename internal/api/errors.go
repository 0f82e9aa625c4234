package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/store"
)

// Request failure kinds. Anything else is a storage or internal failure.
var (
	ErrForbidden    = errors.New("insufficient permissions")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidValue = errors.New("invalid value")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// unauthenticatedMessage is the only message a client sees for a 401.
const unauthenticatedMessage = "authentication required"

// requestError carries a client-facing message for one of the kinds above.
type requestError struct {
	kind error
	msg  string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.kind }

func missingField(msg string) error { return &requestError{kind: ErrMissingField, msg: msg} }
func invalidValue(msg string) error { return &requestError{kind: ErrInvalidValue, msg: msg} }
func notFound(msg string) error { return &requestError{kind: ErrNotFound, msg: msg} }
func forbidden(msg string) error { return &requestError{kind: ErrForbidden, msg: msg} }
func conflict(msg string) error { return &requestError{kind: ErrConflict, msg: msg} }
func errInvalidBody() error { return invalidValue("invalid request body") }
func errItemNotFound() error { return notFound("item not found") }
func errUserNotFound() error { return notFound("user not found") }
func errAdminRequired() error { return forbidden("administrator access required") }

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidValue),
		errors.Is(err, imaging.ErrUnsupportedFormat), errors.Is(err, imaging.ErrTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err into a response. Authentication failures get a
// uniform message; internal failures are logged and reported, never echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusUnauthorized:
		slog.Warn("authentication failed",
			"method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()), "reason", err)
		jsonError(w, status, unauthenticatedMessage)
	case http.StatusInternalServerError:
		slog.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		jsonError(w, status, "internal server error")
	default:
		jsonError(w, status, err.Error())
	}
}
