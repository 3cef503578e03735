package web

// errors.go turns workflow errors into gateway responses.
//
// Every error is logged with its technical text and the request id, then
// mapped through core.MapError so the client sees the same message and
// support code as the CLI. Pages get an HTML alert; /api routes and JSON
// clients get an ErrorResponse.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/core"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
	"github.com/JonMunkholm/pharmadb/internal/web/templates"
)

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks malformed gateway input (bad ids, undecodable bodies).
var errBadRequest = errors.New("validation failed")

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var rejected *api.ServerRejectedError
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &rejected):
		if rejected.Status >= 400 && rejected.Status < 500 {
			return rejected.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, catalog.ErrUnknownListType), errors.Is(err, catalog.ErrUnknownTableMapping), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, core.ErrEmptyRecord),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrUnsupportedDocument),
		errors.Is(err, csvfile.ErrMalformedFile),
		errors.Is(err, csvfile.ErrNotCSV),
		errors.Is(err, errBadRequest),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// respondError logs err and writes the mapped message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}
	templ.Handler(
		templates.WithLayout("Error", 0, templates.ErrorAlert(msg.Message, msg.Action, msg.Code)),
		templ.WithStatus(status),
	).ServeHTTP(w, r)
}

// wantsJSON reports whether the client expects a JSON body.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
