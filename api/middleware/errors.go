package middleware

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/igorsal/gh-telegram/internal/interfaces"
	"github.com/igorsal/gh-telegram/internal/middleware"
	pkgerrors "github.com/igorsal/gh-telegram/pkg/errors"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

type ErrorDetail struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// WriteError writes err as a JSON error response. AppErrors keep their
// status and details; anything else becomes a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger interfaces.Logger, err error) {
	statusCode := http.StatusInternalServerError
	detail := ErrorDetail{
		Type:    string(pkgerrors.ErrorTypeInternal),
		Message: "Internal server error",
	}

	if appErr, ok := pkgerrors.AsAppError(err); ok {
		statusCode = appErr.StatusCode
		detail = ErrorDetail{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Context: appErr.Context,
		}
	}

	errorResp := ErrorResponse{
		Error:     detail,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		errorResp.TraceID = sc.TraceID().String()
	}

	fields := []interface{}{
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"status_code", statusCode,
		"error_type", detail.Type,
		"request_id", errorResp.RequestID,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("Request error", err, fields...)
	} else {
		logger.Warn("Request rejected", append(fields, "error", err.Error())...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		logger.Error("Failed to encode error response", err)
	}
}

// PanicRecoveryMiddleware recovers from panics and answers 500
func PanicRecoveryMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovery := recover(); recovery != nil {
					if recovery == http.ErrAbortHandler {
						panic(recovery)
					}
					logger.Error("Panic recovered",
						pkgerrors.NewInternalError("panic recovered"),
						"method", r.Method,
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
						"panic", recovery,
					)

					WriteError(w, r, logger, pkgerrors.NewInternalError("Internal server error"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
