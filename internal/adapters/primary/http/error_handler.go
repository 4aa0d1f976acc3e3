package http

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/user-directory/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/lorrc/user-directory/internal/infrastructure/logging"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate JSON response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, response := h.Map(err)
	h.logError(r, statusCode, err)
	WriteJSON(w, statusCode, response)
}

// Map converts an error to an HTTP status code and response body
func (h *ErrorHandler) Map(err error) (int, ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	return mapDomainError(err)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func mapDomainError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		return http.StatusBadGateway, ErrorResponse{
			Error: "Error fetching data. Please try again later.",
			Code:  "UPSTREAM_UNAVAILABLE",
		}

	case errors.Is(err, apperrors.ErrSessionRequired):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "BAD_REQUEST",
		}

	case errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Session not found",
			Code:  "SESSION_NOT_FOUND",
		}

	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error at a level derived from the response status
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	h.logger.Log(r.Context(), logging.LevelForStatus(statusCode), "request failed",
		"request_id", mw.GetRequestID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	)
}
