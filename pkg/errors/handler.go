package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every API error. The single "error" field is
// the contract the dashboard reads; type and request id are only filled in
// debug mode.
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler maps errors to HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool

	// NotFoundMessage replaces the error text of a 404, e.g. "Case not found"
	NotFoundMessage string

	// ServerErrorStatus, when set, replaces every status at or above 500
	ServerErrorStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:          logger,
		debug:           debug,
		NotFoundMessage: "Not found",
	}
}

// WithNotFoundMessage returns a copy of h that reports 404s with message
func (h *ErrorHandler) WithNotFoundMessage(message string) *ErrorHandler {
	clone := *h
	clone.NotFoundMessage = message
	return &clone
}

// WithServerErrorStatus returns a copy of h that reports every server-side
// failure (unavailable, timeout, database) with status
func (h *ErrorHandler) WithServerErrorStatus(status int) *ErrorHandler {
	clone := *h
	clone.ServerErrorStatus = status
	return &clone
}

// Handle writes the response for err. Validation messages are shown to the
// caller; anything at or above 500 is reported as "Internal server error"
// and never leaks its cause.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	if err == nil {
		return
	}

	requestID := r.Header.Get("X-Request-ID")
	status := http.StatusInternalServerError
	response := ErrorResponse{
		Error:     "Internal server error",
		Type:      string(ErrorTypeInternal),
		RequestID: requestID,
	}

	if appErr := GetAppError(err); appErr != nil {
		if appErr.HTTPStatus != 0 {
			status = appErr.HTTPStatus
		}
		response.Type = string(appErr.Type)
		switch {
		case appErr.Type == ErrorTypeNotFound:
			response.Error = h.NotFoundMessage
		case status < http.StatusInternalServerError:
			response.Error = appErr.Message
		}
	}

	if status >= http.StatusInternalServerError && h.ServerErrorStatus != 0 {
		status = h.ServerErrorStatus
	}
	if !h.debug {
		response.Type = ""
		response.RequestID = ""
	}

	fields = append(fields,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID),
	)
	switch {
	case status >= 500:
		h.logger.Error("Request failed", fields...)
	case status == http.StatusNotFound:
		h.logger.Debug("Resource not found", fields...)
	default:
		h.logger.Warn("Request rejected", fields...)
	}

	h.sendJSON(w, status, response)
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware recovers panics into a 500 response
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
