package server

import (
	"context"
	"errors"
	"net/http"

	"storyscope/internal/story"
)

// ErrBadRequest matches every error caused by an invalid inbound request.
var ErrBadRequest = errors.New("bad request")

var (
	errNotFound    = errors.New("resource not found")
	errRateLimited = errors.New("too many requests")
)

// RequestError is a client error whose message is safe to return as is.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Is(target error) bool { return target == ErrBadRequest }

func badRequest(message string) error {
	return &RequestError{Message: message}
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	TraceID    string `json:"traceId"`
}

// errorStatus maps err to a status code and the message shown to clients.
// Development mode exposes the underlying error text for server faults.
func (s *Server) errorStatus(err error) (int, string) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Message
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Upstream story API timed out"
	case errors.Is(err, story.ErrUpstream):
		if s.config.ProductionMode {
			return http.StatusBadGateway, "Upstream story API unavailable"
		}
		return http.StatusBadGateway, err.Error()
	default:
		if s.config.ProductionMode {
			return http.StatusInternalServerError, "An unexpected error occurred"
		}
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := s.errorStatus(err)
	traceID := getRequestID(r.Context())

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"status", status,
			"error", err,
			"request_id", traceID,
		)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected",
			"status", status,
			"error", err,
			"request_id", traceID,
		)
	}

	RespondWithJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    message,
		TraceID:    traceID,
	})
}
