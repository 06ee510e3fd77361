package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"reelearn-backend/internal/models"
	"reelearn-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError maps the typed pipeline errors onto transport-level
// responses. Parse failures surface as retryable upstream problems, never as
// silently empty results.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *services.NotFoundError
	var precondition *services.PreconditionError
	var parse *services.ParseError
	var upstream *services.UpstreamError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFound.Message, r))
	case errors.As(err, &precondition):
		writeJSON(w, http.StatusPreconditionFailed, errorResp("PRECONDITION_FAILED", precondition.Message, r))
	case errors.As(err, &parse):
		writeJSON(w, http.StatusBadGateway, errorResp("PARSE_ERROR", parse.Message, r))
	case errors.As(err, &upstream):
		switch upstream.Kind {
		case services.UpstreamAuthInvalid:
			writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_AUTH", upstream.Message, r))
		case services.UpstreamRateLimited:
			writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", upstream.Message, r))
		case services.UpstreamUnavailable:
			writeJSON(w, http.StatusServiceUnavailable, errorResp("UPSTREAM_UNAVAILABLE", upstream.Message, r))
		default:
			writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", upstream.Message, r))
		}
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
