package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/goreporte/internal/adapter/http/dto"
	"github.com/iho/goreporte/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeText writes a plain-text response. The query boundary reports its
// failures this way so that clients can show the body verbatim.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var qe *domain.QueryError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQueryTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnrenderableText):
		return http.StatusUnprocessableEntity
	case errors.As(err, &qe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the message sent to clients for err. Internal failures are
// reported generically; their cause only goes to the request log.
func errorMessage(r *http.Request, status int, err error) string {
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		return domain.DefaultQueryErrorMessage
	}
	return domain.DisplayMessage(err)
}
