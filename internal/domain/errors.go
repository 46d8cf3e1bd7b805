package domain

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// Query errors
	ErrValidation     = errors.New("validation failed")
	ErrReportNotFound = errors.New("no report found for user and period")
	ErrQueryTimeout   = errors.New("report query timed out")
	ErrQueryFailed    = errors.New("report query failed")

	// Export errors
	ErrUnrenderableText = errors.New("report contains characters the document font cannot render")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

// DefaultQueryErrorMessage is shown when a query failure carries no message.
const DefaultQueryErrorMessage = "An error occurred while fetching the report."

// QueryError is a failure returned by the query boundary. Message is already
// in display form.
type QueryError struct {
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return ErrQueryFailed.Error()
	}
	return e.Message
}

// Is lets callers match QueryError values against the domain sentinels.
func (e *QueryError) Is(target error) bool {
	switch target {
	case ErrQueryFailed:
		return true
	case ErrReportNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrQueryTimeout:
		return e.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

// DisplayMessage converts any error from a submission cycle into the single
// message shown to the user.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}

	var qe *QueryError
	if errors.As(err, &qe) {
		if qe.Message == "" {
			return DefaultQueryErrorMessage
		}
		return qe.Message
	}

	msg := err.Error()
	if errors.Is(err, ErrValidation) {
		msg = strings.TrimPrefix(msg, ErrValidation.Error()+": ")
	}
	if msg != "" {
		return msg
	}
	return DefaultQueryErrorMessage
}
