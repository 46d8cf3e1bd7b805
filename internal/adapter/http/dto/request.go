package dto

import (
	"net/url"

	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/usecase"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() domain.Credentials {
	return domain.Credentials{
		Username: r.Username,
		Password: r.Password,
	}
}

// ReportQuery holds the query string of the report endpoints.
type ReportQuery struct {
	Username   string
	Directorio string
	Anticipo   string
}

// ReportQueryFromValues reads username, directorio and anticipo.
func ReportQueryFromValues(v url.Values) ReportQuery {
	return ReportQuery{
		Username:   v.Get("username"),
		Directorio: v.Get("directorio"),
		Anticipo:   v.Get("anticipo"),
	}
}

// ToQueryInput converts to use case input.
func (q ReportQuery) ToQueryInput() usecase.QueryInput {
	return usecase.QueryInput{
		Username:   q.Username,
		Directorio: q.Directorio,
	}
}

// ToGenerateInput converts to use case input.
func (q ReportQuery) ToGenerateInput() usecase.GenerateInput {
	return usecase.GenerateInput{
		Username:   q.Username,
		Directorio: q.Directorio,
		Advance:    q.Anticipo,
	}
}
