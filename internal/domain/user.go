package domain

import (
	"time"
)

// User is an operator allowed to request settlement reports.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Credentials are the login inputs.
type Credentials struct {
	Username string
	Password string
}

// Token is an issued access token.
type Token struct {
	Value     string
	ID        string
	Username  string
	ExpiresAt time.Time
}
