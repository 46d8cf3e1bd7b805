package main

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/infrastructure/config"
	"github.com/iho/goreporte/internal/usecase"
)

func TestListenAddr(t *testing.T) {
	if got := listenAddr("8080"); got != ":8080" {
		t.Fatalf("expected :8080, got %s", got)
	}
}

func TestNewRateLimiter(t *testing.T) {
	if rl := newRateLimiter(&config.Config{RateLimitRPS: 0}); rl != nil {
		t.Fatalf("expected rate limiting to be disabled")
	}
	if rl := newRateLimiter(&config.Config{RateLimitRPS: 5, RateLimitBurst: 0}); rl == nil {
		t.Fatalf("expected a rate limiter")
	}
}

func TestNewCORSConfig(t *testing.T) {
	if c := newCORSConfig(&config.Config{}); c != nil {
		t.Fatalf("expected CORS to be disabled without origins")
	}

	c := newCORSConfig(&config.Config{CORSAllowOrigins: []string{"https://app.example"}})
	if c == nil || len(c.AllowOrigins) != 1 || c.AllowOrigins[0] != "https://app.example" {
		t.Fatalf("unexpected CORS config: %+v", c)
	}
	if len(c.ExposeHeaders) == 0 {
		t.Fatalf("expected default exposed headers to be kept")
	}
}

type memoryUsers struct {
	users map[string]*domain.User
}

func (m *memoryUsers) Create(_ context.Context, u *domain.User) error {
	if _, ok := m.users[u.Username]; ok {
		return domain.ErrUserExists
	}
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type fixedIDs struct{}

func (fixedIDs) Generate() string { return "01JBOOTSTRAP" }

func TestBootstrapUserIsIdempotent(t *testing.T) {
	repo := &memoryUsers{users: map[string]*domain.User{}}
	uc := usecase.NewAuthUseCase(repo, nil, fixedIDs{}, nil)
	cfg := &config.Config{BootstrapUsername: "admin", BootstrapPassword: "change-me-please"}

	for i := 0; i < 2; i++ {
		if err := bootstrapUser(context.Background(), uc, cfg); err != nil {
			t.Fatalf("bootstrap run %d failed: %v", i, err)
		}
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one user, got %d", len(repo.users))
	}

	if err := bootstrapUser(context.Background(), uc, &config.Config{BootstrapUsername: "x", BootstrapPassword: "short"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	if err := bootstrapUser(context.Background(), uc, &config.Config{}); err != nil {
		t.Fatalf("expected no-op without bootstrap settings, got %v", err)
	}
}
