package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/goreporte/internal/domain"
)

// MinPasswordLength is the shortest password accepted for new operators.
const MinPasswordLength = 8

// AuthUseCase issues access tokens for report operators.
type AuthUseCase struct {
	userRepo UserRepository
	issuer   TokenIssuer
	idGen    IDGenerator
	metrics  MetricsRecorder
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(userRepo UserRepository, issuer TokenIssuer, idGen IDGenerator, metrics MetricsRecorder) *AuthUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &AuthUseCase{
		userRepo: userRepo,
		issuer:   issuer,
		idGen:    idGen,
		metrics:  metrics,
	}
}

// Authenticate verifies credentials and issues a token.
func (uc *AuthUseCase) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		uc.metrics.RecordAuth(false)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		uc.metrics.RecordAuth(false)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		uc.metrics.RecordAuth(false)
		return nil, domain.ErrUserInactive
	}

	if err := verifyPassword(user.HashedPassword, creds.Password); err != nil {
		uc.metrics.RecordAuth(false)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.issuer.Issue(user, uc.idGen.Generate())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.metrics.RecordAuth(true)
	return token, nil
}

// CreateUser registers an operator with a bcrypt-hashed password.
func (uc *AuthUseCase) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}

	if existing, err := uc.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrValidation, domain.ErrUserExists, username)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Username:       username,
		HashedPassword: hashed,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.HashedPassword = ""
	return user, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
