package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/goreporte/internal/domain"
)

// ErrCacheMiss is returned by Cache implementations when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// ReportSource is the query boundary: it returns the raw invoices of a user
// within a settlement period.
type ReportSource interface {
	FetchReport(ctx context.Context, username, directorio string) (*domain.RawReportPayload, error)
}

// DocumentRenderer turns a reconciled report into an exportable document.
// Rendering a nil report returns a nil document and no error.
type DocumentRenderer interface {
	Render(report *domain.Report) ([]byte, error)
	Filename(period string) string
	ContentType() string
}

// UserRepository defines data access for report operators.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// TokenIssuer issues signed access tokens.
type TokenIssuer interface {
	Issue(user *domain.User, tokenID string) (*domain.Token, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MetricsRecorder receives report cycle measurements.
type MetricsRecorder interface {
	ObserveQuery(duration time.Duration, err error)
	RecordCache(hit bool)
	RecordReport(report *domain.Report)
	RecordExport(size int)
	RecordAuth(success bool)
}

type nopMetrics struct{}

func (nopMetrics) ObserveQuery(time.Duration, error) {}
func (nopMetrics) RecordCache(bool)                  {}
func (nopMetrics) RecordReport(*domain.Report)       {}
func (nopMetrics) RecordExport(int)                  {}
func (nopMetrics) RecordAuth(bool)                   {}
