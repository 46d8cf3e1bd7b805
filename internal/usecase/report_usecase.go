package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goreporte/internal/domain"
)

// ReportUseCase fetches invoices through the query boundary, reconciles them
// and exports the result.
type ReportUseCase struct {
	source   ReportSource
	cache    Cache
	renderer DocumentRenderer
	metrics  MetricsRecorder
	logger   zerolog.Logger
	timeout  time.Duration
	cacheTTL time.Duration
}

// ReportUseCaseConfig holds the tunables of ReportUseCase.
type ReportUseCaseConfig struct {
	QueryTimeout time.Duration
	CacheTTL     time.Duration
	Logger       zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. cache and metrics may be nil.
func NewReportUseCase(
	source ReportSource,
	cache Cache,
	renderer DocumentRenderer,
	metrics MetricsRecorder,
	cfg ReportUseCaseConfig,
) *ReportUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &ReportUseCase{
		source:   source,
		cache:    cache,
		renderer: renderer,
		metrics:  metrics,
		logger:   cfg.Logger,
		timeout:  cfg.QueryTimeout,
		cacheTTL: cfg.CacheTTL,
	}
}

// QueryInput identifies the report to fetch.
type QueryInput struct {
	Username   string
	Directorio string
}

// GenerateInput represents input for generating a reconciled report.
type GenerateInput struct {
	Username   string
	Directorio string
	// Advance is the raw advance text; blank or invalid means zero.
	Advance string
}

// Export is a rendered document ready for download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FetchRaw returns the raw payload for a user and period.
func (uc *ReportUseCase) FetchRaw(ctx context.Context, input QueryInput) (*domain.RawReportPayload, error) {
	if err := domain.ValidateQuery(input.Username, input.Directorio); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	directorio := strings.TrimSpace(input.Directorio)
	key := cacheKey(username, directorio)

	if payload, ok := uc.readCache(ctx, key); ok {
		return payload, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := time.Now()
	payload, err := uc.source.FetchReport(queryCtx, username, directorio)
	uc.metrics.ObserveQuery(time.Since(start), err)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(queryCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", domain.ErrQueryTimeout, uc.timeout)
		}
		return nil, err
	}

	if payload == nil {
		return nil, domain.ErrReportNotFound
	}

	if err := domain.ValidateInvoices(payload.Invoices); err != nil {
		uc.logger.Warn().Err(err).
			Str("username", username).
			Str("directorio", directorio).
			Msg("query boundary returned an invalid payload")
		return nil, &domain.QueryError{StatusCode: http.StatusBadGateway, Message: domain.DisplayMessage(err)}
	}

	uc.writeCache(ctx, key, payload)

	return payload, nil
}

// Generate fetches and reconciles a report. On error the report is nil.
func (uc *ReportUseCase) Generate(ctx context.Context, input GenerateInput) (*domain.Report, error) {
	payload, err := uc.FetchRaw(ctx, QueryInput{
		Username:   input.Username,
		Directorio: input.Directorio,
	})
	if err != nil {
		return nil, err
	}

	report := domain.ReconcilePayload(payload, domain.ParseAdvance(input.Advance))

	if report.TotalMismatch() {
		sourceTotal, _ := report.SourceTotal()
		uc.logger.Warn().
			Str("username", report.User()).
			Str("directorio", report.Period()).
			Str("source_total", sourceTotal.String()).
			Str("computed_total", report.Total().String()).
			Msg("source total differs from recomputed total")
	}

	if report.SourceCountMismatch() {
		uc.logger.Warn().
			Str("username", report.User()).
			Str("directorio", report.Period()).
			Int("source_count", payload.InvoiceCount).
			Int("received", report.InvoiceCount()).
			Msg("source invoice count differs from invoices received")
	}

	uc.metrics.RecordReport(report)

	return report, nil
}

// Export generates a report and renders it as a document.
func (uc *ReportUseCase) Export(ctx context.Context, input GenerateInput) (*Export, error) {
	report, err := uc.Generate(ctx, input)
	if err != nil {
		return nil, err
	}

	return uc.ExportReport(report)
}

// ExportReport renders an already reconciled report. A nil report exports
// nothing and returns (nil, nil).
func (uc *ReportUseCase) ExportReport(report *domain.Report) (*Export, error) {
	if report == nil {
		return nil, nil
	}

	data, err := uc.renderer.Render(report)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	uc.metrics.RecordExport(len(data))

	return &Export{
		Filename:    uc.renderer.Filename(report.Period()),
		ContentType: uc.renderer.ContentType(),
		Data:        data,
	}, nil
}

// Invalidate drops the cached payload of a user and period so the next fetch
// reads the source again.
func (uc *ReportUseCase) Invalidate(ctx context.Context, input QueryInput) error {
	if uc.cache == nil {
		return nil
	}
	key := cacheKey(strings.TrimSpace(input.Username), strings.TrimSpace(input.Directorio))
	if err := uc.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

func (uc *ReportUseCase) readCache(ctx context.Context, key string) (*domain.RawReportPayload, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		}
		uc.metrics.RecordCache(false)
		return nil, false
	}

	var payload domain.RawReportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		_ = uc.cache.Delete(ctx, key)
		uc.metrics.RecordCache(false)
		return nil, false
	}

	uc.metrics.RecordCache(true)
	return &payload, true
}

func (uc *ReportUseCase) writeCache(ctx context.Context, key string, payload *domain.RawReportPayload) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("failed to encode payload for cache")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}

func cacheKey(username, directorio string) string {
	return reportCachePrefix + url.PathEscape(username) + ":" + url.PathEscape(directorio)
}
