package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/goreporte/internal/adapter/http/dto"
	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	FetchRaw(ctx context.Context, input usecase.QueryInput) (*domain.RawReportPayload, error)
	Generate(ctx context.Context, input usecase.GenerateInput) (*domain.Report, error)
	Export(ctx context.Context, input usecase.GenerateInput) (*usecase.Export, error)
}

// ReportHandler handles report HTTP requests.
type ReportHandler struct {
	reports  ReportService
	currency string
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports ReportService, currency string) *ReportHandler {
	if currency == "" {
		currency = domain.DefaultCurrencySymbol
	}
	return &ReportHandler{reports: reports, currency: currency}
}

// Raw serves the query boundary: the unreconciled invoices of a user and
// period. Failures are plain text.
func (h *ReportHandler) Raw(w http.ResponseWriter, r *http.Request) {
	q := dto.ReportQueryFromValues(r.URL.Query())

	payload, err := h.reports.FetchRaw(r.Context(), q.ToQueryInput())
	if err != nil {
		status := mapDomainError(err)
		writeText(w, status, errorMessage(r, status, err))
		return
	}

	writeJSON(w, http.StatusOK, dto.RawReportFromDomain(payload))
}

// Get returns the reconciled report view.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := dto.ReportQueryFromValues(r.URL.Query())

	report, err := h.reports.Generate(r.Context(), q.ToGenerateInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to generate report", errorMessage(r, status, err))
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromDomain(report, h.currency))
}

// Export streams the reconciled report as a downloadable document.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := dto.ReportQueryFromValues(r.URL.Query())

	export, err := h.reports.Export(r.Context(), q.ToGenerateInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to export report", errorMessage(r, status, err))
		return
	}
	if export == nil {
		writeError(w, http.StatusNotFound, "failed to export report", domain.DisplayMessage(domain.ErrReportNotFound))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
