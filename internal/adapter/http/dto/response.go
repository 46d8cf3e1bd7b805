package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goreporte/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// InvoiceResponse is one invoice of the raw report.
type InvoiceResponse struct {
	ID               string      `json:"id"`
	MontoTotal       json.Number `json:"montoTotal"`
	FechaTransaccion string      `json:"fechaTransaccion"`
}

// RawReportResponse is the payload of the query boundary endpoint.
type RawReportResponse struct {
	Username            string            `json:"username"`
	Directorio          string            `json:"directorio"`
	NumeroFacturas      int               `json:"numero_facturas"`
	MontoTotalCalculado json.Number       `json:"monto_total_calculado"`
	Facturas            []InvoiceResponse `json:"facturas"`
}

// RawReportFromDomain converts a raw payload to response. Amounts are
// emitted as JSON numbers.
func RawReportFromDomain(p *domain.RawReportPayload) *RawReportResponse {
	facturas := make([]InvoiceResponse, len(p.Invoices))
	sum := decimal.Zero
	for i, inv := range p.Invoices {
		facturas[i] = InvoiceResponse{
			ID:               inv.ID.String(),
			MontoTotal:       json.Number(inv.Amount.String()),
			FechaTransaccion: inv.Date,
		}
		sum = sum.Add(inv.Amount)
	}

	total := sum
	if p.SourceTotal != nil {
		total = *p.SourceTotal
	}

	return &RawReportResponse{
		Username:            p.Username,
		Directorio:          p.Directorio,
		NumeroFacturas:      p.InvoiceCount,
		MontoTotalCalculado: json.Number(total.String()),
		Facturas:            facturas,
	}
}

// SummaryLineResponse is one label/value line of the summary block.
type SummaryLineResponse struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// RowResponse is one formatted invoice row.
type RowResponse struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

// ReportResponse is the reconciled report view.
type ReportResponse struct {
	Username       string                `json:"username"`
	Directorio     string                `json:"directorio"`
	InvoiceCount   int                   `json:"invoice_count"`
	Total          string                `json:"total"`
	Advance        string                `json:"advance"`
	Difference     string                `json:"difference"`
	Classification string                `json:"classification"`
	Summary        []SummaryLineResponse `json:"summary"`
	Columns        []string              `json:"columns"`
	Rows           []RowResponse         `json:"rows"`
	EmptyMessage   string                `json:"empty_message,omitempty"`
	Warnings       []string              `json:"warnings,omitempty"`
}

// ReportFromDomain converts a reconciled report to response.
func ReportFromDomain(r *domain.Report, currency string) *ReportResponse {
	summary := r.Summary(currency)
	lines := make([]SummaryLineResponse, len(summary))
	for i, l := range summary {
		lines[i] = SummaryLineResponse{Label: l.Label, Value: l.Value}
	}

	rows := r.Rows()
	out := make([]RowResponse, len(rows))
	for i, row := range rows {
		out[i] = RowResponse{ID: row.ID, Amount: row.Amount, Date: row.Date}
	}

	resp := &ReportResponse{
		Username:       r.User(),
		Directorio:     r.Period(),
		InvoiceCount:   r.InvoiceCount(),
		Total:          domain.FormatMoney(r.Total()),
		Advance:        domain.FormatMoney(r.Advance()),
		Difference:     domain.FormatMoney(r.Difference()),
		Classification: r.Classification().String(),
		Summary:        lines,
		Columns:        []string{domain.TableColumns[0], domain.AmountColumn(currency), domain.TableColumns[2]},
		Rows:           out,
	}

	if len(rows) == 0 {
		resp.EmptyMessage = domain.EmptyStateMessage
	}
	if r.TotalMismatch() {
		resp.Warnings = append(resp.Warnings, "source total differs from recomputed total")
	}
	if r.SourceCountMismatch() {
		resp.Warnings = append(resp.Warnings, "source invoice count differs from invoices received")
	}

	return resp
}

// LoginResponse represents a login response.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginFromDomain converts an issued token to response.
func LoginFromDomain(t *domain.Token) *LoginResponse {
	return &LoginResponse{
		Token:     t.Value,
		Username:  t.Username,
		ExpiresAt: t.ExpiresAt,
	}
}
