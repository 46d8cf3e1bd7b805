package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goreporte/internal/domain"
)

func aprilPayload() *domain.RawReportPayload {
	return &domain.RawReportPayload{
		Username:     "elio",
		Directorio:   "abril",
		InvoiceCount: 2,
		Invoices: []domain.Invoice{
			{ID: "1", Amount: decimal.RequireFromString("120.50"), Date: "2025-04-02"},
			{ID: "F-2", Amount: decimal.RequireFromString("79.50"), Date: "2025-04-03"},
		},
	}
}

func TestRawReportFromDomain_EmitsNumbers(t *testing.T) {
	data, err := json.Marshal(RawReportFromDomain(aprilPayload()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(data)
	for _, want := range []string{`"montoTotal":120.5`, `"montoTotal":79.5`, `"monto_total_calculado":200`, `"numero_facturas":2`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}

	var decoded domain.RawReportPayload
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("raw response must decode as a payload: %v", err)
	}
	if len(decoded.Invoices) != 2 || decoded.Invoices[0].ID != "1" {
		t.Fatalf("unexpected decoded payload: %+v", decoded)
	}
}

func TestRawReportFromDomain_PrefersSourceTotal(t *testing.T) {
	p := aprilPayload()
	total := decimal.RequireFromString("199.99")
	p.SourceTotal = &total

	resp := RawReportFromDomain(p)
	if resp.MontoTotalCalculado != "199.99" {
		t.Fatalf("expected source total, got %s", resp.MontoTotalCalculado)
	}
}

func TestReportFromDomain(t *testing.T) {
	report := domain.ReconcilePayload(aprilPayload(), decimal.RequireFromString("150"))

	resp := ReportFromDomain(report, "")
	if resp.Total != "200.00" || resp.Advance != "150.00" || resp.Difference != "-50.00" {
		t.Fatalf("unexpected money fields: %+v", resp)
	}
	if resp.Classification != "to_collect" {
		t.Fatalf("expected to_collect, got %s", resp.Classification)
	}
	if len(resp.Summary) != 6 || resp.Summary[5].Label != "Amount to Refund" || resp.Summary[5].Value != "Bs. 50.00" {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Columns[1] != "Amount (Bs.)" {
		t.Fatalf("unexpected columns: %v", resp.Columns)
	}
	if len(resp.Rows) != 2 || resp.Rows[0].Amount != "120.50" {
		t.Fatalf("unexpected rows: %+v", resp.Rows)
	}
	if resp.EmptyMessage != "" || len(resp.Warnings) != 0 {
		t.Fatalf("expected no empty message or warnings, got %+v", resp)
	}
}

func TestReportFromDomain_EmptyAndWarnings(t *testing.T) {
	total := decimal.RequireFromString("10")
	report := domain.ReconcilePayload(&domain.RawReportPayload{
		Username:     "elio",
		Directorio:   "vacio",
		InvoiceCount: 1,
		SourceTotal:  &total,
	}, decimal.Zero)

	resp := ReportFromDomain(report, "")
	if resp.EmptyMessage != domain.EmptyStateMessage {
		t.Fatalf("expected empty-state message, got %q", resp.EmptyMessage)
	}
	if len(resp.Warnings) != 2 {
		t.Fatalf("expected total and count warnings, got %v", resp.Warnings)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"rows":[]`) {
		t.Fatalf("expected empty rows array, got %s", data)
	}
}

func TestLoginFromDomain(t *testing.T) {
	exp := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	resp := LoginFromDomain(&domain.Token{Value: "jwt", ID: "tid", Username: "elio", ExpiresAt: exp})

	if resp.Token != "jwt" || resp.Username != "elio" || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}
