package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		period  string
		wantErr bool
	}{
		{"valid", "elio", "liquidacion-abril25", false},
		{"missing user", "", "p", true},
		{"blank period", "u", "   ", true},
		{"both missing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.user, tt.period)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDisplayMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", ValidateQuery("", ""), MissingIdentifiersMessage},
		{"query error text", &QueryError{StatusCode: 500, Message: "cosmos unavailable"}, "cosmos unavailable"},
		{"query error empty", &QueryError{StatusCode: 500}, DefaultQueryErrorMessage},
		{"wrapped query error", fmt.Errorf("fetch: %w", &QueryError{Message: "boom"}), "boom"},
		{"plain error", errors.New("dial tcp: refused"), "dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayMessage(tt.err); got != tt.want {
				t.Fatalf("DisplayMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryErrorIs(t *testing.T) {
	notFound := &QueryError{StatusCode: http.StatusNotFound, Message: "nothing"}
	if !errors.Is(notFound, ErrReportNotFound) || !errors.Is(notFound, ErrQueryFailed) {
		t.Fatalf("expected not found query error to match sentinels")
	}

	timeout := &QueryError{StatusCode: http.StatusGatewayTimeout}
	if !errors.Is(timeout, ErrQueryTimeout) {
		t.Fatalf("expected gateway timeout to match ErrQueryTimeout")
	}

	if errors.Is(&QueryError{StatusCode: 500}, ErrReportNotFound) {
		t.Fatalf("500 must not match ErrReportNotFound")
	}
}

func TestValidateInvoices(t *testing.T) {
	ok := []Invoice{
		{ID: "A", Amount: decimal.RequireFromString("0")},
		{ID: "B", Amount: decimal.RequireFromString("79.50")},
	}
	if err := ValidateInvoices(ok); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidateInvoices(nil); err != nil {
		t.Fatalf("expected no error for empty invoices, got %v", err)
	}

	bad := append(ok, Invoice{ID: "C", Amount: decimal.RequireFromString("-50")})
	err := ValidateInvoices(bad)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := DisplayMessage(err); got != `invoice "C" has a negative amount -50` {
		t.Fatalf("unexpected message %q", got)
	}
}
