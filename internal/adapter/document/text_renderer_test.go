package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goreporte/internal/domain"
)

func TestTextRenderer_Render(t *testing.T) {
	report := domain.Reconcile("elio", "liquidacion-abril25", []domain.Invoice{
		{ID: "A", Amount: decimal.RequireFromString("120.50"), Date: "2025-04-02"},
		{ID: "B", Amount: decimal.RequireFromString("79.50"), Date: "2025-04-03"},
	}, decimal.RequireFromString("150.00"))

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer("").Render(&buf, report))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, domain.ReportTitle+"\n"))
	assert.Contains(t, out, "elio")
	assert.Regexp(t, `Invoices:\s+2\n`, out)
	assert.Contains(t, out, "Bs. 150.00")
	assert.Contains(t, out, "Bs. 200.00")
	assert.Contains(t, out, "Amount to Refund:")
	assert.Contains(t, out, "Bs. 50.00")
	assert.Contains(t, out, "Amount (Bs.)")
	assert.Contains(t, out, "120.50")
	assert.Contains(t, out, "2025-04-03")
	assert.NotContains(t, out, domain.EmptyStateMessage)

	assert.Less(t, strings.Index(out, "120.50"), strings.Index(out, "79.50"))
}

func TestTextRenderer_Empty(t *testing.T) {
	report := domain.Reconcile("elio", "vacio", nil, decimal.Zero)

	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer("USD").Render(&buf, report))

	assert.Contains(t, buf.String(), domain.EmptyStateMessage)
	assert.Contains(t, buf.String(), "Balanced:")
	assert.Contains(t, buf.String(), "USD 0.00")
	assert.NotContains(t, buf.String(), "Invoice ID")
}

func TestTextRenderer_NilReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextRenderer("").Render(&buf, nil))
	assert.Zero(t, buf.Len())
}
