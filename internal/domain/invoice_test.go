package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawReportPayload_Decode(t *testing.T) {
	body := `{
		"username": "elio villalobos",
		"directorio": "liquidacion-abril25",
		"numero_facturas": 3,
		"monto_total_calculado": 300.25,
		"facturas": [
			{"id": "F-001", "montoTotal": 120.50, "fechaTransaccion": "2025-04-02"},
			{"id": 42, "montoTotal": 79.5, "fechaTransaccion": "03/04/2025"},
			{"id": 1e3, "montoTotal": "100.25", "fechaTransaccion": "2025-04-04T08:30:00"}
		]
	}`

	var p RawReportPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, "elio villalobos", p.Username)
	assert.Equal(t, "liquidacion-abril25", p.Directorio)
	assert.Equal(t, 3, p.InvoiceCount)
	require.NotNil(t, p.SourceTotal)
	assert.Equal(t, "300.25", p.SourceTotal.String())

	require.Len(t, p.Invoices, 3)
	assert.Equal(t, InvoiceID("F-001"), p.Invoices[0].ID)
	assert.Equal(t, InvoiceID("42"), p.Invoices[1].ID)
	assert.Equal(t, InvoiceID("1e3"), p.Invoices[2].ID)
	assert.Equal(t, "79.5", p.Invoices[1].Amount.String())
	assert.Equal(t, "03/04/2025", p.Invoices[1].Date)
	assert.Equal(t, "2025-04-04T08:30:00", p.Invoices[2].Date)
}

func TestRawReportPayload_MissingSourceTotal(t *testing.T) {
	var p RawReportPayload
	require.NoError(t, json.Unmarshal([]byte(`{"username":"u","directorio":"p","facturas":[]}`), &p))

	assert.Nil(t, p.SourceTotal)
	assert.Empty(t, p.Invoices)
}

func TestInvoiceID_RejectsObjects(t *testing.T) {
	var id InvoiceID
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &id))
}

func TestInvoiceID_Null(t *testing.T) {
	id := InvoiceID("x")
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Equal(t, InvoiceID(""), id)
}
