package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// InvoiceID identifies an invoice within a report. Sources send it either as a
// JSON string or a JSON number; the literal text is kept as received.
type InvoiceID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *InvoiceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = InvoiceID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invoice id must be a string or a number: %w", err)
	}
	*id = InvoiceID(n.String())
	return nil
}

// String returns the identifier text.
func (id InvoiceID) String() string {
	return string(id)
}

// Invoice is a single invoice ("factura") as received from the query boundary.
type Invoice struct {
	ID     InvoiceID       `json:"id"`
	Amount decimal.Decimal `json:"montoTotal"`
	// Date is rendered verbatim, never reparsed.
	Date string `json:"fechaTransaccion"`
}

// RawReportPayload is the query boundary response for a (user, period) pair.
type RawReportPayload struct {
	Username     string           `json:"username"`
	Directorio   string           `json:"directorio"`
	InvoiceCount int              `json:"numero_facturas"`
	SourceTotal  *decimal.Decimal `json:"monto_total_calculado,omitempty"`
	Invoices     []Invoice        `json:"facturas"`
}
