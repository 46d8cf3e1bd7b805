package domain

import "strconv"

// EmptyStateMessage is shown instead of the invoice table when a report has no invoices.
const EmptyStateMessage = "No invoices found for this period."

// DefaultCurrencySymbol prefixes money values in summaries.
const DefaultCurrencySymbol = "Bs."

// ReportTitle is the heading of every rendered report.
const ReportTitle = "Settlement Report"

// TableColumns are the invoice table headers; the amount column is suffixed
// with the currency symbol by the renderers.
var TableColumns = [3]string{"Invoice ID", "Amount", "Date"}

// SummaryLine is one label/value line of the report summary block.
type SummaryLine struct {
	Label string
	Value string
}

// Row is one formatted invoice row.
type Row struct {
	ID     string
	Amount string
	Date   string
}

// Summary returns the summary block in display order.
func (r *Report) Summary(currency string) []SummaryLine {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	money := func(v string) string { return currency + " " + v }

	return []SummaryLine{
		{Label: "User", Value: r.user},
		{Label: "Period", Value: r.period},
		{Label: "Invoices", Value: strconv.Itoa(len(r.invoices))},
		{Label: "Advance", Value: money(FormatMoney(r.advance))},
		{Label: "Invoice Total", Value: money(FormatMoney(r.total))},
		{Label: r.Classification().Label(), Value: money(FormatMoney(r.Magnitude()))},
	}
}

// Rows returns the invoice table rows in source order.
func (r *Report) Rows() []Row {
	rows := make([]Row, len(r.invoices))
	for i, inv := range r.invoices {
		rows[i] = Row{
			ID:     inv.ID.String(),
			Amount: FormatMoney(inv.Amount),
			Date:   inv.Date,
		}
	}
	return rows
}

// AmountColumn returns the amount header for the given currency symbol.
func AmountColumn(currency string) string {
	if currency == "" {
		currency = DefaultCurrencySymbol
	}
	return TableColumns[1] + " (" + currency + ")"
}
