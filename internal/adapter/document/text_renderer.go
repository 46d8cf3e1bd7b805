package document

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iho/goreporte/internal/domain"
)

// TextRenderer writes a report as an aligned plain-text table.
type TextRenderer struct {
	currency string
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(currency string) *TextRenderer {
	if currency == "" {
		currency = domain.DefaultCurrencySymbol
	}
	return &TextRenderer{currency: currency}
}

// Render writes report to w. A nil report writes nothing.
func (r *TextRenderer) Render(w io.Writer, report *domain.Report) error {
	if report == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n", domain.ReportTitle, strings.Repeat("=", len(domain.ReportTitle))); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range report.Summary(r.currency) {
		fmt.Fprintf(tw, "%s:\t%s\n", line.Label, line.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	rows := report.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, domain.EmptyStateMessage)
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t%s\t\n", domain.TableColumns[0], domain.AmountColumn(r.currency), domain.TableColumns[2])
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", row.ID, row.Amount, row.Date)
	}
	return tw.Flush()
}
