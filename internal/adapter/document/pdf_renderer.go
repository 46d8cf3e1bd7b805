// Package document renders reconciled reports for export and for terminals.
package document

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/iho/goreporte/internal/domain"
)

// Layout of the exported document, in millimetres on A4 portrait.
const (
	marginX       = 14.0
	titleY        = 20.0
	summaryStartY = 30.0
	summaryStepY  = 6.0
	tableStartY   = 65.0
	continuationY = 20.0
	rowHeight     = 7.0
	bottomLimit   = 20.0
	footerOffset  = -12.0

	titleFontSize = 16.0
	bodyFontSize  = 11.0
	tableFontSize = 10.0
	fontFamily    = "DejaVu"
)

// The document font is embedded so that every rune of the report is written
// as Unicode text and the output does not depend on the host.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

var parsedFont = sync.OnceValues(func() (*sfnt.Font, error) {
	return sfnt.Parse(regularFont)
})

// columnWidths must add up to the printable width (210 - 2*marginX).
var columnWidths = [3]float64{70, 56, 56}

// documentEpoch is stamped as creation and modification date so that
// rendering the same report twice produces identical bytes.
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// PDFRenderer renders a report as a paginated PDF document.
type PDFRenderer struct {
	currency string
	// compress is off only in tests that read the content streams.
	compress bool
}

// NewPDFRenderer creates a PDF renderer. An empty currency falls back to
// domain.DefaultCurrencySymbol.
func NewPDFRenderer(currency string) *PDFRenderer {
	if currency == "" {
		currency = domain.DefaultCurrencySymbol
	}
	return &PDFRenderer{currency: currency, compress: true}
}

// ContentType returns the MIME type of rendered documents.
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Filename returns the download name for a period's report.
func (r *PDFRenderer) Filename(period string) string {
	return "reporte-" + sanitizeFilename(period) + ".pdf"
}

// Render produces the PDF bytes for report. A nil report renders nothing.
// Reports holding characters the embedded font has no glyph for fail with
// domain.ErrUnrenderableText instead of being drawn with substitutes.
func (r *PDFRenderer) Render(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, nil
	}

	summary := report.Summary(r.currency)
	rows := report.Rows()
	if err := checkGlyphs(summary, rows); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldFont)
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(documentEpoch)
	pdf.SetModificationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(domain.ReportTitle, true)
	pdf.SetMargins(marginX, continuationY, marginX)
	pdf.SetAutoPageBreak(false, bottomLimit)

	pdf.SetFooterFunc(func() {
		pdf.SetY(footerOffset)
		pdf.SetFont(fontFamily, "", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", titleFontSize)
	pdf.Text(marginX, titleY, domain.ReportTitle)

	pdf.SetFont(fontFamily, "", bodyFontSize)
	for i, line := range summary {
		y := summaryStartY + float64(i)*summaryStepY
		pdf.Text(marginX, y, line.Label+": "+line.Value)
	}

	pdf.SetY(tableStartY)
	r.tableHeader(pdf)

	pdf.SetFont(fontFamily, "", tableFontSize)
	if len(rows) == 0 {
		pdf.CellFormat(sumWidths(), rowHeight, domain.EmptyStateMessage, "1", 1, "C", false, 0, "")
	}

	_, pageHeight := pdf.GetPageSize()
	for _, row := range rows {
		if pdf.GetY()+rowHeight > pageHeight-bottomLimit {
			pdf.AddPage()
			pdf.SetY(continuationY)
			r.tableHeader(pdf)
			pdf.SetFont(fontFamily, "", tableFontSize)
		}
		pdf.CellFormat(columnWidths[0], rowHeight, row.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[1], rowHeight, row.Amount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(columnWidths[2], rowHeight, row.Date, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *PDFRenderer) tableHeader(pdf *fpdf.Fpdf) {
	headers := [3]string{
		domain.TableColumns[0],
		domain.AmountColumn(r.currency),
		domain.TableColumns[2],
	}

	pdf.SetFont(fontFamily, "B", tableFontSize)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(columnWidths[i], rowHeight, h, "1", ln, "C", true, 0, "")
	}
}

// checkGlyphs verifies that the embedded font can draw every rune of the
// report data. Runes outside the Basic Multilingual Plane are rejected too,
// since the PDF text is written as UTF-16 code units of the BMP.
func checkGlyphs(summary []domain.SummaryLine, rows []domain.Row) error {
	font, err := parsedFont()
	if err != nil {
		return fmt.Errorf("parse embedded font: %w", err)
	}

	var buf sfnt.Buffer
	check := func(field, text string) error {
		for _, c := range text {
			if c > 0xFFFF || unicode.IsControl(c) {
				return fmt.Errorf("%w: %s %q contains %U", domain.ErrUnrenderableText, field, text, c)
			}
			idx, err := font.GlyphIndex(&buf, c)
			if err != nil {
				return fmt.Errorf("glyph lookup for %U: %w", c, err)
			}
			if idx == 0 {
				return fmt.Errorf("%w: %s %q contains %U", domain.ErrUnrenderableText, field, text, c)
			}
		}
		return nil
	}

	for _, line := range summary {
		if err := check(strings.ToLower(line.Label), line.Value); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := check("invoice id", row.ID); err != nil {
			return err
		}
		if err := check("invoice date", row.Date); err != nil {
			return err
		}
	}
	return nil
}

func sumWidths() float64 {
	var total float64
	for _, w := range columnWidths {
		total += w
	}
	return total
}

// sanitizeFilename folds accented letters to their base letter and replaces
// every rune outside [A-Za-z0-9._-] with '-'.
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "report"
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
