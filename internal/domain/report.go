package domain

import (
	"github.com/shopspring/decimal"
)

// Classification describes which side owes money after reconciliation.
type Classification int

const (
	// Settled means the advance exactly covers the invoices.
	Settled Classification = iota
	// ToPay means the advance exceeds the invoice total.
	ToPay
	// ToCollect means the invoice total exceeds the advance.
	ToCollect
)

func (c Classification) String() string {
	switch c {
	case ToPay:
		return "to_pay"
	case ToCollect:
		return "to_collect"
	default:
		return "settled"
	}
}

// Label is the caption used for the difference line.
func (c Classification) Label() string {
	switch c {
	case ToPay:
		return "Amount Due"
	case ToCollect:
		return "Amount to Refund"
	default:
		return "Balanced"
	}
}

// Classify derives the classification from the sign of the difference.
func Classify(difference decimal.Decimal) Classification {
	switch difference.Sign() {
	case 1:
		return ToPay
	case -1:
		return ToCollect
	default:
		return Settled
	}
}

// Report is the reconciled settlement report. It is immutable; use WithAdvance
// to recompute for a different advance.
type Report struct {
	user     string
	period   string
	invoices []Invoice
	total    decimal.Decimal
	advance  decimal.Decimal

	sourceTotal *decimal.Decimal
	sourceCount int
	hasSource   bool
}

// Reconcile sums the invoices and compares the total against the advance.
// Invoice amounts and the advance are rounded to MoneyScale first, so the
// total is always the sum of the amounts shown in the rows.
func Reconcile(user, period string, invoices []Invoice, advance decimal.Decimal) *Report {
	rows := make([]Invoice, len(invoices))
	copy(rows, invoices)

	total := decimal.Zero
	for i := range rows {
		rows[i].Amount = RoundMoney(rows[i].Amount)
		total = total.Add(rows[i].Amount)
	}

	return &Report{
		user:     user,
		period:   period,
		invoices: rows,
		total:    total,
		advance:  RoundMoney(advance),
	}
}

// ReconcilePayload reconciles a query boundary payload. The total is always
// recomputed from the invoices; the source figures are kept only to flag
// divergence.
func ReconcilePayload(p *RawReportPayload, advance decimal.Decimal) *Report {
	if p == nil {
		return nil
	}

	r := Reconcile(p.Username, p.Directorio, p.Invoices, advance)
	r.hasSource = true
	r.sourceCount = p.InvoiceCount
	if p.SourceTotal != nil {
		st := *p.SourceTotal
		r.sourceTotal = &st
	}

	return r
}

// WithAdvance returns a new report for the same invoices and a different
// advance. A nil report stays nil.
func (r *Report) WithAdvance(advance decimal.Decimal) *Report {
	if r == nil {
		return nil
	}
	next := *r
	next.advance = RoundMoney(advance)
	return &next
}

func (r *Report) User() string   { return r.user }
func (r *Report) Period() string { return r.period }

// InvoiceCount is the number of invoices in the report.
func (r *Report) InvoiceCount() int { return len(r.invoices) }

// Invoices returns a copy of the invoice rows in source order.
func (r *Report) Invoices() []Invoice {
	out := make([]Invoice, len(r.invoices))
	copy(out, r.invoices)
	return out
}

func (r *Report) Total() decimal.Decimal   { return r.total }
func (r *Report) Advance() decimal.Decimal { return r.advance }

// Difference is advance minus total.
func (r *Report) Difference() decimal.Decimal {
	return r.advance.Sub(r.total)
}

// Magnitude is the unsigned difference.
func (r *Report) Magnitude() decimal.Decimal {
	return r.Difference().Abs()
}

func (r *Report) Classification() Classification {
	return Classify(r.Difference())
}

// SourceTotal returns the total reported by the source, if it sent one.
func (r *Report) SourceTotal() (decimal.Decimal, bool) {
	if r.sourceTotal == nil {
		return decimal.Zero, false
	}
	return *r.sourceTotal, true
}

// TotalMismatch reports whether the source total differs from the recomputed one.
func (r *Report) TotalMismatch() bool {
	return r.sourceTotal != nil && !RoundMoney(*r.sourceTotal).Equal(r.total)
}

// SourceCountMismatch reports whether the source invoice count differs from
// the number of invoices received.
func (r *Report) SourceCountMismatch() bool {
	return r.hasSource && r.sourceCount != len(r.invoices)
}
