package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every monetary value is shown with.
const MoneyScale = 2

// ParseAdvance parses the advance ("anticipo") typed by the caller and rounds
// it to MoneyScale. Blank, unparseable and negative input all yield zero.
func ParseAdvance(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}

	// Accept a decimal comma as typed in es-* locales.
	if !strings.Contains(raw, ".") && strings.Count(raw, ",") == 1 {
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}

	return RoundMoney(d)
}

// RoundMoney rounds d to MoneyScale places, half away from zero. Amounts are
// rounded once on entry so that totals and differences agree with what is shown.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatMoney renders an amount with exactly two decimals, rounding half away
// from zero. All surfaces format money through this function.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}
