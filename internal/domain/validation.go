package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxIdentifierLength = 255
)

// MissingIdentifiersMessage is shown when user or period are blank at submission.
const MissingIdentifiersMessage = "Please enter a user and a period."

// ValidateQuery checks the identifiers required before the query boundary is called.
func ValidateQuery(user, period string) error {
	user = strings.TrimSpace(user)
	period = strings.TrimSpace(period)

	if user == "" || period == "" {
		return fmt.Errorf("%w: %s", ErrValidation, MissingIdentifiersMessage)
	}

	if len(user) > MaxIdentifierLength {
		return fmt.Errorf("%w: user exceeds %d characters", ErrValidation, MaxIdentifierLength)
	}

	if len(period) > MaxIdentifierLength {
		return fmt.Errorf("%w: period exceeds %d characters", ErrValidation, MaxIdentifierLength)
	}

	return nil
}

// ValidateInvoices rejects invoices with a negative amount.
func ValidateInvoices(invoices []Invoice) error {
	for _, inv := range invoices {
		if inv.Amount.IsNegative() {
			return fmt.Errorf("%w: invoice %q has a negative amount %s", ErrValidation, inv.ID, inv.Amount)
		}
	}
	return nil
}
