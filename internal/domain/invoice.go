package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDueDays is the payment term applied when none is configured
const DefaultDueDays = 30

// Invoice is a factura as returned by the backend
type Invoice struct {
	ID         string
	Ref        string // List identity assigned locally when ID is empty
	NIT        string
	ClientName string
	Date       time.Time // Issue date; zero when the backend sent none
	Series     string
	Number     string
	Amount     decimal.Decimal
}

// InvoiceInput is the payload for creating an invoice
type InvoiceInput struct {
	NIT        string
	ClientName string
	Date       time.Time
	Series     string
	Number     string
	Amount     decimal.Decimal
}

// Key identifies the invoice within a list: the backend id, else the
// locally assigned Ref, else NIT and number.
func (i Invoice) Key() string {
	if i.ID != "" {
		return i.ID
	}
	if i.Ref != "" {
		return i.Ref
	}
	return i.NIT + "-" + i.Number
}

// HasDate reports whether the backend supplied an issue date
func (i Invoice) HasDate() bool {
	return !i.Date.IsZero()
}

// DueDate returns the issue date plus dueDays
func (i Invoice) DueDate(dueDays int) time.Time {
	if !i.HasDate() {
		return time.Time{}
	}
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}
	return i.Date.AddDate(0, 0, dueDays)
}

// DaysPastDue returns whole days elapsed since the due date. Negative values
// are days remaining before the invoice becomes due.
func (i Invoice) DaysPastDue(now time.Time, dueDays int) int {
	due := i.DueDate(dueDays)
	if due.IsZero() {
		return 0
	}
	dueDay := civilDay(due)
	today := civilDay(now)
	return int(today.Sub(dueDay).Hours() / 24)
}

// IsOverdue reports whether the due date has passed
func (i Invoice) IsOverdue(now time.Time, dueDays int) bool {
	return i.HasDate() && i.DaysPastDue(now, dueDays) > 0
}

// Label is the short human description used in selectors
func (i Invoice) Label() string {
	name := i.ClientName
	if name == "" {
		name = i.NIT
	}
	return i.Series + " " + i.Number + " - " + name
}

// SumAmounts totals invoice amounts. Missing amounts are zero.
func SumAmounts(invoices []Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	return total
}

func civilDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
