package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment amount bounds accepted by the registration form
var (
	MinPaymentAmount = decimal.Zero
	MaxPaymentAmount = decimal.NewFromInt(1_000_000_000)
)

// Payment is a pago registered against an invoice
type Payment struct {
	ID        string // Backend id, or list position when the backend sent none
	InvoiceID string
	Date      time.Time
	Receipt   string // Boleta text
	Amount    decimal.Decimal
}

// PaymentInput is the payload for registering a payment
type PaymentInput struct {
	InvoiceID string
	Date      time.Time
	Receipt   string
	Amount    decimal.Decimal
}

// Validate enforces the required fields and the amount bounds
func (p PaymentInput) Validate() error {
	if p.InvoiceID == "" || p.Date.IsZero() || p.Receipt == "" {
		return ErrMissingFields
	}
	if p.Amount.LessThan(MinPaymentAmount) || p.Amount.GreaterThan(MaxPaymentAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

// SumPayments totals payment amounts
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
