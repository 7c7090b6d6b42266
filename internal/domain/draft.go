package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceDraft holds the raw text of the invoice creation form
type InvoiceDraft struct {
	NIT        string
	ClientName string
	Date       string
	Series     string
	Number     string
	Amount     string
}

// ToInput coerces the amount to a number and the date to a timestamp.
// Nothing else is checked; the backend owns the rest.
func (d InvoiceDraft) ToInput() (InvoiceInput, error) {
	amount, err := parseAmount(d.Amount)
	if err != nil {
		return InvoiceInput{}, err
	}
	date, err := ParseDay(d.Date)
	if err != nil {
		return InvoiceInput{}, err
	}
	return InvoiceInput{
		NIT:        strings.TrimSpace(d.NIT),
		ClientName: strings.TrimSpace(d.ClientName),
		Date:       date,
		Series:     strings.TrimSpace(d.Series),
		Number:     strings.TrimSpace(d.Number),
		Amount:     amount,
	}, nil
}

// PaymentDraft holds the raw text of the payment registration form
type PaymentDraft struct {
	InvoiceID string
	Date      string
	Receipt   string
	Amount    string
}

// ToInput checks required fields and amount bounds before anything is sent
func (d PaymentDraft) ToInput() (PaymentInput, error) {
	if strings.TrimSpace(d.InvoiceID) == "" ||
		strings.TrimSpace(d.Date) == "" ||
		strings.TrimSpace(d.Receipt) == "" ||
		strings.TrimSpace(d.Amount) == "" {
		return PaymentInput{}, ErrMissingFields
	}

	amount, err := parseAmount(d.Amount)
	if err != nil {
		return PaymentInput{}, err
	}
	date, err := ParseDay(d.Date)
	if err != nil {
		return PaymentInput{}, err
	}

	in := PaymentInput{
		InvoiceID: strings.TrimSpace(d.InvoiceID),
		Date:      date,
		Receipt:   strings.TrimSpace(d.Receipt),
		Amount:    amount,
	}
	if err := in.Validate(); err != nil {
		return PaymentInput{}, err
	}
	return in, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "monto", Message: "El monto es obligatorio"}
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "monto", Message: "El monto no es un número válido"}
	}
	return amount, nil
}
