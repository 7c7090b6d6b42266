package service

import (
	"sort"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientBalance summarizes receivables for one client (NIT)
type ClientBalance struct {
	NIT      string
	Name     string
	Invoices int
	Overdue  int
	Billed   decimal.Decimal
	Paid     decimal.Decimal
	Balance  decimal.Decimal
}

// Receivables is the billed/paid/outstanding position over the loaded sets
type Receivables struct {
	AsOf          time.Time
	InvoiceCount  int
	PaymentCount  int
	Billed        decimal.Decimal
	Paid          decimal.Decimal // Only payments matched to a loaded invoice
	Outstanding   decimal.Decimal
	OverdueCount  int
	OverdueAmount decimal.Decimal // Unpaid balance of overdue invoices
	Unmatched     int             // Payments whose invoice is not loaded
	ByClient      []ClientBalance // Sorted by balance, largest first
}

// InvoiceSource provides the last full invoice set
type InvoiceSource interface {
	All() []domain.Invoice
}

// PaymentSource provides the current payment list
type PaymentSource interface {
	Payments() []domain.Payment
}

// ReportService provides aggregations over invoices and payments
type ReportService interface {
	// Receivables computes the overall and per-client position
	Receivables() *Receivables

	// Balance returns the unpaid amount of one invoice
	Balance(inv domain.Invoice) decimal.Decimal
}

type reportService struct {
	invoices InvoiceSource
	payments PaymentSource
	dueDays  int
	now      func() time.Time
}

// NewReportService creates a new report service
func NewReportService(invoices InvoiceSource, payments PaymentSource, dueDays int) ReportService {
	if dueDays <= 0 {
		dueDays = domain.DefaultDueDays
	}
	return &reportService{
		invoices: invoices,
		payments: payments,
		dueDays:  dueDays,
		now:      time.Now,
	}
}

func (s *reportService) Receivables() *Receivables {
	invoices := s.invoices.All()
	payments := s.payments.Payments()
	paid := paidByInvoice(payments)
	now := s.now()

	r := &Receivables{
		AsOf:          now,
		InvoiceCount:  len(invoices),
		PaymentCount:  len(payments),
		Billed:        decimal.Zero,
		Paid:          decimal.Zero,
		Outstanding:   decimal.Zero,
		OverdueAmount: decimal.Zero,
	}

	clients := make(map[string]*ClientBalance)
	matched := make(map[string]bool)

	for _, inv := range invoices {
		invPaid := decimal.Zero
		if inv.ID != "" {
			invPaid = paid[inv.ID]
			matched[inv.ID] = true
		}
		balance := inv.Amount.Sub(invPaid)

		r.Billed = r.Billed.Add(inv.Amount)
		r.Paid = r.Paid.Add(invPaid)
		r.Outstanding = r.Outstanding.Add(balance)

		overdue := balance.IsPositive() && inv.IsOverdue(now, s.dueDays)
		if overdue {
			r.OverdueCount++
			r.OverdueAmount = r.OverdueAmount.Add(balance)
		}

		cb, ok := clients[inv.NIT]
		if !ok {
			cb = &ClientBalance{
				NIT:     inv.NIT,
				Name:    inv.ClientName,
				Billed:  decimal.Zero,
				Paid:    decimal.Zero,
				Balance: decimal.Zero,
			}
			clients[inv.NIT] = cb
		}
		if cb.Name == "" {
			cb.Name = inv.ClientName
		}
		cb.Invoices++
		if overdue {
			cb.Overdue++
		}
		cb.Billed = cb.Billed.Add(inv.Amount)
		cb.Paid = cb.Paid.Add(invPaid)
		cb.Balance = cb.Balance.Add(balance)
	}

	for _, p := range payments {
		if !matched[p.InvoiceID] {
			r.Unmatched++
		}
	}

	r.ByClient = make([]ClientBalance, 0, len(clients))
	for _, cb := range clients {
		r.ByClient = append(r.ByClient, *cb)
	}
	sort.Slice(r.ByClient, func(i, j int) bool {
		a, b := r.ByClient[i], r.ByClient[j]
		if !a.Balance.Equal(b.Balance) {
			return a.Balance.GreaterThan(b.Balance)
		}
		return a.NIT < b.NIT
	})

	return r
}

func (s *reportService) Balance(inv domain.Invoice) decimal.Decimal {
	if inv.ID == "" {
		return inv.Amount
	}
	paid := decimal.Zero
	for _, p := range s.payments.Payments() {
		if p.InvoiceID == inv.ID {
			paid = paid.Add(p.Amount)
		}
	}
	return inv.Amount.Sub(paid)
}

func paidByInvoice(payments []domain.Payment) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range payments {
		out[p.InvoiceID] = out[p.InvoiceID].Add(p.Amount)
	}
	return out
}
