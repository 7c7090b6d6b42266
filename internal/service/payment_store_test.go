package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type mockPaymentAPI struct {
	payments  []domain.Payment
	createErr error
	created   int
}

func (m *mockPaymentAPI) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	out := make([]domain.Payment, len(m.payments))
	copy(out, m.payments)
	return out, nil
}
func (m *mockPaymentAPI) CreatePayment(ctx context.Context, in domain.PaymentInput) (domain.Payment, error) {
	m.created++
	if m.createErr != nil {
		return domain.Payment{}, m.createErr
	}
	// backend answers without an id
	return domain.Payment{InvoiceID: in.InvoiceID, Date: in.Date, Receipt: in.Receipt, Amount: in.Amount}, nil
}

func validPayment() domain.PaymentInput {
	return domain.PaymentInput{
		InvoiceID: "f1",
		Date:      time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Receipt:   "B-1",
		Amount:    decimal.NewFromInt(25),
	}
}

func TestPaymentStore_CreateAppends(t *testing.T) {
	ctx := context.Background()
	api := &mockPaymentAPI{payments: []domain.Payment{{ID: "p0", InvoiceID: "f1", Amount: decimal.NewFromInt(10)}}}
	store := NewPaymentStore(api, nil, zerolog.Nop())

	if _, err := store.FetchAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := store.Create(ctx, validPayment())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "1" {
		t.Fatalf("expected positional id 1, got %q", p.ID)
	}

	list := store.Payments()
	if len(list) != 2 || list[1].Receipt != "B-1" {
		t.Fatalf("expected payment appended, got %+v", list)
	}
	if got := len(store.ForInvoice("f1")); got != 2 {
		t.Fatalf("expected 2 payments for f1, got %d", got)
	}
}

func TestPaymentStore_RejectsOutOfRangeBeforeNetwork(t *testing.T) {
	api := &mockPaymentAPI{}
	store := NewPaymentStore(api, nil, zerolog.Nop())

	in := validPayment()
	in.Amount = decimal.RequireFromString("1000000000.01")

	if _, err := store.Create(context.Background(), in); !errors.Is(err, domain.ErrAmountOutOfRange) {
		t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
	}
	if api.created != 0 {
		t.Fatal("backend should not be called for invalid input")
	}
	if store.Err() == "" {
		t.Fatal("expected error message")
	}
}

func TestPaymentStore_ErrorMessage(t *testing.T) {
	api := &mockPaymentAPI{createErr: errors.New("server error")}
	store := NewPaymentStore(api, nil, zerolog.Nop())

	if _, err := store.Create(context.Background(), validPayment()); err == nil {
		t.Fatal("expected error")
	}
	if store.Err() != "server error" {
		t.Fatalf("unexpected error message %q", store.Err())
	}
	if len(store.Payments()) != 0 {
		t.Fatal("failed create should not append")
	}

	store.ClearError()
	if store.Err() != "" {
		t.Fatal("expected error cleared")
	}
	if store.Loading() {
		t.Fatal("loading should be cleared")
	}
}
