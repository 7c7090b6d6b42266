package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/repository"
	"github.com/rs/zerolog"
)

// PaymentAPI is the part of the backend client the payment store uses
type PaymentAPI interface {
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, in domain.PaymentInput) (domain.Payment, error)
}

// PaymentStore holds the client-side payment list and the last error
// message shown to the user.
type PaymentStore struct {
	api      PaymentAPI
	snapshot repository.PaymentSnapshotRepository
	log      zerolog.Logger

	mu       sync.RWMutex
	payments []domain.Payment
	err      string
	inflight int
}

// NewPaymentStore creates a payment store. snapshot may be nil.
func NewPaymentStore(api PaymentAPI, snapshot repository.PaymentSnapshotRepository, log zerolog.Logger) *PaymentStore {
	return &PaymentStore{
		api:      api,
		snapshot: snapshot,
		log:      log,
		payments: make([]domain.Payment, 0),
	}
}

func (s *PaymentStore) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

// FetchAll replaces the payment list
func (s *PaymentStore) FetchAll(ctx context.Context) ([]domain.Payment, error) {
	done := s.begin()
	defer done()

	payments, err := s.api.ListPayments(ctx)
	if err != nil {
		s.setErr(err)
		return nil, fmt.Errorf("fetch payments: %w", err)
	}

	s.mu.Lock()
	s.payments = payments
	s.mu.Unlock()

	s.saveSnapshot(ctx, payments)
	return copyPayments(payments), nil
}

// Create validates and registers a payment, appending it to the list.
// Invalid input never reaches the backend.
func (s *PaymentStore) Create(ctx context.Context, in domain.PaymentInput) (*domain.Payment, error) {
	if err := in.Validate(); err != nil {
		s.setErr(err)
		return nil, err
	}

	done := s.begin()
	defer done()

	p, err := s.api.CreatePayment(ctx, in)
	if err != nil {
		s.setErr(err)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.mu.Lock()
	if p.ID == "" {
		p.ID = strconv.Itoa(len(s.payments))
	}
	s.payments = append(s.payments, p)
	snapshot := copyPayments(s.payments)
	s.mu.Unlock()

	s.saveSnapshot(ctx, snapshot)
	s.log.Info().Str("factura", p.InvoiceID).Str("boleta", p.Receipt).Msg("payment registered")
	created := p
	return &created, nil
}

// Payments returns a copy of the current list
func (s *PaymentStore) Payments() []domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPayments(s.payments)
}

// ForInvoice returns the payments registered against one invoice
func (s *PaymentStore) ForInvoice(invoiceID string) []domain.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out
}

// Err returns the last error message, or "" if none
func (s *PaymentStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearError resets the error message
func (s *PaymentStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// Loading reports whether any request is outstanding
func (s *PaymentStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *PaymentStore) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}

func (s *PaymentStore) saveSnapshot(ctx context.Context, payments []domain.Payment) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.SavePayments(ctx, payments); err != nil {
		s.log.Warn().Err(err).Msg("failed to save payment snapshot")
	}
}

func copyPayments(payments []domain.Payment) []domain.Payment {
	out := make([]domain.Payment, len(payments))
	copy(out, payments)
	return out
}
