package repository

import (
	"context"
	"time"

	"github.com/andy/facturas/internal/domain"
)

// Snapshot kinds recorded in snapshot_meta
const (
	KindInvoices = "invoices"
	KindPayments = "payments"
)

// InvoiceSnapshotRepository keeps the last full invoice fetch for offline filtering
type InvoiceSnapshotRepository interface {
	SaveInvoices(ctx context.Context, invoices []domain.Invoice) error // Replaces the previous snapshot
	LoadInvoices(ctx context.Context) ([]domain.Invoice, error)
}

// PaymentSnapshotRepository keeps the last full payment fetch
type PaymentSnapshotRepository interface {
	SavePayments(ctx context.Context, payments []domain.Payment) error
	LoadPayments(ctx context.Context) ([]domain.Payment, error)
}

// SnapshotInfo describes one stored snapshot
type SnapshotInfo struct {
	Kind    string
	Count   int
	SavedAt time.Time
}
