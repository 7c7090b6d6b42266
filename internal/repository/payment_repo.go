package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/facturas/internal/domain"
)

// SavePayments replaces the payment snapshot
func (r *SnapshotRepo) SavePayments(ctx context.Context, payments []domain.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cached_payments"); err != nil {
		return fmt.Errorf("failed to clear payment snapshot: %w", err)
	}

	query := `
		INSERT INTO cached_payments (position, remote_id, invoice_id, payment_date, receipt, amount)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for i, p := range payments {
		_, err := tx.ExecContext(ctx, query,
			i,
			p.ID,
			p.InvoiceID,
			nullableTime(p.Date),
			p.Receipt,
			p.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save payment %s: %w", p.ID, err)
		}
	}

	if err := touchMeta(ctx, tx, KindPayments, len(payments)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// LoadPayments returns the last saved payment list
func (r *SnapshotRepo) LoadPayments(ctx context.Context) ([]domain.Payment, error) {
	query := `
		SELECT remote_id, invoice_id, payment_date, receipt, amount
		FROM cached_payments
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment snapshot: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		var paymentDate sql.NullString
		var amount string

		if err := rows.Scan(&p.ID, &p.InvoiceID, &paymentDate, &p.Receipt, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		if p.Date, err = scanTime(paymentDate); err != nil {
			return nil, fmt.Errorf("failed to parse payment_date: %w", err)
		}
		p.Amount = parseAmount(amount)

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
