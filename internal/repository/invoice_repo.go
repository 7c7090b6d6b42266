package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/facturas/internal/domain"
)

// SaveInvoices replaces the invoice snapshot, preserving list order
func (r *SnapshotRepo) SaveInvoices(ctx context.Context, invoices []domain.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cached_invoices"); err != nil {
		return fmt.Errorf("failed to clear invoice snapshot: %w", err)
	}

	query := `
		INSERT INTO cached_invoices (
			position, invoice_key, remote_id, nit, client_name,
			issue_date, series, number, amount
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare invoice insert: %w", err)
	}
	defer stmt.Close()

	for i, inv := range invoices {
		var remoteID interface{}
		if inv.ID != "" {
			remoteID = inv.ID
		}
		_, err := stmt.ExecContext(ctx,
			i,
			inv.Key(),
			remoteID,
			inv.NIT,
			inv.ClientName,
			nullableTime(inv.Date),
			inv.Series,
			inv.Number,
			inv.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save invoice %s: %w", inv.Key(), err)
		}
	}

	if err := touchMeta(ctx, tx, KindInvoices, len(invoices)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// LoadInvoices returns the last saved invoice set in its original order
func (r *SnapshotRepo) LoadInvoices(ctx context.Context) ([]domain.Invoice, error) {
	query := `
		SELECT remote_id, nit, client_name, issue_date, series, number, amount
		FROM cached_invoices
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice snapshot: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		var inv domain.Invoice
		var remoteID, issueDate sql.NullString
		var amount string

		err := rows.Scan(
			&remoteID,
			&inv.NIT,
			&inv.ClientName,
			&issueDate,
			&inv.Series,
			&inv.Number,
			&amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		inv.ID = remoteID.String
		if inv.Date, err = scanTime(issueDate); err != nil {
			return nil, fmt.Errorf("failed to parse issue_date: %w", err)
		}
		inv.Amount = parseAmount(amount)

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}
