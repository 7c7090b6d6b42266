package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Manage payments",
	Long:  `List payments and register new ones against invoices.`,
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		payments, err := appInstance.Payments.FetchAll(ctx)
		if err != nil {
			return apiFailure("failed to list payments", err)
		}

		if len(payments) == 0 {
			fmt.Println("No payments found")
			return nil
		}

		// Invoice labels are a nicety; list payments even if this fails
		if _, err := appInstance.Invoices.FetchAll(ctx); err != nil {
			fmt.Printf("(invoice details unavailable: %v)\n\n", err)
		}

		fmt.Printf("%-26s %-30s %-12s %-16s %15s\n", "ID", "Invoice", "Date", "Receipt", "Amount")
		fmt.Println(strings.Repeat("-", 103))

		for _, p := range payments {
			label := p.InvoiceID
			if inv, ok := appInstance.Invoices.Find(p.InvoiceID); ok {
				label = inv.Label()
			}
			fmt.Printf("%-26s %-30s %-12s %-16s %15s\n",
				truncate(p.ID, 26),
				truncate(label, 30),
				domain.FormatDisplay(p.Date),
				truncate(p.Receipt, 16),
				money(p.Amount),
			)
		}

		fmt.Printf("\nTotal: %d payment(s)\n", len(payments))
		return nil
	},
}

var paymentsCreateCmd = &cobra.Command{
	Use:   "create [invoice_id]",
	Short: "Register a payment against an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		draft := domain.PaymentDraft{InvoiceID: args[0]}
		draft.Date, _ = cmd.Flags().GetString("fecha")
		draft.Receipt, _ = cmd.Flags().GetString("boleta")
		draft.Amount, _ = cmd.Flags().GetString("monto")

		if draft.Date == "" {
			draft.Date = time.Now().Format(domain.DayLayout)
		}

		in, err := draft.ToInput()
		if err != nil {
			return err
		}

		p, err := appInstance.Payments.Create(ctx, in)
		if err != nil {
			return apiFailure("failed to register payment", err)
		}

		fmt.Printf("✓ Payment registered for invoice %s\n", p.InvoiceID)
		fmt.Printf("  Receipt: %s\n", p.Receipt)
		fmt.Printf("  Amount:  %s\n", money(p.Amount))

		return nil
	},
}

func init() {
	paymentsCmd.AddCommand(paymentsListCmd)
	paymentsCmd.AddCommand(paymentsCreateCmd)

	paymentsCreateCmd.Flags().String("fecha", "", "Payment date YYYY-MM-DD (defaults to today)")
	paymentsCreateCmd.Flags().String("boleta", "", "Receipt (boleta) reference (required)")
	paymentsCreateCmd.Flags().String("monto", "", "Amount (required)")
	paymentsCreateCmd.MarkFlagRequired("boleta")
	paymentsCreateCmd.MarkFlagRequired("monto")
}
