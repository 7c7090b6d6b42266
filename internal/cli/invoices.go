package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/facturas/internal/api"
	"github.com/andy/facturas/internal/domain"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `List, filter, create and re-date invoices.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	Long: `List invoices. With --nit and/or --fecha the backend filters the list;
if the backend cannot, the last full list is filtered locally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		out := cmd.OutOrStdout()
		nit, _ := cmd.Flags().GetString("nit")
		fecha, _ := cmd.Flags().GetString("fecha")

		filter := domain.Filter{NIT: nit, Date: fecha}
		if _, err := appInstance.Invoices.FetchFiltered(ctx, filter); err != nil {
			return apiFailure("failed to list invoices", err)
		}

		state := appInstance.Invoices.State()
		if state.Fallback {
			fmt.Fprintln(out, "Backend filter unavailable; showing locally filtered results.")
			fmt.Fprintln(out)
		}

		if len(state.Invoices) == 0 {
			fmt.Fprintln(out, "No invoices found")
			return nil
		}

		dueDays := appInstance.Config.Invoice.DueDays
		now := time.Now()

		fmt.Fprintf(out, "%-26s %-12s %-22s %-11s %-6s %-10s %15s %-12s\n",
			"ID", "NIT", "Client", "Date", "Series", "Number", "Amount", "Due")
		fmt.Fprintln(out, strings.Repeat("-", 122))

		for _, inv := range state.Invoices {
			fmt.Fprintf(out, "%-26s %-12s %-22s %-11s %-6s %-10s %15s %-12s\n",
				truncate(idOrDash(inv.ID), 26),
				truncate(inv.NIT, 12),
				truncate(inv.ClientName, 22),
				domain.FormatDisplay(inv.Date),
				truncate(inv.Series, 6),
				truncate(inv.Number, 10),
				money(inv.Amount),
				dueStatus(inv, inv.DaysPastDue(now, dueDays)),
			)
		}

		fmt.Fprintf(out, "\n%d invoice(s), total %s\n", len(state.Invoices), money(state.Total))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [invoice_id]",
	Short: "Show invoice details and its payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		out := cmd.OutOrStdout()
		inv, err := appInstance.Invoices.Get(ctx, args[0])
		if err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("invoice %s not found", args[0])
			}
			return apiFailure("failed to get invoice", err)
		}

		dueDays := appInstance.Config.Invoice.DueDays
		now := time.Now()

		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintf(out, "Invoice %s %s\n", inv.Series, inv.Number)
		fmt.Fprintln(out, strings.Repeat("=", 60))
		fmt.Fprintf(out, "ID:      %s\n", idOrDash(inv.ID))
		fmt.Fprintf(out, "NIT:     %s\n", inv.NIT)
		fmt.Fprintf(out, "Client:  %s\n", inv.ClientName)
		fmt.Fprintf(out, "Date:    %s\n", domain.FormatDisplay(inv.Date))
		fmt.Fprintf(out, "Due:     %s (%s)\n",
			domain.FormatDisplay(inv.DueDate(dueDays)),
			dueStatus(*inv, inv.DaysPastDue(now, dueDays)))
		fmt.Fprintf(out, "Amount:  %s\n", money(inv.Amount))

		// Payments are best effort; the invoice itself was found
		if _, err := appInstance.Payments.FetchAll(ctx); err != nil {
			fmt.Fprintf(out, "\n(payments unavailable: %v)\n", err)
			return nil
		}

		payments := appInstance.Payments.ForInvoice(inv.ID)
		fmt.Fprintln(out)
		if len(payments) == 0 {
			fmt.Fprintln(out, "No payments registered")
		} else {
			fmt.Fprintf(out, "%-12s %-20s %15s\n", "Date", "Receipt", "Amount")
			fmt.Fprintln(out, strings.Repeat("-", 49))
			for _, p := range payments {
				fmt.Fprintf(out, "%-12s %-20s %15s\n",
					domain.FormatDisplay(p.Date),
					truncate(p.Receipt, 20),
					money(p.Amount),
				)
			}
		}
		fmt.Fprintf(out, "\nBalance: %s\n", money(appInstance.Reports.Balance(*inv)))

		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new invoice",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		draft := domain.InvoiceDraft{}
		draft.NIT, _ = cmd.Flags().GetString("nit")
		draft.ClientName, _ = cmd.Flags().GetString("cliente")
		draft.Date, _ = cmd.Flags().GetString("fecha")
		draft.Series, _ = cmd.Flags().GetString("serie")
		draft.Number, _ = cmd.Flags().GetString("numero")
		draft.Amount, _ = cmd.Flags().GetString("monto")

		if draft.Date == "" {
			draft.Date = time.Now().Format(domain.DayLayout)
		}

		in, err := draft.ToInput()
		if err != nil {
			return err
		}

		inv, err := appInstance.Invoices.Create(ctx, in)
		if err != nil {
			return apiFailure("failed to create invoice", err)
		}

		fmt.Fprintf(out, "✓ Invoice created: %s %s\n", inv.Series, inv.Number)
		if inv.ID != "" {
			fmt.Fprintf(out, "  ID:     %s\n", inv.ID)
		}
		fmt.Fprintf(out, "  Client: %s (%s)\n", in.ClientName, in.NIT)
		fmt.Fprintf(out, "  Amount: %s\n", money(in.Amount))

		return nil
	},
}

var invoicesSetDateCmd = &cobra.Command{
	Use:   "set-date [invoice_id] [YYYY-MM-DD]",
	Short: "Change the issue date of an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		out := cmd.OutOrStdout()

		date, err := domain.ParseDay(args[1])
		if err != nil {
			return err
		}

		if _, err := appInstance.Invoices.UpdateDate(ctx, args[0], date); err != nil {
			return apiFailure("failed to update invoice date", err)
		}

		fmt.Fprintf(out, "✓ Invoice %s dated %s\n", args[0], domain.FormatDisplay(date))
		return nil
	},
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesSetDateCmd)

	// List flags
	invoicesListCmd.Flags().String("nit", "", "Filter by NIT (substring)")
	invoicesListCmd.Flags().String("fecha", "", "Filter by issue date (YYYY-MM-DD)")

	// Create flags
	invoicesCreateCmd.Flags().String("nit", "", "Client NIT (required)")
	invoicesCreateCmd.Flags().String("cliente", "", "Client name")
	invoicesCreateCmd.Flags().String("fecha", "", "Issue date YYYY-MM-DD (defaults to today)")
	invoicesCreateCmd.Flags().String("serie", "", "Invoice series")
	invoicesCreateCmd.Flags().String("numero", "", "Invoice number (required)")
	invoicesCreateCmd.Flags().String("monto", "", "Amount (required)")
	invoicesCreateCmd.MarkFlagRequired("nit")
	invoicesCreateCmd.MarkFlagRequired("numero")
	invoicesCreateCmd.MarkFlagRequired("monto")
}
