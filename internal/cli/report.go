package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the receivables summary",
	Long:  `Show billed, paid and outstanding totals, overdue invoices and a per-client breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if _, err := appInstance.Invoices.FetchAll(ctx); err != nil {
			return apiFailure("failed to load invoices", err)
		}
		if _, err := appInstance.Payments.FetchAll(ctx); err != nil {
			return apiFailure("failed to load payments", err)
		}

		r := appInstance.Reports.Receivables()

		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("Receivables")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("Invoices:     %d\n", r.InvoiceCount)
		fmt.Printf("Billed:       %s\n", money(r.Billed))
		fmt.Printf("Paid:         %s\n", money(r.Paid))
		fmt.Printf("Outstanding:  %s\n", money(r.Outstanding))
		fmt.Printf("Overdue:      %d invoice(s), %s\n", r.OverdueCount, money(r.OverdueAmount))
		if r.Unmatched > 0 {
			fmt.Printf("Unmatched:    %d payment(s) reference unknown invoices\n", r.Unmatched)
		}

		if len(r.ByClient) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Printf("%-12s %-24s %5s %5s %15s %15s\n", "NIT", "Client", "Inv", "Late", "Paid", "Balance")
		fmt.Println(strings.Repeat("-", 81))
		for _, c := range r.ByClient {
			fmt.Printf("%-12s %-24s %5d %5d %15s %15s\n",
				truncate(c.NIT, 12),
				truncate(c.Name, 24),
				c.Invoices,
				c.Overdue,
				money(c.Paid),
				money(c.Balance),
			)
		}

		return nil
	},
}
