package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andy/facturas/internal/api"
	"github.com/andy/facturas/internal/domain"
	"github.com/shopspring/decimal"
)

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func money(amount decimal.Decimal) string {
	return domain.FormatMoney(appInstance.Config.Invoice.CurrencySign, amount)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// dueStatus describes how far an invoice is from its due date
func dueStatus(inv domain.Invoice, days int) string {
	if !inv.HasDate() {
		return "-"
	}
	switch {
	case days > 0:
		return fmt.Sprintf("overdue %dd", days)
	case days == 0:
		return "due today"
	default:
		return fmt.Sprintf("in %dd", -days)
	}
}

// apiFailure wraps a backend error, pointing at login when the token was rejected
func apiFailure(action string, err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%s: %w (run 'facturas login' to store a valid token)", action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func idOrDash(id string) string {
	if id == "" {
		return "-"
	}
	return id
}
