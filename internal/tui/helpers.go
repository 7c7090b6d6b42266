package tui

import (
	"fmt"
	"time"

	"github.com/andy/facturas/internal/api"
	"github.com/andy/facturas/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// formatMoney formats money as "Q1,234.56"
func formatMoney(sign string, amount decimal.Decimal) string {
	if sign == "" {
		sign = domain.DefaultCurrencySign
	}
	return domain.FormatMoney(sign, amount)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads to width runes; fmt's %-Ns counts bytes, which breaks
// alignment for accented names.
func padRight(s string, width int) string {
	s = truncateStr(s, width)
	n := len([]rune(s))
	for ; n < width; n++ {
		s += " "
	}
	return s
}

// dueLabel describes the payment status of an invoice relative to now
func dueLabel(inv domain.Invoice, now time.Time, dueDays int) string {
	if !inv.HasDate() {
		return subtitleStyle.Render("sin fecha")
	}
	days := inv.DaysPastDue(now, dueDays)
	switch {
	case days > 0:
		return overdueStyle.Render(fmt.Sprintf("vencida %dd", days))
	case days == 0:
		return dueSoonStyle.Render("vence hoy")
	case days >= -7:
		return dueSoonStyle.Render(fmt.Sprintf("vence en %dd", -days))
	default:
		return fmt.Sprintf("vence en %dd", -days)
	}
}

// describeError adds a login hint when the backend rejected the token
func describeError(err error) error {
	if err != nil && api.IsUnauthorized(err) {
		return fmt.Errorf("%w (ejecute 'facturas login')", err)
	}
	return err
}

func errorLine(err error) string {
	return lipgloss.NewStyle().Foreground(errorColor).
		Render(fmt.Sprintf("  Error: %v", err)) + "\n\n"
}

func successLine(msg string) string {
	return lipgloss.NewStyle().Foreground(successColor).
		Render("  "+msg) + "\n\n"
}
