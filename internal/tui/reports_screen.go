package tui

import (
	"context"
	"fmt"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ReportsModel displays the receivables summary and per-client balances
type ReportsModel struct {
	app    *app.App
	report *service.Receivables
	cursor int

	loading bool
}

type reportsDataMsg struct {
	report *service.Receivables
	err    error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:     a,
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		if _, err := m.app.Invoices.FetchAll(ctx); err != nil {
			return reportsDataMsg{err: err}
		}
		// Payments are optional; the summary still shows billed totals
		_, _ = m.app.Payments.FetchAll(ctx)

		return reportsDataMsg{report: m.app.Reports.Receivables()}
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case reportsDataMsg:
		m.loading = false
		if msg.err == nil {
			m.report = msg.report
			if m.cursor >= len(m.report.ByClient) {
				m.cursor = 0
			}
		}
		return m, reportError(msg.err)

	case tea.KeyMsg:
		if m.loading || m.report == nil {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.report.ByClient)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.loadData()
		case key.Matches(msg, DefaultKeyMap.Select):
			if m.cursor >= len(m.report.ByClient) || m.report.ByClient[m.cursor].NIT == "" {
				return m, nil
			}
			nit := m.report.ByClient[m.cursor].NIT
			return m, func() tea.Msg {
				return SwitchScreenMsg{Screen: ScreenInvoices, NIT: nit}
			}
		}
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return titleStyle.Render("Resumen") + "\n\n  Cargando..."
	}

	r := m.report
	if r == nil {
		return titleStyle.Render("Resumen") + "\n\n" + subtitleStyle.Render("  Sin datos")
	}
	sign := m.app.Config.Invoice.CurrencySign

	var s string
	s += titleStyle.Render("Resumen") + "\n"
	s += subtitleStyle.Render(fmt.Sprintf("  Al %s  |  %d facturas  |  %d pagos",
		r.AsOf.Format("2/1/2006 15:04"), r.InvoiceCount, r.PaymentCount)) + "\n\n"

	s += lipgloss.NewStyle().Bold(true).Render("  Cuentas por cobrar") + "\n"
	s += fmt.Sprintf("    Facturado:   %s\n", formatMoney(sign, r.Billed))
	s += fmt.Sprintf("    Pagado:      %s\n", formatMoney(sign, r.Paid))
	s += fmt.Sprintf("    Pendiente:   %s\n", totalStyle.Render(formatMoney(sign, r.Outstanding)))
	s += fmt.Sprintf("    Cobrado:     %s\n", collectedPct(r.Billed, r.Paid))

	overdue := fmt.Sprintf("%d (%s)", r.OverdueCount, formatMoney(sign, r.OverdueAmount))
	if r.OverdueCount > 0 {
		overdue = overdueStyle.Render(overdue)
	}
	s += fmt.Sprintf("    Vencidas:    %s\n", overdue)

	if r.Unmatched > 0 {
		s += dueSoonStyle.Render(fmt.Sprintf("    %d pagos sin factura cargada", r.Unmatched)) + "\n"
	}
	s += "\n"

	s += m.renderClients(sign)

	s += "\n" + helpStyle.Render("  j/k: navegar  enter: facturas del cliente  ctrl+r: recargar")

	return s
}

func (m *ReportsModel) renderClients(sign string) string {
	s := lipgloss.NewStyle().Bold(true).Render("  Saldo por cliente") + "\n"

	if len(m.report.ByClient) == 0 {
		return s + subtitleStyle.Render("    No se encontraron facturas") + "\n"
	}

	s += subtitleStyle.Render(fmt.Sprintf("    %s  %s  %5s  %14s  %14s  %14s",
		padRight("NIT", 12), padRight("Cliente", 22), "Fact.", "Facturado", "Pagado", "Saldo")) + "\n"

	for i, cb := range m.report.ByClient {
		line := fmt.Sprintf("    %s  %s  %5d  %14s  %14s  %14s",
			padRight(cb.NIT, 12),
			padRight(cb.Name, 22),
			cb.Invoices,
			formatMoney(sign, cb.Billed),
			formatMoney(sign, cb.Paid),
			formatMoney(sign, cb.Balance),
		)
		switch {
		case i == m.cursor:
			s += selectedStyle.Render(line) + "\n"
		case cb.Overdue > 0:
			s += overdueStyle.Render(line) + "\n"
		default:
			s += line + "\n"
		}
	}
	return s
}

// collectedPct renders paid/billed as a colored percentage
func collectedPct(billed, paid decimal.Decimal) string {
	if !billed.IsPositive() {
		return "-"
	}
	pct := paid.Div(billed).Mul(decimal.NewFromInt(100))
	text := pct.StringFixed(0) + "%"
	style := lipgloss.NewStyle()
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(80)):
		style = style.Foreground(successColor)
	case pct.GreaterThanOrEqual(decimal.NewFromInt(50)):
		style = style.Foreground(warningColor)
	default:
		style = style.Foreground(errorColor)
	}
	return style.Render(text)
}
