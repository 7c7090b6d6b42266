package tui

import (
	"context"
	"fmt"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// PaymentsModel lists registered payments with their invoice
type PaymentsModel struct {
	app      *app.App
	payments []domain.Payment
	cursor   int
	loading  bool
	err      string
}

type paymentsDataMsg struct {
	payments []domain.Payment
	err      string
}

// NewPaymentsModel creates a new payments screen model
func NewPaymentsModel(a *app.App) tea.Model {
	return &PaymentsModel{
		app:     a,
		loading: true,
	}
}

func (m *PaymentsModel) Init() tea.Cmd {
	return m.loadPayments()
}

// loadPayments fetches payments, and invoices too when none are loaded yet
// so labels can be resolved
func (m *PaymentsModel) loadPayments() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if len(m.app.Invoices.All()) == 0 {
			_, _ = m.app.Invoices.FetchAll(ctx)
		}
		_, _ = m.app.Payments.FetchAll(ctx)
		return paymentsDataMsg{
			payments: m.app.Payments.Payments(),
			err:      m.app.Payments.Err(),
		}
	}
}

func (m *PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadPayments()

	case paymentsDataMsg:
		m.loading = false
		m.payments = msg.payments
		m.err = msg.err
		if m.cursor >= len(m.payments) {
			m.cursor = max(len(m.payments)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.payments)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			m.app.Payments.ClearError()
			return m, m.loadPayments()
		}
	}

	return m, nil
}

func (m *PaymentsModel) invoiceLabel(id string) string {
	if inv, ok := m.app.Invoices.Find(id); ok {
		return inv.Label()
	}
	if id == "" {
		return "(sin factura)"
	}
	return id
}

func (m *PaymentsModel) View() string {
	sign := m.app.Config.Invoice.CurrencySign

	var s string
	s += titleStyle.Render("Pagos") + "\n\n"

	if m.loading {
		s += subtitleStyle.Render("  Cargando pagos...")
		return s
	}

	if m.err != "" {
		s += errorLine(fmt.Errorf("%s", m.err))
	}

	if len(m.payments) == 0 {
		s += subtitleStyle.Render("  No hay pagos registrados")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %s  %-10s  %s  %14s",
		padRight("Factura", 34), "Fecha", padRight("Boleta", 16), "Monto",
	)) + "\n"

	total := domain.SumPayments(m.payments)
	for i, p := range m.payments {
		line := fmt.Sprintf("  %s  %-10s  %s  %14s",
			padRight(m.invoiceLabel(p.InvoiceID), 34),
			domain.FormatDisplay(p.Date),
			padRight(p.Receipt, 16),
			formatMoney(sign, p.Amount),
		)
		if i == m.cursor {
			s += selectedStyle.Render(line) + "\n"
		} else {
			s += line + "\n"
		}
	}

	s += "\n" + totalStyle.Render(fmt.Sprintf("  Total pagado: %s", formatMoney(sign, total))) + "\n\n"
	s += helpStyle.Render("  j/k: navegar  ctrl+r: recargar  (registre pagos desde Facturas con 'p')")

	return s
}
