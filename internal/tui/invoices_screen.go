package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/andy/facturas/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// invoiceViewMode represents the current view mode for the invoices screen
type invoiceViewMode int

const (
	invoiceViewList invoiceViewMode = iota
	invoiceViewFilter
	invoiceViewEditDate
	invoiceViewNewInvoice
	invoiceViewNewPayment
)

// filter field indices
const (
	filterFieldNIT = iota
	filterFieldDate
	filterFieldCount
)

// ErrNoInvoiceID is shown when an invoice without a backend id is edited
var ErrNoInvoiceID = &domain.ValidationError{Message: "La factura no tiene identificador en el servidor"}

// InvoicesModel lists invoices with filters, inline date editing and the
// creation forms
type InvoicesModel struct {
	app    *app.App
	state  service.InvoiceState
	cursor int
	mode   invoiceViewMode
	now    func() time.Time

	loading   bool
	err       error
	statusMsg string

	// Filter inputs
	filters     []textinput.Model
	filterFocus int

	// Inline date edit
	editKey   string
	dateInput textinput.Model

	// Forms
	invoiceForm *InvoiceForm
	paymentForm *PaymentForm
	formSeq     int
}

type invoicesDataMsg struct {
	state service.InvoiceState
	err   error
}

type invoiceDateSavedMsg struct {
	invoice *domain.Invoice
	err     error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	m := &InvoicesModel{
		app:     a,
		loading: true,
		now:     time.Now,
	}

	m.filters = make([]textinput.Model, filterFieldCount)
	m.filters[filterFieldNIT] = textinput.New()
	m.filters[filterFieldNIT].Placeholder = "NIT"
	m.filters[filterFieldNIT].CharLimit = 20
	m.filters[filterFieldNIT].Width = 20
	m.filters[filterFieldDate] = textinput.New()
	m.filters[filterFieldDate].Placeholder = "AAAA-MM-DD"
	m.filters[filterFieldDate].CharLimit = 10
	m.filters[filterFieldDate].Width = 12

	m.dateInput = textinput.New()
	m.dateInput.Placeholder = "AAAA-MM-DD"
	m.dateInput.CharLimit = 10
	m.dateInput.Width = 12

	return m
}

// IsCapturingInput returns true while a filter, date edit or form is active
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode != invoiceViewList
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadInvoices()
}

func (m *InvoicesModel) loadInvoices() tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Invoices.FetchAll(context.Background())
		return invoicesDataMsg{state: m.app.Invoices.State(), err: err}
	}
}

// applyFilters fetches with the current filter inputs; empty inputs fetch
// everything
func (m *InvoicesModel) applyFilters() tea.Cmd {
	filter := domain.Filter{
		NIT:  m.filters[filterFieldNIT].Value(),
		Date: m.filters[filterFieldDate].Value(),
	}
	return func() tea.Msg {
		_, err := m.app.Invoices.FetchFiltered(context.Background(), filter)
		return invoicesDataMsg{state: m.app.Invoices.State(), err: err}
	}
}

func (m *InvoicesModel) clearFilters() tea.Cmd {
	for i := range m.filters {
		m.filters[i].SetValue("")
	}
	return func() tea.Msg {
		_, err := m.app.Invoices.ClearFilters(context.Background())
		return invoicesDataMsg{state: m.app.Invoices.State(), err: err}
	}
}

func (m *InvoicesModel) saveDate(id string, date time.Time) tea.Cmd {
	return func() tea.Msg {
		inv, err := m.app.Invoices.UpdateDate(context.Background(), id, date)
		return invoiceDateSavedMsg{invoice: inv, err: err}
	}
}

// registerPayment is the persistence callback handed to the payment form
func (m *InvoicesModel) registerPayment(in domain.PaymentInput) tea.Cmd {
	return func() tea.Msg {
		p, err := m.app.Payments.Create(context.Background(), in)
		return paymentSavedMsg{payment: p, err: err}
	}
}

func (m *InvoicesModel) selected() (domain.Invoice, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Invoices) {
		return domain.Invoice{}, false
	}
	return m.state.Invoices[m.cursor], true
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		if m.mode == invoiceViewNewInvoice || m.mode == invoiceViewNewPayment {
			return m, nil
		}
		m.loading = true
		return m, m.applyFilters()

	case invoicesDataMsg:
		m.loading = false
		m.state = msg.state
		if m.cursor >= len(m.state.Invoices) {
			m.cursor = max(len(m.state.Invoices)-1, 0)
		}
		return m, reportError(msg.err)

	case filterInvoicesMsg:
		m.filters[filterFieldNIT].SetValue(msg.nit)
		m.filters[filterFieldDate].SetValue("")
		m.mode = invoiceViewList
		m.cursor = 0
		m.statusMsg = ""
		m.loading = true
		return m, m.applyFilters()

	case invoiceDateSavedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = invoiceViewList
		m.editKey = ""
		m.dateInput.Blur()
		m.state = m.app.Invoices.State()
		if msg.invoice != nil {
			m.statusMsg = fmt.Sprintf("Fecha actualizada: %s", domain.FormatDisplay(msg.invoice.Date))
		}
		return m, nil

	case formCloseMsg:
		if msg.seq != m.formSeq {
			return m, nil
		}
		return m, m.closeForm()

	case invoiceCreatedMsg:
		if m.invoiceForm != nil {
			var cmd tea.Cmd
			m.invoiceForm, cmd = m.invoiceForm.Update(msg)
			return m, cmd
		}
		return m, nil

	case paymentSavedMsg:
		if m.paymentForm != nil {
			var cmd tea.Cmd
			m.paymentForm, cmd = m.paymentForm.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case invoiceViewList:
			if m.loading {
				return m, nil
			}
			return m.updateList(msg)
		case invoiceViewFilter:
			return m.updateFilter(msg)
		case invoiceViewEditDate:
			return m.updateEditDate(msg)
		case invoiceViewNewInvoice, invoiceViewNewPayment:
			if key.Matches(msg, DefaultKeyMap.Back) {
				return m, m.closeForm()
			}
		}
	}

	// Forward everything else (cursor blink, keys) to the active input
	var cmd tea.Cmd
	switch m.mode {
	case invoiceViewFilter:
		m.filters[m.filterFocus], cmd = m.filters[m.filterFocus].Update(msg)
	case invoiceViewEditDate:
		m.dateInput, cmd = m.dateInput.Update(msg)
	case invoiceViewNewInvoice:
		m.invoiceForm, cmd = m.invoiceForm.Update(msg)
	case invoiceViewNewPayment:
		m.paymentForm, cmd = m.paymentForm.Update(msg)
	}
	return m, cmd
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.state.Invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Edit), key.Matches(msg, DefaultKeyMap.Select):
		inv, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = invoiceViewEditDate
		m.editKey = inv.Key()
		m.statusMsg = ""
		m.dateInput.SetValue("")
		if inv.HasDate() {
			m.dateInput.SetValue(domain.DayString(inv.Date))
		}
		m.dateInput.CursorEnd()
		return m, m.dateInput.Focus()
	case key.Matches(msg, DefaultKeyMap.Filter):
		m.mode = invoiceViewFilter
		m.statusMsg = ""
		m.filterFocus = filterFieldNIT
		return m, m.filters[m.filterFocus].Focus()
	case key.Matches(msg, DefaultKeyMap.Clear):
		m.loading = true
		m.statusMsg = ""
		return m, m.clearFilters()
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.loading = true
		return m, m.applyFilters()
	case key.Matches(msg, DefaultKeyMap.New):
		m.formSeq++
		m.invoiceForm = NewInvoiceForm(m.app, m.formSeq)
		m.mode = invoiceViewNewInvoice
		m.statusMsg = ""
		return m, textinput.Blink
	case key.Matches(msg, DefaultKeyMap.Pay):
		m.formSeq++
		invoices := m.app.Invoices.All()
		m.paymentForm = NewPaymentForm(invoices, m.registerPayment, m.app.Config.Invoice.CurrencySign, m.formSeq)
		m.mode = invoiceViewNewPayment
		m.statusMsg = ""
		return m, nil
	}

	return m, nil
}

func (m *InvoicesModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.filters[m.filterFocus].Blur()
		m.mode = invoiceViewList
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Next), key.Matches(msg, DefaultKeyMap.Prev):
		m.filters[m.filterFocus].Blur()
		m.filterFocus = (m.filterFocus + 1) % filterFieldCount
		return m, m.filters[m.filterFocus].Focus()
	case key.Matches(msg, DefaultKeyMap.Select):
		m.filters[m.filterFocus].Blur()
		m.mode = invoiceViewList
		m.loading = true
		m.cursor = 0
		return m, m.applyFilters()
	}

	var cmd tea.Cmd
	m.filters[m.filterFocus], cmd = m.filters[m.filterFocus].Update(msg)
	return m, cmd
}

func (m *InvoicesModel) updateEditDate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.mode = invoiceViewList
		m.editKey = ""
		m.err = nil
		m.dateInput.Blur()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Select):
		date, err := domain.ParseDay(m.dateInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		inv, ok := m.editing()
		if !ok {
			m.mode = invoiceViewList
			m.editKey = ""
			return m, nil
		}
		if inv.ID == "" {
			m.err = ErrNoInvoiceID
			return m, nil
		}
		m.err = nil
		m.loading = true
		return m, m.saveDate(inv.ID, date)
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) editing() (domain.Invoice, bool) {
	for _, inv := range m.state.Invoices {
		if inv.Key() == m.editKey {
			return inv, true
		}
	}
	return domain.Invoice{}, false
}

// closeForm drops whichever form is open and refetches the list
func (m *InvoicesModel) closeForm() tea.Cmd {
	m.invoiceForm = nil
	m.paymentForm = nil
	m.mode = invoiceViewList
	m.loading = true
	return m.applyFilters()
}

func (m *InvoicesModel) View() string {
	switch m.mode {
	case invoiceViewNewInvoice:
		return m.invoiceForm.View()
	case invoiceViewNewPayment:
		return m.paymentForm.View()
	default:
		return m.viewList()
	}
}

func (m *InvoicesModel) viewList() string {
	sign := m.app.Config.Invoice.CurrencySign
	dueDays := m.app.Config.Invoice.DueDays

	var s string
	s += titleStyle.Render("Facturas") + "\n\n"

	s += m.viewFilters() + "\n"

	if m.statusMsg != "" {
		s += successLine(m.statusMsg)
	}

	if m.err != nil {
		s += errorLine(m.err)
	}

	if m.state.Fallback {
		s += fallbackStyle.Render("  Servidor no disponible: resultados filtrados localmente") + "\n\n"
	}

	if m.loading {
		s += subtitleStyle.Render("  Cargando facturas...")
		return s
	}

	if len(m.state.Invoices) == 0 {
		s += subtitleStyle.Render("  No se encontraron facturas")
		s += "\n\n" + helpStyle.Render("  n: nueva factura  /: filtrar  x: limpiar filtros")
		return s
	}

	s += subtitleStyle.Render(fmt.Sprintf(
		"  %s  %s  %-10s  %s  %s  %14s  %s",
		padRight("NIT", 12), padRight("Nombre", 22), "Fecha", padRight("Serie", 6), padRight("Número", 10), "Monto", "Estado",
	)) + "\n"

	now := m.now()
	for i, inv := range m.state.Invoices {
		date := domain.FormatDisplay(inv.Date)
		if m.mode == invoiceViewEditDate && inv.Key() == m.editKey {
			date = editingStyle.Render(m.dateInput.View())
		} else {
			date = fmt.Sprintf("%-10s", date)
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s  %14s  ",
			padRight(inv.NIT, 12),
			padRight(inv.ClientName, 22),
			date,
			padRight(inv.Series, 6),
			padRight(inv.Number, 10),
			formatMoney(sign, inv.Amount),
		)

		if i == m.cursor && m.mode != invoiceViewEditDate {
			s += selectedStyle.Render(line) + dueLabel(inv, now, dueDays) + "\n"
		} else {
			s += line + dueLabel(inv, now, dueDays) + "\n"
		}
	}

	s += "\n" + totalStyle.Render(fmt.Sprintf("  Total: %s", formatMoney(sign, m.state.Total)))
	if !m.state.Filter.IsEmpty() {
		s += subtitleStyle.Render(fmt.Sprintf("  (%d de %d facturas)", len(m.state.Invoices), m.state.FullCount))
	}
	s += "\n\n"

	switch m.mode {
	case invoiceViewEditDate:
		s += helpStyle.Render("  enter: guardar fecha  esc: cancelar")
	default:
		s += helpStyle.Render("  j/k: navegar  e/enter: editar fecha  n: nueva factura  p: registrar pago  /: filtrar  x: limpiar")
	}

	return s
}

func (m *InvoicesModel) viewFilters() string {
	labels := []string{"NIT", "Fecha"}
	var s string
	for i, label := range labels {
		style := subtitleStyle
		if m.mode == invoiceViewFilter && i == m.filterFocus {
			style = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("  %s %s", style.Render(label+":"), m.filters[i].View())
	}
	s += "\n"
	if m.mode == invoiceViewFilter {
		s += helpStyle.Render("  tab: cambiar campo  enter: filtrar  esc: cancelar") + "\n"
	}
	return s
}
