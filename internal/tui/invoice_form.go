package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const invoiceFormCloseDelay = 1500 * time.Millisecond

// invoice form field indices
const (
	invFieldNIT = iota
	invFieldClient
	invFieldDate
	invFieldSeries
	invFieldNumber
	invFieldAmount
	invFieldCount
)

var invoiceFieldLabels = []string{"NIT:", "Nombre del cliente:", "Fecha (AAAA-MM-DD):", "Serie:", "Número de factura:", "Monto:"}

type invoiceCreatedMsg struct {
	invoice *domain.Invoice
	err     error
}

// InvoiceForm is the modal used to create an invoice
type InvoiceForm struct {
	app        *app.App
	fields     []textinput.Model
	fieldFocus int
	seq        int
	saving     bool
	done       bool // success shown, waiting to close
	err        error
	statusMsg  string
}

// NewInvoiceForm creates an empty invoice form. seq identifies this
// opening of the form for its delayed close.
func NewInvoiceForm(a *app.App, seq int) *InvoiceForm {
	f := &InvoiceForm{app: a, seq: seq}
	f.reset()
	return f
}

func (f *InvoiceForm) reset() {
	f.fields = make([]textinput.Model, invFieldCount)
	placeholders := []string{"1234567-8", "Cliente S.A.", "2024-01-31", "A", "0001", "0.00"}
	limits := []int{20, 100, 10, 10, 20, 16}
	for i := range f.fields {
		f.fields[i] = textinput.New()
		f.fields[i].Placeholder = placeholders[i]
		f.fields[i].CharLimit = limits[i]
		f.fields[i].Width = 40
	}
	f.fieldFocus = invFieldNIT
	f.fields[invFieldNIT].Focus()
}

// Draft returns the raw field values
func (f *InvoiceForm) Draft() domain.InvoiceDraft {
	return domain.InvoiceDraft{
		NIT:        f.fields[invFieldNIT].Value(),
		ClientName: f.fields[invFieldClient].Value(),
		Date:       f.fields[invFieldDate].Value(),
		Series:     f.fields[invFieldSeries].Value(),
		Number:     f.fields[invFieldNumber].Value(),
		Amount:     f.fields[invFieldAmount].Value(),
	}
}

func (f *InvoiceForm) submit() tea.Cmd {
	in, err := f.Draft().ToInput()
	if err != nil {
		f.err = err
		return nil
	}

	f.saving = true
	f.err = nil
	f.statusMsg = ""
	return func() tea.Msg {
		inv, err := f.app.Invoices.Create(context.Background(), in)
		return invoiceCreatedMsg{invoice: inv, err: err}
	}
}

// Update handles keys and the create result
func (f *InvoiceForm) Update(msg tea.Msg) (*InvoiceForm, tea.Cmd) {
	switch msg := msg.(type) {
	case invoiceCreatedMsg:
		f.saving = false
		if msg.err != nil {
			f.err = msg.err
			return f, nil
		}
		f.statusMsg = "Factura creada"
		if msg.invoice != nil && msg.invoice.Number != "" {
			f.statusMsg = fmt.Sprintf("Factura %s %s creada", msg.invoice.Series, msg.invoice.Number)
		}
		f.done = true
		f.reset()
		seq := f.seq
		return f, tea.Tick(invoiceFormCloseDelay, func(time.Time) tea.Msg {
			return formCloseMsg{seq: seq}
		})

	case tea.KeyMsg:
		if f.saving || f.done {
			return f, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Next), msg.String() == "down":
			return f, f.focus((f.fieldFocus + 1) % invFieldCount)

		case key.Matches(msg, DefaultKeyMap.Prev), msg.String() == "up":
			return f, f.focus((f.fieldFocus - 1 + invFieldCount) % invFieldCount)

		case key.Matches(msg, DefaultKeyMap.Save):
			return f, f.submit()

		case key.Matches(msg, DefaultKeyMap.Select):
			if f.fieldFocus == invFieldCount-1 {
				return f, f.submit()
			}
			return f, f.focus(f.fieldFocus + 1)
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	f.fields[f.fieldFocus], cmd = f.fields[f.fieldFocus].Update(msg)
	return f, cmd
}

func (f *InvoiceForm) focus(i int) tea.Cmd {
	f.fields[f.fieldFocus].Blur()
	f.fieldFocus = i
	return f.fields[f.fieldFocus].Focus()
}

func (f *InvoiceForm) View() string {
	var s string
	s += titleStyle.Render("Nueva factura") + "\n\n"

	for i, label := range invoiceFieldLabels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == f.fieldFocus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), f.fields[i].View())
	}

	if f.saving {
		s += subtitleStyle.Render("  Guardando...") + "\n\n"
	}
	if f.statusMsg != "" {
		s += successLine(f.statusMsg)
	}
	if f.err != nil {
		s += errorLine(f.err)
	}

	s += helpStyle.Render("  tab/shift+tab: campos  ctrl+s: guardar  enter: siguiente/guardar  esc: cerrar")

	return boxStyle.Render(s)
}
