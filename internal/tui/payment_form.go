package tui

import (
	"fmt"
	"time"

	"github.com/andy/facturas/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const paymentFormCloseDelay = time.Second

// payment form field indices; the invoice selector is not a text input
const (
	payFieldInvoice = iota
	payFieldDate
	payFieldReceipt
	payFieldAmount
	payFieldCount
)

// submitPaymentFunc persists a validated payment and reports back with a
// paymentSavedMsg
type submitPaymentFunc func(in domain.PaymentInput) tea.Cmd

type paymentSavedMsg struct {
	payment *domain.Payment
	err     error
}

// PaymentForm is the modal used to register a payment against an invoice
type PaymentForm struct {
	invoices   []domain.Invoice
	selected   int
	inputs     map[int]*textinput.Model
	fieldFocus int
	onSubmit   submitPaymentFunc
	sign       string
	seq        int
	saving     bool
	done       bool
	err        error
	statusMsg  string
}

// NewPaymentForm creates a payment form over the given invoices. The first
// invoice is preselected.
func NewPaymentForm(invoices []domain.Invoice, onSubmit submitPaymentFunc, sign string, seq int) *PaymentForm {
	f := &PaymentForm{
		invoices: invoices,
		onSubmit: onSubmit,
		sign:     sign,
		seq:      seq,
	}

	date := textinput.New()
	date.Placeholder = "AAAA-MM-DD"
	date.CharLimit = 10
	date.Width = 20
	date.SetValue(domain.DayString(time.Now()))

	receipt := textinput.New()
	receipt.Placeholder = "Número de boleta"
	receipt.CharLimit = 40
	receipt.Width = 40

	amount := textinput.New()
	amount.Placeholder = "0.00"
	amount.CharLimit = 16
	amount.Width = 20

	f.inputs = map[int]*textinput.Model{
		payFieldDate:    &date,
		payFieldReceipt: &receipt,
		payFieldAmount:  &amount,
	}
	f.fieldFocus = payFieldInvoice
	return f
}

// Draft returns the raw field values with the selected invoice id
func (f *PaymentForm) Draft() domain.PaymentDraft {
	d := domain.PaymentDraft{
		Date:    f.inputs[payFieldDate].Value(),
		Receipt: f.inputs[payFieldReceipt].Value(),
		Amount:  f.inputs[payFieldAmount].Value(),
	}
	if inv, ok := f.selectedInvoice(); ok {
		d.InvoiceID = inv.ID
	}
	return d
}

func (f *PaymentForm) selectedInvoice() (domain.Invoice, bool) {
	if f.selected < 0 || f.selected >= len(f.invoices) {
		return domain.Invoice{}, false
	}
	return f.invoices[f.selected], true
}

// submit validates locally; nothing is sent unless the draft is valid
func (f *PaymentForm) submit() tea.Cmd {
	in, err := f.Draft().ToInput()
	if err != nil {
		f.err = err
		return nil
	}
	f.saving = true
	f.err = nil
	return f.onSubmit(in)
}

func (f *PaymentForm) Update(msg tea.Msg) (*PaymentForm, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentSavedMsg:
		f.saving = false
		if msg.err != nil {
			f.err = msg.err
			return f, nil
		}
		f.statusMsg = "Pago registrado"
		f.done = true
		seq := f.seq
		return f, tea.Tick(paymentFormCloseDelay, func(time.Time) tea.Msg {
			return formCloseMsg{seq: seq}
		})

	case tea.KeyMsg:
		if f.saving || f.done {
			return f, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Next), msg.String() == "down":
			return f, f.focus((f.fieldFocus + 1) % payFieldCount)

		case key.Matches(msg, DefaultKeyMap.Prev), msg.String() == "up":
			return f, f.focus((f.fieldFocus - 1 + payFieldCount) % payFieldCount)

		case key.Matches(msg, DefaultKeyMap.Save):
			return f, f.submit()

		case key.Matches(msg, DefaultKeyMap.Select):
			if f.fieldFocus == payFieldCount-1 {
				return f, f.submit()
			}
			return f, f.focus(f.fieldFocus + 1)
		}

		if f.fieldFocus == payFieldInvoice {
			switch {
			case key.Matches(msg, DefaultKeyMap.Left):
				if f.selected > 0 {
					f.selected--
				}
			case key.Matches(msg, DefaultKeyMap.Right):
				if f.selected < len(f.invoices)-1 {
					f.selected++
				}
			}
			return f, nil
		}
	}

	input, ok := f.inputs[f.fieldFocus]
	if !ok {
		return f, nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return f, cmd
}

func (f *PaymentForm) focus(i int) tea.Cmd {
	if input, ok := f.inputs[f.fieldFocus]; ok {
		input.Blur()
	}
	f.fieldFocus = i
	if input, ok := f.inputs[f.fieldFocus]; ok {
		return input.Focus()
	}
	return nil
}

func (f *PaymentForm) View() string {
	var s string
	s += titleStyle.Render("Registrar pago") + "\n\n"

	label := func(i int, text string) string {
		if i == f.fieldFocus {
			return "> " + lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(text)
		}
		return "  " + subtitleStyle.Render(text)
	}

	s += label(payFieldInvoice, "Factura:") + "\n"
	if inv, ok := f.selectedInvoice(); ok {
		s += fmt.Sprintf("  ‹ %s  %s ›  %s\n\n",
			inv.Label(),
			formatMoney(f.sign, inv.Amount),
			subtitleStyle.Render(fmt.Sprintf("(%d/%d)", f.selected+1, len(f.invoices))),
		)
	} else {
		s += subtitleStyle.Render("  No hay facturas cargadas") + "\n\n"
	}

	s += label(payFieldDate, "Fecha de pago:") + "\n  " + f.inputs[payFieldDate].View() + "\n\n"
	s += label(payFieldReceipt, "Boleta:") + "\n  " + f.inputs[payFieldReceipt].View() + "\n\n"
	s += label(payFieldAmount, "Monto:") + "\n  " + f.inputs[payFieldAmount].View() + "\n\n"

	if f.saving {
		s += subtitleStyle.Render("  Guardando...") + "\n\n"
	}
	if f.statusMsg != "" {
		s += successLine(f.statusMsg)
	}
	if f.err != nil {
		s += errorLine(f.err)
	}

	s += helpStyle.Render("  tab/shift+tab: campos  h/l: cambiar factura  ctrl+s: guardar  esc: cerrar")

	return boxStyle.Render(s)
}
