package tui

import (
	"fmt"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenInvoices Screen = iota
	ScreenPayments
	ScreenReports
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenInvoices:
		return "Facturas"
	case ScreenPayments:
		return "Pagos"
	case ScreenReports:
		return "Resumen"
	case ScreenSettings:
		return "Ajustes"
	default:
		return "Desconocido"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	invoices tea.Model
	payments tea.Model
	reports  tea.Model
	settings tea.Model

	err error
}

// NewModel creates the root model with the invoice list as the start screen
func NewModel(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenInvoices,
		invoices:      NewInvoicesModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	if m.invoices != nil {
		return m.invoices.Init()
	}
	return nil
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	switch screen {
	case ScreenInvoices:
		if m.invoices == nil {
			m.invoices = NewInvoicesModel(m.app)
			return m.invoices.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenPayments:
		if m.payments == nil {
			m.payments = NewPaymentsModel(m.app)
			return m.payments.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenReports:
		if m.reports == nil {
			m.reports = NewReportsModel(m.app)
			return m.reports.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.app)
			return m.settings.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (I, G, R, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) activeScreen() tea.Model {
	switch m.currentScreen {
	case ScreenInvoices:
		return m.invoices
	case ScreenPayments:
		return m.payments
	case ScreenReports:
		return m.reports
	case ScreenSettings:
		return m.settings
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.activeScreen().(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	m.err = nil
	return m.initScreen(screen)
}

// openInvoicesFor shows the invoice list filtered by nit. The filter
// replaces the usual revisit refresh.
func (m *Model) openInvoicesFor(nit string) tea.Cmd {
	m.currentScreen = ScreenInvoices
	m.err = nil
	if m.invoices == nil {
		m.invoices = NewInvoicesModel(m.app)
	}
	var cmd tea.Cmd
	m.invoices, cmd = m.invoices.Update(filterInvoicesMsg{nit: nit})
	return cmd
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)

			case key.Matches(msg, DefaultKeyMap.Payments):
				return m, m.switchTo(ScreenPayments)

			case key.Matches(msg, DefaultKeyMap.Reports):
				return m, m.switchTo(ScreenReports)

			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case SwitchScreenMsg:
		if msg.Screen == ScreenInvoices && msg.NIT != "" {
			return m, m.openInvoicesFor(msg.NIT)
		}
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	switch m.currentScreen {
	case ScreenInvoices:
		if m.invoices != nil {
			m.invoices, cmd = m.invoices.Update(msg)
		}
	case ScreenPayments:
		if m.payments != nil {
			m.payments, cmd = m.payments.Update(msg)
		}
	case ScreenReports:
		if m.reports != nil {
			m.reports, cmd = m.reports.Update(msg)
		}
	case ScreenSettings:
		if m.settings != nil {
			m.settings, cmd = m.settings.Update(msg)
		}
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Cargando..."
	}

	header := headerStyle.Render(fmt.Sprintf("facturas - %s", m.currentScreen.String()))
	footer := footerStyle.Render("[I] Facturas  [G] Pagos  [R] Resumen  [,] Ajustes  [Q] Salir")

	content := "Cargando..."
	if screen := m.activeScreen(); screen != nil {
		content = screen.View()
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}
