package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/facturas/internal/app"
	"github.com/andy/facturas/internal/config"
	"github.com/andy/facturas/internal/repository"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
	settingsModeConfirmClear
)

// settings form field indices
const (
	settingsFieldBaseURL = iota
	settingsFieldNITParam
	settingsFieldDueDays
	settingsFieldCurrency
	settingsFieldCount
)

type settingsSavedMsg struct {
	err error
}

type cacheInfoMsg struct {
	info []repository.SnapshotInfo
	err  error
}

type cacheClearedMsg struct {
	err error
}

// SettingsModel shows and edits the backend and invoice settings
type SettingsModel struct {
	app        *app.App
	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	cacheInfo  []repository.SnapshotInfo
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{
		app:  a,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form or a confirmation is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode != settingsModeView
}

func (m *SettingsModel) Init() tea.Cmd {
	return m.loadCacheInfo()
}

func (m *SettingsModel) loadCacheInfo() tea.Cmd {
	return func() tea.Msg {
		info, err := m.app.CacheInfo(context.Background())
		return cacheInfoMsg{info: info, err: err}
	}
}

func (m *SettingsModel) clearCache() tea.Cmd {
	return func() tea.Msg {
		return cacheClearedMsg{err: m.app.ClearCache(context.Background())}
	}
}

func (m *SettingsModel) initForm() {
	m.fields = make([]textinput.Model, settingsFieldCount)
	cfg := m.app.Config

	m.fields[settingsFieldBaseURL] = textinput.New()
	m.fields[settingsFieldBaseURL].Placeholder = config.DefaultBaseURL
	m.fields[settingsFieldBaseURL].CharLimit = 256
	m.fields[settingsFieldBaseURL].Width = 60
	m.fields[settingsFieldBaseURL].SetValue(cfg.API.BaseURL)

	m.fields[settingsFieldNITParam] = textinput.New()
	m.fields[settingsFieldNITParam].Placeholder = "NIT"
	m.fields[settingsFieldNITParam].CharLimit = 40
	m.fields[settingsFieldNITParam].Width = 20
	m.fields[settingsFieldNITParam].SetValue(cfg.API.NITParam)

	m.fields[settingsFieldDueDays] = textinput.New()
	m.fields[settingsFieldDueDays].Placeholder = "30"
	m.fields[settingsFieldDueDays].CharLimit = 5
	m.fields[settingsFieldDueDays].Width = 10
	m.fields[settingsFieldDueDays].SetValue(strconv.Itoa(cfg.Invoice.DueDays))

	m.fields[settingsFieldCurrency] = textinput.New()
	m.fields[settingsFieldCurrency].Placeholder = "Q"
	m.fields[settingsFieldCurrency].CharLimit = 5
	m.fields[settingsFieldCurrency].Width = 10
	m.fields[settingsFieldCurrency].SetValue(cfg.Invoice.CurrencySign)

	m.fieldFocus = settingsFieldBaseURL
	m.fields[settingsFieldBaseURL].Focus()
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	return func() tea.Msg {
		baseURL := strings.TrimSpace(m.fields[settingsFieldBaseURL].Value())
		nitParam := strings.TrimSpace(m.fields[settingsFieldNITParam].Value())
		dueDaysStr := strings.TrimSpace(m.fields[settingsFieldDueDays].Value())
		currency := strings.TrimSpace(m.fields[settingsFieldCurrency].Value())

		dueDays, err := strconv.Atoi(dueDaysStr)
		if err != nil || dueDays <= 0 {
			return settingsSavedMsg{err: fmt.Errorf("los días de crédito deben ser un número positivo")}
		}

		err = m.app.UpdateConfig(func(cfg *config.Config) {
			cfg.API.BaseURL = baseURL
			cfg.API.NITParam = nitParam
			cfg.Invoice.DueDays = dueDays
			cfg.Invoice.CurrencySign = currency
		})
		if err != nil {
			return settingsSavedMsg{err: fmt.Errorf("no se pudo guardar la configuración: %w", err)}
		}

		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.loadCacheInfo()

	case cacheInfoMsg:
		m.cacheInfo = msg.info
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case cacheClearedMsg:
		m.mode = settingsModeView
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Caché local borrada"
		return m, m.loadCacheInfo()
	}

	switch m.mode {
	case settingsModeEdit:
		return m.updateForm(msg)
	case settingsModeConfirmClear:
		if msg, ok := msg.(tea.KeyMsg); ok {
			if msg.String() == "y" || msg.String() == "s" {
				return m, m.clearCache()
			}
			m.mode = settingsModeView
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "enter":
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		case "x":
			m.mode = settingsModeConfirmClear
			m.statusMsg = ""
			return m, nil
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.statusMsg = "Ajustes guardados"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	if m.mode == settingsModeEdit {
		return m.viewForm()
	}
	return m.viewSettings()
}

func (m *SettingsModel) viewSettings() string {
	var s string
	s += titleStyle.Render("Ajustes") + "\n\n"

	if m.statusMsg != "" {
		s += successLine(m.statusMsg)
	}
	if m.err != nil {
		s += errorLine(m.err)
	}

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)

	s += subtitleStyle.Render("  Servidor") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("URL base:"), valueStyle.Render(cfg.API.BaseURL))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Parámetro NIT:"), valueStyle.Render(cfg.API.NITParam))
	s += fmt.Sprintf("  %s %s\n\n", labelStyle.Render("Tiempo de espera:"), valueStyle.Render(cfg.API.Timeout.String()))

	s += subtitleStyle.Render("  Facturas") + "\n\n"
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Días de crédito:"), valueStyle.Render(strconv.Itoa(cfg.Invoice.DueDays)))
	s += fmt.Sprintf("  %s %s\n\n", labelStyle.Render("Moneda:"), valueStyle.Render(cfg.Invoice.CurrencySign))

	s += subtitleStyle.Render("  Caché local") + "\n\n"
	if m.app.Snapshots == nil {
		s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Estado:"), subtitleStyle.Render("desactivada"))
	} else {
		s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Archivo:"), valueStyle.Render(cfg.Cache.Path))
		if len(m.cacheInfo) == 0 {
			s += fmt.Sprintf("  %s %s\n", labelStyle.Render("Contenido:"), subtitleStyle.Render("vacía"))
		}
		for _, info := range m.cacheInfo {
			s += fmt.Sprintf("  %s %d (%s)\n",
				labelStyle.Render(info.Kind+":"), info.Count, info.SavedAt.Local().Format("2/1/2006 15:04"))
		}
	}

	if m.mode == settingsModeConfirmClear {
		s += "\n" + dueSoonStyle.Render("  ¿Borrar la caché local? (s/n)")
	}

	s += "\n\n" + helpStyle.Render("  enter: editar ajustes  x: borrar caché")
	s += "\n" + subtitleStyle.Render("  Los cambios de servidor se aplican al reiniciar")

	return s
}

func (m *SettingsModel) viewForm() string {
	var s string
	s += titleStyle.Render("Editar ajustes") + "\n\n"

	labels := []string{"URL base:", "Parámetro NIT:", "Días de crédito:", "Moneda:"}
	for i, label := range labels {
		indicator := "  "
		if i == m.fieldFocus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == m.fieldFocus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), m.fields[i].View())
	}

	if m.err != nil {
		s += errorLine(m.err)
	}

	s += helpStyle.Render("  tab/shift+tab: campos  ctrl+s: guardar  enter: siguiente/guardar  esc: cancelar")

	return s
}
