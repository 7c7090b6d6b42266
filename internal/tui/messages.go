package tui

import tea "github.com/charmbracelet/bubbletea"

// SwitchScreenMsg requests a screen change. NIT, when set, opens the
// invoice list filtered to that client.
type SwitchScreenMsg struct {
	Screen Screen
	NIT    string
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information shown under the active screen.
// A nil Err clears it.
type ErrorMsg struct {
	Err error
}

// filterInvoicesMsg replaces the invoice list filter with a NIT
type filterInvoicesMsg struct {
	nit string
}

// reportError hands a load result to the root model
func reportError(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: describeError(err)} }
}

// formCloseMsg closes a form after its success message has been shown.
// seq guards against a stale close hitting a form opened later.
type formCloseMsg struct {
	seq int
}
