package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Navigation
	Invoices key.Binding
	Payments key.Binding
	Reports  key.Binding
	Settings key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Edit    key.Binding
	Pay     key.Binding
	Filter  key.Binding
	Clear   key.Binding
	Refresh key.Binding
	Save    key.Binding
	Next    key.Binding
	Prev    key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "ayuda")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "volver")),
	Invoices: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "facturas")),
	Payments: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "pagos")),
	Reports:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resumen")),
	Settings: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "ajustes")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "seleccionar")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nueva factura")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar fecha")),
	Pay:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "registrar pago")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filtrar")),
	Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "limpiar filtros")),
	Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "recargar")),
	Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "guardar")),
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "siguiente")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "anterior")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "izquierda")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "derecha")),
}
