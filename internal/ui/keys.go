package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ShowLog    key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Back       key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Collection actions
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Open   key.Binding
	Retry  key.Binding

	// List detail
	TogglePurchased key.Binding
	AddItem         key.Binding
	RemoveItem      key.Binding

	// Modals
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Sair"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Ajuda"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Trocar tema"),
		),
		ShowLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Registro"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "Próxima aba"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "Aba anterior"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Voltar"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Subir"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Descer"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Topo"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Fim"),
		),

		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Novo"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Editar"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Excluir"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Abrir lista"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Recarregar"),
		),

		TogglePurchased: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Marcar comprado"),
		),
		AddItem: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Adicionar item"),
		),
		RemoveItem: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Remover item"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirmar"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancelar"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Próximo campo"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Campo anterior"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Edit, k.Delete, k.Open, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Up, k.Down, k.Top, k.Bottom},
		{k.New, k.Edit, k.Delete, k.Open, k.Retry},
		{k.TogglePurchased, k.AddItem, k.RemoveItem, k.Back},
		{k.CycleTheme, k.ShowLog, k.Help, k.Quit},
	}
}

// detailHelp is the footer help shown inside a list.
type detailHelp struct{ keyMap }

func (d detailHelp) ShortHelp() []key.Binding {
	return []key.Binding{d.TogglePurchased, d.AddItem, d.Edit, d.RemoveItem, d.Back, d.Quit}
}
