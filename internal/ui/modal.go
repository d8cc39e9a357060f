package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// confirmModal asks a yes/no question before a destructive operation.
type confirmModal struct {
	title     string
	message   string
	onConfirm tea.Cmd
}

func newConfirmModal(title, message string, onConfirm tea.Cmd) *confirmModal {
	return &confirmModal{title: title, message: message, onConfirm: onConfirm}
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case km.String() == "y" || km.String() == "s" || key.Matches(km, keys.Confirm):
		return c, c.onConfirm, true
	case km.String() == "n" || key.Matches(km, keys.Cancel):
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render(c.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(c.message))
	b.WriteString("\n\n")
	b.WriteString(styles.MutedText.Render("s/enter confirma · n/esc cancela"))
	return placeModal(theme, width, height, b.String())
}

// placeModal centers content in a bordered box over the screen.
func placeModal(theme Theme, width, height int, content string) string {
	box := theme.Styles().Modal.Width(ModalWidth).Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
