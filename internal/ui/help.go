package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navegação",
			items: []helpItem{
				{"tab/l", "Próxima aba"},
				{"shift+tab/h", "Aba anterior"},
				{"1/2/3", "Categorias/Produtos/Listas"},
				{"j/k", "Descer/subir"},
				{"g/G", "Topo/fim"},
				{"esc", "Voltar às abas"},
			},
		},
		{
			title: "Cadastros",
			items: []helpItem{
				{"n", "Novo"},
				{"e", "Editar"},
				{"d", "Excluir"},
				{"enter", "Abrir lista"},
				{"r", "Recarregar"},
			},
		},
		{
			title: "Lista",
			items: []helpItem{
				{"space", "Marcar comprado"},
				{"a", "Adicionar item"},
				{"e", "Editar item"},
				{"x", "Remover item"},
			},
		},
		{
			title: "Geral",
			items: []helpItem{
				{"T", "Trocar tema"},
				{"L", "Registro"},
				{"?", "Ajuda"},
				{"q/ctrl+c", "Sair"},
			},
		},
	}

	var b strings.Builder

	title := styles.Text.Bold(true).Render("Atalhos")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(14)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	// Build the modal
	content := b.String()

	// Calculate modal dimensions
	modalWidth := 44

	// Modal style
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	// Center the modal
	modalContent := modal.Render(content)

	// Create overlay
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
