package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/despensa/internal/state"
)

// renderMain composes header, body and footer.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	if m.screen == screenDetail {
		body = m.renderDetail()
	} else {
		bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(m.renderTab(bodyHeight))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders the logo, the tab strip and the status of the active
// collection.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("despensa", styles.Logo)}
	for t := range tabCount {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.tab {
			parts = append(parts, styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, bg.Render(label, styles.InactiveTab))
		}
	}

	status, offline := m.tabStatus(m.activeCollection())
	switch {
	case offline:
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	case status == state.StatusLoading:
		parts = append(parts, bg.Render(m.spinner.View(), styles.InfoText)+bg.Space()+
			styles.StatusStyle(status.String()).Render("carregando"))
	case status == state.StatusFailed:
		parts = append(parts, styles.StatusStyle(status.String()).Render("erro"))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// activeCollection is the tab whose status the header reports.
func (m Model) activeCollection() Tab {
	if m.screen == screenDetail {
		return TabListas
	}
	return m.tab
}

func (m Model) tabStatus(t Tab) (state.Status, bool) {
	switch t {
	case TabCategorias:
		return m.cats.Status, m.cats.IsOffline()
	case TabProdutos:
		return m.prods.Status, m.prods.IsOffline()
	default:
		return m.lists.Status, m.lists.IsOffline()
	}
}

func (m Model) tabError(t Tab) string {
	switch t {
	case TabCategorias:
		return m.cats.Error
	case TabProdutos:
		return m.prods.Error
	default:
		return m.lists.Error
	}
}

// renderFooter shows the flash message when one is active, the key help
// otherwise.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(style.Render(truncate(m.flash, m.width-2)))
	}
	var km help.KeyMap = m.keys
	if m.screen == screenDetail {
		km = detailHelp{m.keys}
	}
	return styles.Footer.Width(m.width).Render(m.help.View(km))
}

// renderTab renders the data container of the active tab: a spinner while the
// first fetch runs, the error with a retry hint on failure, the rows otherwise.
func (m Model) renderTab(height int) string {
	styles := m.theme.Styles()
	status, _ := m.tabStatus(m.tab)
	rows := m.rowCount(m.tab)

	switch {
	case rows == 0 && (status == state.StatusIdle || status == state.StatusLoading):
		return styles.MutedText.Render(m.spinner.View() + " Carregando...")
	case rows == 0 && status == state.StatusFailed:
		return styles.DangerText.Render(m.tabError(m.tab)) + "\n\n" +
			styles.MutedText.Render("Pressione r para tentar novamente")
	case rows == 0:
		return styles.MutedText.Render(emptyMessage(m.tab))
	}

	var lines []string
	if status == state.StatusFailed {
		// Stale rows stay visible behind the error.
		lines = append(lines, styles.DangerText.Render(m.tabError(m.tab)+" · r para tentar novamente"))
		height--
	}
	header, body := m.tableRows(m.tab)
	lines = append(lines, styles.FaintText.Render(header))

	visible := max(height-1, 1)
	selected := m.rows[m.tab]
	start := max(0, selected-visible+1)
	end := min(len(body), start+visible)
	for i := start; i < end; i++ {
		line := padRight(body[i], m.width)
		if i == selected {
			lines = append(lines, styles.Selected.Render(line))
		} else {
			lines = append(lines, styles.Text.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func emptyMessage(t Tab) string {
	switch t {
	case TabCategorias:
		return "Nenhuma categoria cadastrada. Pressione n para criar."
	case TabProdutos:
		return "Nenhum produto cadastrado. Pressione n para criar."
	default:
		return "Nenhuma lista de compras. Pressione n para criar."
	}
}

// tableRows returns the column header and one plain line per row of t.
func (m Model) tableRows(t Tab) (string, []string) {
	compact := m.width < LayoutCompactWidth
	switch t {
	case TabCategorias:
		nome := max(m.width/3, 16)
		desc := max(m.width-nome-3, 10)
		body := make([]string, 0, len(m.cats.Items))
		for _, c := range m.cats.Items {
			body = append(body, " "+cell(c.Nome, nome)+" "+truncate(c.DescricaoOr("-"), desc))
		}
		return " " + cell("Nome", nome) + " Descrição", body

	case TabProdutos:
		nome := max(m.width/2, 16)
		body := make([]string, 0, len(m.prods.Items))
		for _, p := range m.prods.Items {
			body = append(body, " "+cell(p.Nome, nome)+" "+p.Categoria.Nome)
		}
		return " " + cell("Nome", nome) + " Categoria", body

	default:
		if compact {
			nome := max(m.width-20, 12)
			body := make([]string, 0, len(m.lists.Items))
			for _, l := range m.lists.Items {
				body = append(body, " "+cell(l.Nome, nome)+fmt.Sprintf(" %5d", len(l.Itens)))
			}
			return " " + cell("Nome", nome) + " Itens", body
		}
		nome := max(m.width-48, 16)
		body := make([]string, 0, len(m.lists.Items))
		for _, l := range m.lists.Items {
			body = append(body, fmt.Sprintf(" %s %-12s %5d %14s",
				cell(l.Nome, nome),
				formatDate(l.ParsedDataCriacao()),
				len(l.Itens),
				formatMoney(l.Total())))
		}
		return fmt.Sprintf(" %s %-12s %5s %14s", cell("Nome", nome), "Criada em", "Itens", "Total"), body
	}
}
