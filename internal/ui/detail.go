package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/despensa/internal/api"
	"github.com/five82/despensa/internal/form"
)

// detailChrome is the number of lines around the item viewport: header, title,
// column header, totals and footer.
const detailChrome = 5

// openDetail shows the list with id and seeds the purchase overlay from it.
func (m *Model) openDetail(id int64) {
	m.screen = screenDetail
	m.detailID = id
	m.detailRow = 0
	m.overlay.Reset()
	if l, ok := m.findLista(id); ok {
		m.overlay.Observe(l, m.lists.Generation)
	}
	m.detailView.GotoTop()
	m.savePrefs()
	m.refreshDetail()
}

// closeDetail returns to the tabs. The overlay is discarded with the screen.
func (m *Model) closeDetail() {
	m.screen = screenTabs
	m.detailID = 0
	m.detailRow = 0
	m.overlay.Reset()
	m.savePrefs()
}

func (m Model) detailHeight() int {
	return max(m.height-detailChrome, 1)
}

func (m Model) currentLista() (api.Lista, bool) {
	if m.screen != screenDetail {
		return api.Lista{}, false
	}
	return m.findLista(m.detailID)
}

func (m Model) selectedItem() (api.ItemLista, bool) {
	l, ok := m.currentLista()
	if !ok || len(l.Itens) == 0 {
		return api.ItemLista{}, false
	}
	return l.Itens[clampRow(m.detailRow, len(l.Itens))], true
}

// refreshDetail re-renders the item rows into the viewport and scrolls so the
// selected row stays visible.
func (m *Model) refreshDetail() {
	if !m.ready || m.screen != screenDetail {
		return
	}
	l, ok := m.currentLista()
	if !ok {
		return
	}
	m.detailView.Width = m.width
	m.detailView.Height = m.detailHeight()
	m.detailView.SetContent(m.renderItemRows(l))

	switch {
	case m.detailRow < m.detailView.YOffset:
		m.detailView.SetYOffset(m.detailRow)
	case m.detailRow >= m.detailView.YOffset+m.detailView.Height:
		m.detailView.SetYOffset(m.detailRow - m.detailView.Height + 1)
	}
}

// handleDetailKey processes keyboard input inside a list.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l, ok := m.currentLista()
	if !ok {
		m.closeDetail()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeDetail()
		return m, nil
	case key.Matches(msg, m.keys.Retry):
		cmd := m.fetch(TabListas)
		return m, cmd
	case key.Matches(msg, m.keys.TogglePurchased):
		if item, ok := m.selectedItem(); ok {
			m.overlay.Toggle(item.Produto.ID)
			m.refreshDetail()
		}
		return m, nil
	case key.Matches(msg, m.keys.AddItem):
		cmd := m.openAddItemForm(l)
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.selectedItem(); ok {
			m.openEditItemForm(l, item)
		}
		return m, nil
	case key.Matches(msg, m.keys.RemoveItem):
		if item, ok := m.selectedItem(); ok {
			m.openRemoveItemConfirm(l, item)
		}
		return m, nil
	}

	n := len(l.Itens)
	if n == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.detailRow = max(m.detailRow-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.detailRow = min(m.detailRow+1, n-1)
	case key.Matches(msg, m.keys.Top):
		m.detailRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.detailRow = n - 1
	default:
		return m, nil
	}
	m.refreshDetail()
	return m, nil
}

// produtoOptions lists the products that can still be added to l.
func (m Model) produtoOptions(l api.Lista) []option {
	opts := make([]option, 0, len(m.prods.Items))
	for _, p := range m.prods.Items {
		if _, listed := l.Item(p.ID); listed {
			continue
		}
		opts = append(opts, option{id: p.ID, label: p.Nome, hint: p.Categoria.Nome})
	}
	return opts
}

func (m *Model) openAddItemForm(l api.Lista) tea.Cmd {
	listaID := l.ID
	listas, formCmd := m.listas, m.formCmd
	f := newFormModal("Adicionar item a "+l.Nome, func(values []string, picks []int64) (tea.Cmd, error) {
		req, err := form.Item(picks[0], values[1], values[2])
		if err != nil {
			return nil, err
		}
		return formCmd("Item adicionado", func(ctx context.Context) error {
			_, err := listas.AddItem(ctx, listaID, req)
			return err
		}), nil
	})
	f.kind = formAddItem
	f.addPicker("Produto", "filtrar produtos", m.produtoOptions(l), 0).
		addField("Quantidade", "1", "1").
		addField("Preço unitário (opcional)", "0,00", "")
	m.modal = f
	return m.fetchIfIdle(TabProdutos)
}

func (m *Model) openEditItemForm(l api.Lista, item api.ItemLista) {
	listaID, produtoID := l.ID, item.Produto.ID
	listas, formCmd := m.listas, m.formCmd
	f := newFormModal("Editar "+item.Produto.Nome, func(values []string, _ []int64) (tea.Cmd, error) {
		req, err := form.ItemUpdate(values[0], values[1])
		if err != nil {
			return nil, err
		}
		return formCmd("Item atualizado", func(ctx context.Context) error {
			_, err := listas.UpdateItem(ctx, listaID, produtoID, req)
			return err
		}), nil
	})
	f.addField("Quantidade", "1", strconv.Itoa(item.Quantidade)).
		addField("Preço unitário (opcional)", "0,00", form.FormatPreco(item.PrecoUnitario))
	m.modal = f
}

func (m *Model) openRemoveItemConfirm(l api.Lista, item api.ItemLista) {
	listaID, produtoID := l.ID, item.Produto.ID
	listas := m.listas
	m.modal = newConfirmModal(
		"Remover item",
		fmt.Sprintf("Remover %q da lista %q?", item.Produto.Nome, l.Nome),
		m.opCmd("Item removido", func(ctx context.Context) error {
			return listas.RemoveItem(ctx, listaID, produtoID)
		}),
	)
}

// refreshPickers keeps an open add-item form in step with the product store.
func (m *Model) refreshPickers() {
	f, ok := m.modal.(*formModal)
	if !ok {
		return
	}
	switch f.kind {
	case formAddItem:
		if l, ok := m.currentLista(); ok {
			f.setOptions(0, m.produtoOptions(l))
		}
	case formProduto:
		f.setOptions(1, m.categoriaOptions())
	}
}

// renderDetail renders the list screen below the header.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	l, ok := m.currentLista()
	if !ok {
		return styles.MutedText.Render("Lista não encontrada")
	}

	title := styles.AccentText.Bold(true).Render(l.Nome) + "  " +
		styles.MutedText.Render(fmt.Sprintf("%d itens · criada em %s", len(l.Itens), formatDate(l.ParsedDataCriacao())))

	var body string
	if len(l.Itens) == 0 {
		empty := styles.MutedText.Render("Nenhum item nesta lista. Pressione a para adicionar.")
		body = lipgloss.NewStyle().Height(m.detailHeight()).Render(empty)
	} else {
		body = m.detailView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.FaintText.Render(m.itemHeader()),
		body,
		m.renderTotals(l),
	)
}

type itemColumns struct {
	produto, categoria, qtd, preco, total int
}

func (m Model) itemColumns() itemColumns {
	cols := itemColumns{qtd: 5, preco: 12, total: 12}
	rest := m.width - 4 - cols.qtd - cols.preco - cols.total - 4
	if m.width < LayoutCompactWidth {
		cols.produto = max(rest, 8)
		return cols
	}
	cols.categoria = max(rest/3, 8)
	cols.produto = max(rest-cols.categoria-1, 8)
	return cols
}

func (m Model) itemHeader() string {
	c := m.itemColumns()
	parts := []string{"    " + cell("Produto", c.produto)}
	if c.categoria > 0 {
		parts = append(parts, cell("Categoria", c.categoria))
	}
	parts = append(parts,
		fmt.Sprintf("%*s", c.qtd, "Qtd"),
		fmt.Sprintf("%*s", c.preco, "Preço"),
		fmt.Sprintf("%*s", c.total, "Total"))
	return strings.Join(parts, " ")
}

func (m Model) renderItemRows(l api.Lista) string {
	styles := m.theme.Styles()
	c := m.itemColumns()
	lines := make([]string, 0, len(l.Itens))
	for i, item := range l.Itens {
		purchased := m.overlay.IsPurchased(item.Produto.ID)
		check := "[ ] "
		if purchased {
			check = "[x] "
		}
		preco := "-"
		if item.PrecoUnitario != nil {
			preco = formatMoney(*item.PrecoUnitario)
		}
		parts := []string{check + cell(item.Produto.Nome, c.produto)}
		if c.categoria > 0 {
			parts = append(parts, cell(item.Produto.Categoria.Nome, c.categoria))
		}
		parts = append(parts,
			fmt.Sprintf("%*d", c.qtd, item.Quantidade),
			fmt.Sprintf("%*s", c.preco, preco),
			fmt.Sprintf("%*s", c.total, formatMoney(item.LineTotal())))
		line := padRight(strings.Join(parts, " "), m.width)

		switch {
		case i == m.detailRow:
			lines = append(lines, styles.Selected.Render(line))
		case purchased:
			lines = append(lines, styles.FaintText.Strikethrough(true).Render(line))
		default:
			lines = append(lines, styles.Text.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTotals(l api.Lista) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("Comprados:", styles.MutedText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d/%d", m.overlay.Count(), len(l.Itens)), styles.Text),
		bg.Render("No carrinho:", styles.MutedText) + bg.Space() +
			bg.Render(formatMoney(m.overlay.Total(l)), styles.SuccessText),
		bg.Render("Total da lista:", styles.MutedText) + bg.Space() +
			bg.Render(formatMoney(m.overlay.Subtotal(l)), styles.AccentText),
	}
	return styles.Footer.Width(m.width).Render(bg.Join(parts, sep))
}
