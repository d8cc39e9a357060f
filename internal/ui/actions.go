package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/despensa/internal/form"
)

func (m Model) categoriaOptions() []option {
	opts := make([]option, 0, len(m.cats.Items))
	for _, c := range m.cats.Items {
		opts = append(opts, option{id: c.ID, label: c.Nome, hint: c.DescricaoOr("")})
	}
	return opts
}

// openCreateForm opens the "new" form for the current tab.
func (m *Model) openCreateForm() tea.Cmd {
	formCmd := m.formCmd
	switch m.tab {
	case TabCategorias:
		store := m.categorias
		m.modal = newFormModal("Nova categoria", func(values []string, _ []int64) (tea.Cmd, error) {
			req, err := form.Categoria(values[0], values[1])
			if err != nil {
				return nil, err
			}
			return formCmd("Categoria adicionada", func(ctx context.Context) error {
				_, err := store.Create(ctx, req)
				return err
			}), nil
		}).
			addField("Nome", "Hortifruti", "").
			addField("Descrição (opcional)", "", "")

	case TabProdutos:
		store := m.produtos
		f := newFormModal("Novo produto", func(values []string, picks []int64) (tea.Cmd, error) {
			req, err := form.Produto(values[0], picks[1])
			if err != nil {
				return nil, err
			}
			return formCmd("Produto adicionado", func(ctx context.Context) error {
				_, err := store.Create(ctx, req)
				return err
			}), nil
		})
		f.kind = formProduto
		f.addField("Nome", "Arroz", "").
			addPicker("Categoria", "filtrar categorias", m.categoriaOptions(), 0)
		m.modal = f
		return m.fetchIfIdle(TabCategorias)

	case TabListas:
		store, usuarioID := m.listas, m.usuarioID
		m.modal = newFormModal("Nova lista", func(values []string, _ []int64) (tea.Cmd, error) {
			req, err := form.Lista(values[0], usuarioID)
			if err != nil {
				return nil, err
			}
			return formCmd("Lista criada", func(ctx context.Context) error {
				_, err := store.Create(ctx, req)
				return err
			}), nil
		}).
			addField("Nome", "Compras do mês", "")
	}
	return nil
}

// openEditForm opens the edit form for the selected row.
func (m *Model) openEditForm() tea.Cmd {
	formCmd := m.formCmd
	switch m.tab {
	case TabCategorias:
		c, ok := m.selectedCategoria()
		if !ok {
			return nil
		}
		store := m.categorias
		m.modal = newFormModal("Editar categoria", func(values []string, _ []int64) (tea.Cmd, error) {
			req, err := form.Categoria(values[0], values[1])
			if err != nil {
				return nil, err
			}
			return formCmd("Categoria atualizada", func(ctx context.Context) error {
				_, err := store.Update(ctx, c.ID, req)
				return err
			}), nil
		}).
			addField("Nome", "", c.Nome).
			addField("Descrição (opcional)", "", c.DescricaoOr(""))

	case TabProdutos:
		p, ok := m.selectedProduto()
		if !ok {
			return nil
		}
		store := m.produtos
		f := newFormModal("Editar produto", func(values []string, picks []int64) (tea.Cmd, error) {
			req, err := form.Produto(values[0], picks[1])
			if err != nil {
				return nil, err
			}
			return formCmd("Produto atualizado", func(ctx context.Context) error {
				_, err := store.Update(ctx, p.ID, req)
				return err
			}), nil
		})
		f.kind = formProduto
		f.addField("Nome", "", p.Nome).
			addPicker("Categoria", "filtrar categorias", m.categoriaOptions(), p.Categoria.ID)
		m.modal = f
		return m.fetchIfIdle(TabCategorias)

	case TabListas:
		l, ok := m.selectedLista()
		if !ok {
			return nil
		}
		store := m.listas
		usuarioID := l.UsuarioID
		if usuarioID <= 0 {
			usuarioID = m.usuarioID
		}
		m.modal = newFormModal("Renomear lista", func(values []string, _ []int64) (tea.Cmd, error) {
			req, err := form.Lista(values[0], usuarioID)
			if err != nil {
				return nil, err
			}
			return formCmd("Lista atualizada", func(ctx context.Context) error {
				_, err := store.Update(ctx, l.ID, req)
				return err
			}), nil
		}).
			addField("Nome", "", l.Nome)
	}
	return nil
}

// openDeleteConfirm asks before deleting the selected row. The backend may
// refuse; its reason is flashed in the footer.
func (m *Model) openDeleteConfirm() {
	switch m.tab {
	case TabCategorias:
		c, ok := m.selectedCategoria()
		if !ok {
			return
		}
		store := m.categorias
		m.modal = newConfirmModal("Excluir categoria",
			fmt.Sprintf("Excluir a categoria %q?", c.Nome),
			m.opCmd("Categoria excluída", func(ctx context.Context) error {
				return store.Delete(ctx, c.ID)
			}))

	case TabProdutos:
		p, ok := m.selectedProduto()
		if !ok {
			return
		}
		store := m.produtos
		m.modal = newConfirmModal("Excluir produto",
			fmt.Sprintf("Excluir o produto %q?", p.Nome),
			m.opCmd("Produto excluído", func(ctx context.Context) error {
				return store.Delete(ctx, p.ID)
			}))

	case TabListas:
		l, ok := m.selectedLista()
		if !ok {
			return
		}
		store := m.listas
		m.modal = newConfirmModal("Excluir lista",
			fmt.Sprintf("Excluir a lista %q e seus %d itens?", l.Nome, len(l.Itens)),
			m.opCmd("Lista excluída", func(ctx context.Context) error {
				return store.Delete(ctx, l.ID)
			}))
	}
}
