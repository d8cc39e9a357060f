package ui

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/despensa/internal/api"
	"github.com/five82/despensa/internal/apitest"
	"github.com/five82/despensa/internal/form"
	"github.com/five82/despensa/internal/prefs"
	"github.com/five82/despensa/internal/state"
)

type harness struct {
	backend    *apitest.Backend
	categorias *state.CategoriaStore
	produtos   *state.ProdutoStore
	listas     *state.ListaStore
	prefsPath  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, backend := apitest.NewServer(t.Cleanup, apitest.DefaultSeed())
	client, err := api.NewClient(srv.URL + "/api")
	require.NoError(t, err)

	h := &harness{
		backend:    backend,
		categorias: state.NewCategoriaStore(client, nil),
		produtos:   state.NewProdutoStore(client, nil),
		listas:     state.NewListaStore(client, nil),
		prefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	}
	ctx := context.Background()
	require.NoError(t, h.categorias.FetchAll(ctx))
	require.NoError(t, h.produtos.FetchAll(ctx))
	require.NoError(t, h.listas.FetchAll(ctx))
	return h
}

func (h *harness) model(t *testing.T, lastListID int64) Model {
	t.Helper()
	m := New(Options{
		Categorias: h.categorias,
		Produtos:   h.produtos,
		Listas:     h.listas,
		PrefsPath:  h.prefsPath,
		LastListID: lastListID,
	})
	t.Cleanup(m.Close)
	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// press sends keys in order. When the last key yields a store operation it is
// run to completion and its result fed back.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case formResultMsg, opResultMsg, fetchResultMsg:
		return update(t, m, msg)
	}
	return m
}

func TestModel_RendersSeededTabs(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)

	assert.Contains(t, m.View(), "Limpeza e utilidades")

	m = press(t, m, "2")
	assert.Equal(t, TabProdutos, m.tab)
	assert.Contains(t, m.View(), "Detergente")

	m = press(t, m, "3")
	view := m.View()
	assert.Contains(t, view, "Feira do mês")
	assert.Contains(t, view, "01/03/2025")
	assert.Contains(t, view, "R$ 25,00")
}

func TestModel_FailedFetchShowsRetryHint(t *testing.T) {
	srv, backend := apitest.NewServer(t.Cleanup, apitest.DefaultSeed())
	client, err := api.NewClient(srv.URL + "/api")
	require.NoError(t, err)
	backend.FailNext(http.MethodGet, "/categorias", apitest.Failure{Status: http.StatusInternalServerError})

	cats := state.NewCategoriaStore(client, nil)
	m := New(Options{Categorias: cats, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	t.Cleanup(m.Close)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20})

	cmd := m.fetchIfIdle(TabCategorias)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	view := m.View()
	assert.Contains(t, view, "Falha ao buscar categorias")
	assert.Contains(t, view, "Pressione r para tentar novamente")

	m = press(t, m, "r")
	assert.Equal(t, state.StatusSucceeded, m.cats.Status)
	assert.Contains(t, m.View(), "Mercearia")
}

func TestModel_DetailTogglesOverlay(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)

	m = press(t, m, "3", "enter")
	require.Equal(t, screenDetail, m.screen)
	assert.EqualValues(t, 5, m.detailID)
	assert.True(t, m.overlay.IsPurchased(9))
	assert.Contains(t, m.View(), "Comprados: 1/2")

	// First row is Arroz, 2 × 12,50.
	m = press(t, m, " ")
	assert.False(t, m.overlay.IsPurchased(9))
	assert.Zero(t, m.overlay.Total(h.listas.Snapshot().Items[0]))
	assert.Contains(t, m.View(), "Comprados: 0/2")

	m = press(t, m, " ")
	assert.InDelta(t, 25.0, m.overlay.Total(h.listas.Snapshot().Items[0]), 1e-9)

	// The toggle never reaches the server.
	assert.NotContains(t, h.backend.Requests(), "PUT /listas/5/itens/9")

	m = press(t, m, "esc")
	assert.Equal(t, screenTabs, m.screen)
	_, bound := m.overlay.ListaID()
	assert.False(t, bound)
}

func TestModel_RefetchResetsOverlay(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "3", "enter", "down", " ")
	require.True(t, m.overlay.IsPurchased(7))

	require.NoError(t, h.listas.FetchAll(context.Background()))
	m = update(t, m, storeChangedMsg{})

	assert.False(t, m.overlay.IsPurchased(7))
	assert.True(t, m.overlay.IsPurchased(9))
}

func TestModel_AddItemFromDetail(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "3", "enter", "a")

	f, ok := m.modal.(*formModal)
	require.True(t, ok)
	// Only Feijão is not on the list yet.
	require.Len(t, f.fields[0].picker.options, 1)
	assert.EqualValues(t, 11, f.fields[0].picker.options[0].id)

	m = press(t, m, "enter", "enter", "enter")
	assert.Nil(t, m.modal)
	assert.Equal(t, "Item adicionado", m.flash)

	l, ok := h.listas.Find(5)
	require.True(t, ok)
	require.Len(t, l.Itens, 3)
	item, ok := l.Item(11)
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantidade)
	assert.Nil(t, item.PrecoUnitario)
	assert.Contains(t, m.View(), "Comprados: 1/3")
}

func TestModel_FormValidationStaysInline(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "n", "enter", "enter")

	f, ok := m.modal.(*formModal)
	require.True(t, ok)
	assert.Equal(t, form.MsgCategoriaRequired, f.err)
	assert.False(t, f.busy)
	assert.Len(t, h.categorias.Snapshot().Items, 2)

	m = press(t, m, "esc")
	assert.Nil(t, m.modal)
}

func TestModel_CreateCategoria(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "n", "F", "e", "i", "r", "a", "enter", "enter")

	assert.Nil(t, m.modal)
	items := h.categorias.Snapshot().Items
	require.Len(t, items, 3)
	assert.Equal(t, "Feira", items[2].Nome)
	assert.Nil(t, items[2].Descricao)
	assert.Contains(t, m.View(), "Feira")
}

func TestModel_ReferentialDeleteFlashesServerMessage(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "down", "d", "s")

	assert.True(t, m.flashErr)
	assert.Contains(t, m.flash, "produtos associados")
	assert.Len(t, h.categorias.Snapshot().Items, 2)
}

func TestModel_RemoveItemFailureUsesFallback(t *testing.T) {
	h := newHarness(t)
	h.backend.FailNext(http.MethodDelete, "/listas/{id}/itens/{produtoId}",
		apitest.Failure{Status: http.StatusInternalServerError})
	m := h.model(t, 0)
	m = press(t, m, "3", "enter", "x", "s")

	assert.True(t, m.flashErr)
	assert.Equal(t, "Falha ao remover item", m.flash)
	l, _ := h.listas.Find(5)
	assert.Len(t, l.Itens, 2)

	m = press(t, m, "x", "s")
	assert.False(t, m.flashErr)
	l, _ = h.listas.Find(5)
	require.Len(t, l.Itens, 1)
	assert.EqualValues(t, 7, l.Itens[0].Produto.ID)
}

func TestModel_ReopensLastList(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 5)

	assert.Equal(t, screenDetail, m.screen)
	assert.Equal(t, TabListas, m.tab)
	assert.EqualValues(t, 5, m.detailID)

	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.EqualValues(t, 5, p.LastListID)
}

func TestModel_CycleThemePersists(t *testing.T) {
	h := newHarness(t)
	m := h.model(t, 0)
	m = press(t, m, "T")

	assert.Equal(t, NextTheme(DefaultThemeName), m.theme.Name)
	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, m.theme.Name, p.Theme)
	assert.Zero(t, p.LastListID)
}

func TestModel_LogViewShowsRecentRecords(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "despensa.log")
	data := "time=2026-03-01T09:30:00Z level=INFO msg=starting\n" +
		"time=2026-03-01T09:30:01Z level=WARN msg=\"fetch failed\" store=categorias\n"
	require.NoError(t, os.WriteFile(logPath, []byte(data), 0o644))

	m := New(Options{PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"), LogPath: logPath})
	t.Cleanup(m.Close)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	m = press(t, m, "L")
	_, ok := m.modal.(*logModal)
	require.True(t, ok)
	view := m.View()
	assert.Contains(t, view, "fetch failed store=categorias")
	assert.Contains(t, view, "WARN")

	m = press(t, m, "esc")
	assert.Nil(t, m.modal)
}
