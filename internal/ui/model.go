package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/despensa/internal/api"
	"github.com/five82/despensa/internal/overlay"
	"github.com/five82/despensa/internal/prefs"
	"github.com/five82/despensa/internal/state"
)

// Tab is one of the collection screens.
type Tab int

const (
	TabCategorias Tab = iota
	TabProdutos
	TabListas
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabCategorias:
		return "Categorias"
	case TabProdutos:
		return "Produtos"
	case TabListas:
		return "Listas"
	default:
		return ""
	}
}

type screen int

const (
	screenTabs screen = iota
	screenDetail
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Categorias *state.CategoriaStore
	Produtos   *state.ProdutoStore
	Listas     *state.ListaStore
	UsuarioID  int64
	ThemeName  string
	PrefsPath  string
	LastListID int64 // reopened once lists are loaded
	LogPath    string
	Logger     *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	categorias *state.CategoriaStore
	produtos   *state.ProdutoStore
	listas     *state.ListaStore
	usuarioID  int64
	prefsPath  string
	logPath    string
	logger     *slog.Logger

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Collections
	tab  Tab
	rows [tabCount]int
	cats state.Snapshot[api.Categoria]
	prods state.Snapshot[api.Produto]
	lists state.Snapshot[api.Lista]

	// List detail
	screen     screen
	detailID   int64
	detailRow  int
	pendingID  int64
	overlay    *overlay.Overlay
	detailView viewport.Model

	// Footer message
	flash    string
	flashErr bool
	flashSeq int

	subs   []<-chan struct{}
	unsubs []func()
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = DefaultThemeName
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	usuarioID := opts.UsuarioID
	if usuarioID <= 0 {
		usuarioID = 1
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:        ctx,
		categorias: opts.Categorias,
		produtos:   opts.Produtos,
		listas:     opts.Listas,
		usuarioID:  usuarioID,
		prefsPath:  prefsPath,
		logPath:    opts.LogPath,
		logger:     logger.With(slog.String("component", "ui")),
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		pendingID:  opts.LastListID,
		overlay:    overlay.New(),
	}
	if m.categorias != nil {
		m.subscribe(m.categorias.Subscribe)
	}
	if m.produtos != nil {
		m.subscribe(m.produtos.Subscribe)
	}
	if m.listas != nil {
		m.subscribe(m.listas.Subscribe)
	}
	m.syncSnapshots()
	return m
}

func (m *Model) subscribe(fn func() (<-chan struct{}, func())) {
	ch, cancel := fn()
	m.subs = append(m.subs, ch)
	m.unsubs = append(m.unsubs, cancel)
}

// Close detaches the model from the stores.
func (m Model) Close() {
	for _, cancel := range m.unsubs {
		cancel()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, ch := range m.subs {
		cmds = append(cmds, m.waitForChange(ch))
	}
	cmds = append(cmds, m.fetchIfIdle(m.tab))
	if m.pendingID > 0 {
		cmds = append(cmds, m.fetchIfIdle(TabListas))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.detailView = viewport.New(msg.Width, m.detailHeight())
		}
		m.ready = true
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeChangedMsg:
		m.syncSnapshots()
		cmd := m.waitForChange(msg.ch)
		return m, cmd

	case fetchResultMsg:
		m.syncSnapshots()
		if msg.err != nil {
			cmd := m.setFlash(msg.err.Error(), true)
			return m, cmd
		}
		return m, nil

	case formResultMsg:
		m.syncSnapshots()
		if f, ok := m.modal.(*formModal); ok {
			if msg.err != nil {
				f.fail(msg.err.Error())
				return m, nil
			}
			m.modal = nil
		}
		if msg.err != nil {
			cmd := m.setFlash(msg.err.Error(), true)
			return m, cmd
		}
		cmd := m.setFlash(msg.done, false)
		return m, cmd

	case opResultMsg:
		m.syncSnapshots()
		if msg.err != nil {
			cmd := m.setFlash(msg.err.Error(), true)
			return m, cmd
		}
		cmd := m.setFlash(msg.done, false)
		return m, cmd

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.ShowLog):
		m.modal = newLogModal(m.logPath)
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.refreshDetail()
		return m, nil
	}

	if m.screen == screenDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleTabsKey(msg)
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = next
	}
	return m, cmd
}

// handleTabsKey processes keyboard input for the collection tabs.
func (m Model) handleTabsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		cmd := m.setTab((m.tab + 1) % tabCount)
		return m, cmd
	case key.Matches(msg, m.keys.PrevTab):
		cmd := m.setTab((m.tab + tabCount - 1) % tabCount)
		return m, cmd
	case msg.String() == "1":
		cmd := m.setTab(TabCategorias)
		return m, cmd
	case msg.String() == "2":
		cmd := m.setTab(TabProdutos)
		return m, cmd
	case msg.String() == "3":
		cmd := m.setTab(TabListas)
		return m, cmd
	case key.Matches(msg, m.keys.Retry):
		cmd := m.fetch(m.tab)
		return m, cmd
	case key.Matches(msg, m.keys.New):
		cmd := m.openCreateForm()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		cmd := m.openEditForm()
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		m.openDeleteConfirm()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if m.tab == TabListas {
			if l, ok := m.selectedLista(); ok {
				m.openDetail(l.ID)
			}
		}
		return m, nil
	}

	n := m.rowCount(m.tab)
	if n == 0 {
		return m, nil
	}
	row := &m.rows[m.tab]
	switch {
	case key.Matches(msg, m.keys.Up):
		*row = max(*row-1, 0)
	case key.Matches(msg, m.keys.Down):
		*row = min(*row+1, n-1)
	case key.Matches(msg, m.keys.Top):
		*row = 0
	case key.Matches(msg, m.keys.Bottom):
		*row = n - 1
	}
	return m, nil
}

// setTab switches tabs and fetches a collection on its first visit.
func (m *Model) setTab(t Tab) tea.Cmd {
	m.tab = t
	return m.fetchIfIdle(t)
}

func (m Model) rowCount(t Tab) int {
	switch t {
	case TabCategorias:
		return len(m.cats.Items)
	case TabProdutos:
		return len(m.prods.Items)
	case TabListas:
		return len(m.lists.Items)
	}
	return 0
}

// syncSnapshots copies the stores' state into the model and keeps the
// selection, the overlay and the detail view consistent with it.
func (m *Model) syncSnapshots() {
	if m.categorias != nil {
		m.cats = m.categorias.Snapshot()
	}
	if m.produtos != nil {
		m.prods = m.produtos.Snapshot()
	}
	if m.listas != nil {
		m.lists = m.listas.Snapshot()
	}
	for t := range tabCount {
		m.rows[t] = clampRow(m.rows[t], m.rowCount(t))
	}

	if m.pendingID > 0 && m.lists.Status == state.StatusSucceeded {
		id := m.pendingID
		m.pendingID = 0
		if _, ok := m.findLista(id); ok {
			m.tab = TabListas
			m.openDetail(id)
		}
	}

	if m.screen == screenDetail {
		l, ok := m.findLista(m.detailID)
		if !ok {
			m.closeDetail()
			m.refreshPickers()
			return
		}
		m.overlay.Observe(l, m.lists.Generation)
		m.detailRow = clampRow(m.detailRow, len(l.Itens))
		m.refreshDetail()
	}
	m.refreshPickers()
}

func clampRow(row, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(row, 0), n-1)
}

func (m Model) findLista(id int64) (api.Lista, bool) {
	for _, l := range m.lists.Items {
		if l.ID == id {
			return l, true
		}
	}
	return api.Lista{}, false
}

func (m Model) selectedCategoria() (api.Categoria, bool) {
	if len(m.cats.Items) == 0 {
		return api.Categoria{}, false
	}
	return m.cats.Items[m.rows[TabCategorias]], true
}

func (m Model) selectedProduto() (api.Produto, bool) {
	if len(m.prods.Items) == 0 {
		return api.Produto{}, false
	}
	return m.prods.Items[m.rows[TabProdutos]], true
}

func (m Model) selectedLista() (api.Lista, bool) {
	if len(m.lists.Items) == 0 {
		return api.Lista{}, false
	}
	return m.lists.Items[m.rows[TabListas]], true
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.screen == screenDetail {
		p.LastListID = m.detailID
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", slog.Any("error", err))
	}
}

// Messages

type storeChangedMsg struct{ ch <-chan struct{} }

type fetchResultMsg struct {
	tab Tab
	err error
}

// formResultMsg completes a form submission.
type formResultMsg struct {
	done string
	err  error
}

// opResultMsg completes an operation dispatched outside a form.
type opResultMsg struct {
	done string
	err  error
}

type flashExpiredMsg struct{ seq int }

// Commands

func (m Model) waitForChange(ch <-chan struct{}) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return storeChangedMsg{ch: ch}
		case <-ctx.Done():
			return nil
		}
	}
}

// fetch re-runs FetchAll for the collection behind t.
func (m Model) fetch(t Tab) tea.Cmd {
	var run func(context.Context) error
	switch t {
	case TabCategorias:
		if m.categorias != nil {
			run = m.categorias.FetchAll
		}
	case TabProdutos:
		if m.produtos != nil {
			run = m.produtos.FetchAll
		}
	case TabListas:
		if m.listas != nil {
			run = m.listas.FetchAll
		}
	}
	if run == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(ctx, OpTimeout)
		defer cancel()
		return fetchResultMsg{tab: t, err: run(opCtx)}
	}
}

func (m Model) fetchIfIdle(t Tab) tea.Cmd {
	var status state.Status
	switch t {
	case TabCategorias:
		status = m.cats.Status
	case TabProdutos:
		status = m.prods.Status
	case TabListas:
		status = m.lists.Status
	}
	if status != state.StatusIdle {
		return nil
	}
	return m.fetch(t)
}

// runOp runs fn with a timeout and reports through msg.
func (m Model) runOp(fn func(context.Context) error, wrap func(error) tea.Msg) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(ctx, OpTimeout)
		defer cancel()
		return wrap(fn(opCtx))
	}
}

func (m Model) formCmd(done string, fn func(context.Context) error) tea.Cmd {
	return m.runOp(fn, func(err error) tea.Msg { return formResultMsg{done: done, err: err} })
}

func (m Model) opCmd(done string, fn func(context.Context) error) tea.Cmd {
	return m.runOp(fn, func(err error) tea.Msg { return opResultMsg{done: done, err: err} })
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
