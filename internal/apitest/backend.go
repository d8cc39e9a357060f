package apitest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/despensa/internal/api"
)

const timestampLayout = "2006-01-02T15:04:05"

// Backend is an in-memory implementation of the shopping-list REST API. It
// enforces the backend's referential rules so client error paths can be
// exercised without the real service.
type Backend struct {
	mu         sync.Mutex
	categorias []api.Categoria
	produtos   []produtoRow
	listas     []listaRow
	nextID     int64
	failures   map[string][]Failure
	requests   []string
	logger     *slog.Logger
	now        func() time.Time
}

type produtoRow struct {
	ID          int64
	Nome        string
	CategoriaID int64
}

type listaRow struct {
	ID          int64
	Nome        string
	UsuarioID   int64
	DataCriacao string
	Itens       []itemRow
}

type itemRow struct {
	ProdutoID     int64
	Quantidade    int
	PrecoUnitario *float64
	Comprado      bool
}

// Failure is a scripted error response.
type Failure struct {
	Status  int
	Message string // empty sends a body without a message field
}

// NewBackend builds a Backend from seed.
func NewBackend(seed Seed) *Backend {
	b := &Backend{
		failures: make(map[string][]Failure),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, c := range seed.Categorias {
		cat := api.Categoria{ID: c.ID, Nome: c.Nome}
		if c.Descricao != "" {
			desc := c.Descricao
			cat.Descricao = &desc
		}
		b.categorias = append(b.categorias, cat)
		b.bump(c.ID)
	}
	for _, p := range seed.Produtos {
		b.produtos = append(b.produtos, produtoRow{ID: p.ID, Nome: p.Nome, CategoriaID: p.Categoria})
		b.bump(p.ID)
	}
	for _, l := range seed.Listas {
		row := listaRow{ID: l.ID, Nome: l.Nome, UsuarioID: l.Usuario, DataCriacao: l.DataCriacao}
		if row.DataCriacao == "" {
			row.DataCriacao = b.now().Format(timestampLayout)
		}
		for _, item := range l.Itens {
			row.Itens = append(row.Itens, itemRow{
				ProdutoID:     item.Produto,
				Quantidade:    item.Quantidade,
				PrecoUnitario: item.Preco,
				Comprado:      item.Comprado,
			})
		}
		b.listas = append(b.listas, row)
		b.bump(l.ID)
	}
	return b
}

// NewServer starts an httptest server for seed and registers its Close with
// cleanup, typically a test's t.Cleanup.
func NewServer(cleanup func(func()), seed Seed) (*httptest.Server, *Backend) {
	b := NewBackend(seed)
	srv := httptest.NewServer(b.Handler())
	cleanup(srv.Close)
	return srv, b
}

// SetLogger replaces the request logger.
func (b *Backend) SetLogger(logger *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if logger != nil {
		b.logger = logger
	}
}

// FailNext makes the next request matching method and route pattern (e.g.
// "DELETE /categorias/{id}") fail with f. Calls queue up in order.
func (b *Backend) FailNext(method, pattern string, f Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + pattern
	b.failures[key] = append(b.failures[key], f)
}

// Requests returns "METHOD /path" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Handler returns the chi router serving the REST surface.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Route("/categorias", func(r chi.Router) {
		r.Get("/", b.listCategorias)
		r.Post("/", b.createCategoria)
		r.Put("/{id}", b.updateCategoria)
		r.Delete("/{id}", b.deleteCategoria)
	})
	r.Route("/produtos", func(r chi.Router) {
		r.Get("/", b.listProdutos)
		r.Post("/", b.createProduto)
		r.Put("/{id}", b.updateProduto)
		r.Delete("/{id}", b.deleteProduto)
	})
	r.Route("/listas", func(r chi.Router) {
		r.Get("/", b.listListas)
		r.Post("/", b.createLista)
		r.Put("/{id}", b.updateLista)
		r.Delete("/{id}", b.deleteLista)
		r.Post("/{id}/itens", b.addItem)
		r.Put("/{id}/itens/{produtoId}", b.updateItem)
		r.Delete("/{id}/itens/{produtoId}", b.removeItem)
	})

	root := chi.NewRouter()
	root.Mount("/api", r)
	return root
}

// record logs each request and applies scripted failures before routing.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+path)
		logger := b.logger
		b.mu.Unlock()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if f, ok := b.popFailure(r.Method, path); ok {
			writeFailure(ww, f)
		} else {
			next.ServeHTTP(ww, r)
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", r.Header.Get("X-Request-ID")),
		}
		switch {
		case ww.Status() >= 500:
			logger.LogAttrs(r.Context(), slog.LevelError, "fakeapi request", attrs...)
		case ww.Status() >= 400:
			logger.LogAttrs(r.Context(), slog.LevelWarn, "fakeapi request", attrs...)
		default:
			logger.LogAttrs(r.Context(), slog.LevelDebug, "fakeapi request", attrs...)
		}
	})
}

func (b *Backend) popFailure(method, path string) (Failure, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, queue := range b.failures {
		if len(queue) == 0 {
			continue
		}
		m, pattern, _ := strings.Cut(key, " ")
		if m != method || !matchPattern(pattern, path) {
			continue
		}
		f := queue[0]
		b.failures[key] = queue[1:]
		return f, true
	}
	return Failure{}, false
}

// matchPattern compares a chi-style pattern with a concrete path segment-wise.
func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") && strings.HasSuffix(ps[i], "}") {
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

// --- categorias ---

func (b *Backend) listCategorias(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := slices.Clone(b.categorias)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (b *Backend) createCategoria(w http.ResponseWriter, r *http.Request) {
	var req api.CategoriaRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Nome) == "" {
		writeError(w, http.StatusBadRequest, "O nome da categoria é obrigatório")
		return
	}
	b.mu.Lock()
	cat := api.Categoria{ID: b.allocate(), Nome: req.Nome, Descricao: req.Descricao}
	b.categorias = append(b.categorias, cat)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, cat)
}

func (b *Backend) updateCategoria(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req api.CategoriaRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.categorias, func(c api.Categoria) bool { return c.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Categoria %d não encontrada", id))
		return
	}
	b.categorias[idx].Nome = req.Nome
	b.categorias[idx].Descricao = req.Descricao
	writeJSON(w, http.StatusOK, b.categorias[idx])
}

func (b *Backend) deleteCategoria(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.categorias, func(c api.Categoria) bool { return c.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Categoria %d não encontrada", id))
		return
	}
	if slices.ContainsFunc(b.produtos, func(p produtoRow) bool { return p.CategoriaID == id }) {
		writeError(w, http.StatusConflict, "Não é possível excluir a categoria: existem produtos associados")
		return
	}
	b.categorias = slices.Delete(b.categorias, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

// --- produtos ---

func (b *Backend) listProdutos(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]api.Produto, 0, len(b.produtos))
	for _, p := range b.produtos {
		out = append(out, b.produtoLocked(p))
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createProduto(w http.ResponseWriter, r *http.Request) {
	var req api.ProdutoRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg := b.checkProdutoLocked(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	row := produtoRow{ID: b.allocate(), Nome: req.Nome, CategoriaID: req.CategoriaID}
	b.produtos = append(b.produtos, row)
	writeJSON(w, http.StatusCreated, b.produtoLocked(row))
}

func (b *Backend) updateProduto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req api.ProdutoRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.produtos, func(p produtoRow) bool { return p.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Produto %d não encontrado", id))
		return
	}
	if msg := b.checkProdutoLocked(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	b.produtos[idx].Nome = req.Nome
	b.produtos[idx].CategoriaID = req.CategoriaID
	writeJSON(w, http.StatusOK, b.produtoLocked(b.produtos[idx]))
}

func (b *Backend) deleteProduto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := slices.IndexFunc(b.produtos, func(p produtoRow) bool { return p.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Produto %d não encontrado", id))
		return
	}
	for _, l := range b.listas {
		if slices.ContainsFunc(l.Itens, func(i itemRow) bool { return i.ProdutoID == id }) {
			writeError(w, http.StatusConflict, "Não é possível excluir o produto: ele está em uma lista")
			return
		}
	}
	b.produtos = slices.Delete(b.produtos, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) checkProdutoLocked(req api.ProdutoRequest) string {
	if strings.TrimSpace(req.Nome) == "" {
		return "O nome do produto é obrigatório"
	}
	if !slices.ContainsFunc(b.categorias, func(c api.Categoria) bool { return c.ID == req.CategoriaID }) {
		return fmt.Sprintf("Categoria %d não encontrada", req.CategoriaID)
	}
	return ""
}

func (b *Backend) produtoLocked(p produtoRow) api.Produto {
	out := api.Produto{ID: p.ID, Nome: p.Nome}
	if idx := slices.IndexFunc(b.categorias, func(c api.Categoria) bool { return c.ID == p.CategoriaID }); idx >= 0 {
		out.Categoria = b.categorias[idx]
	}
	return out
}

// --- listas ---

func (b *Backend) listListas(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]api.Lista, 0, len(b.listas))
	for _, l := range b.listas {
		out = append(out, b.listaLocked(l, true))
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// createLista and updateLista answer without itens, like the real backend's
// metadata endpoints.
func (b *Backend) createLista(w http.ResponseWriter, r *http.Request) {
	var req api.ListaRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Nome) == "" {
		writeError(w, http.StatusBadRequest, "O nome da lista é obrigatório")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	row := listaRow{
		ID:          b.allocate(),
		Nome:        req.Nome,
		UsuarioID:   req.UsuarioID,
		DataCriacao: b.now().Format(timestampLayout),
	}
	b.listas = append(b.listas, row)
	writeJSON(w, http.StatusCreated, b.listaLocked(row, false))
}

func (b *Backend) updateLista(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req api.ListaRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.listaIndexLocked(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Lista %d não encontrada", id))
		return
	}
	b.listas[idx].Nome = req.Nome
	b.listas[idx].UsuarioID = req.UsuarioID
	writeJSON(w, http.StatusOK, b.listaLocked(b.listas[idx], false))
}

func (b *Backend) deleteLista(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.listaIndexLocked(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Lista %d não encontrada", id))
		return
	}
	b.listas = slices.Delete(b.listas, idx, idx+1)
	w.WriteHeader(http.StatusNoContent)
}

// addItem updates the existing entry when the product is already listed, so a
// list never holds two entries for one product.
func (b *Backend) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req api.ItemRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.listaIndexLocked(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Lista %d não encontrada", id))
		return
	}
	if !slices.ContainsFunc(b.produtos, func(p produtoRow) bool { return p.ID == req.ProdutoID }) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Produto %d não encontrado", req.ProdutoID))
		return
	}
	if msg := checkItem(req.Quantidade, req.PrecoUnitario); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	lista := &b.listas[idx]
	if i := slices.IndexFunc(lista.Itens, func(it itemRow) bool { return it.ProdutoID == req.ProdutoID }); i >= 0 {
		lista.Itens[i].Quantidade = req.Quantidade
		lista.Itens[i].PrecoUnitario = req.PrecoUnitario
	} else {
		lista.Itens = append(lista.Itens, itemRow{
			ProdutoID:     req.ProdutoID,
			Quantidade:    req.Quantidade,
			PrecoUnitario: req.PrecoUnitario,
		})
	}
	writeJSON(w, http.StatusCreated, b.listaLocked(*lista, true))
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	produtoID, ok := pathID(w, r, "produtoId")
	if !ok {
		return
	}
	var req api.ItemUpdateRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.listaIndexLocked(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Lista %d não encontrada", id))
		return
	}
	if msg := checkItem(req.Quantidade, req.PrecoUnitario); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	lista := &b.listas[idx]
	i := slices.IndexFunc(lista.Itens, func(it itemRow) bool { return it.ProdutoID == produtoID })
	if i < 0 {
		writeError(w, http.StatusNotFound, "Item não encontrado na lista")
		return
	}
	lista.Itens[i].Quantidade = req.Quantidade
	lista.Itens[i].PrecoUnitario = req.PrecoUnitario
	writeJSON(w, http.StatusOK, b.listaLocked(*lista, true))
}

func (b *Backend) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	produtoID, ok := pathID(w, r, "produtoId")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.listaIndexLocked(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Lista %d não encontrada", id))
		return
	}
	lista := &b.listas[idx]
	i := slices.IndexFunc(lista.Itens, func(it itemRow) bool { return it.ProdutoID == produtoID })
	if i < 0 {
		writeError(w, http.StatusNotFound, "Item não encontrado na lista")
		return
	}
	lista.Itens = slices.Delete(lista.Itens, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func checkItem(quantidade int, preco *float64) string {
	if quantidade < 1 {
		return "A quantidade deve ser maior que zero"
	}
	if preco != nil && *preco < 0 {
		return "O preço unitário não pode ser negativo"
	}
	return ""
}

func (b *Backend) listaIndexLocked(id int64) int {
	return slices.IndexFunc(b.listas, func(l listaRow) bool { return l.ID == id })
}

func (b *Backend) listaLocked(l listaRow, withItens bool) api.Lista {
	out := api.Lista{ID: l.ID, Nome: l.Nome, UsuarioID: l.UsuarioID, DataCriacao: l.DataCriacao}
	if !withItens {
		return out
	}
	out.Itens = make([]api.ItemLista, 0, len(l.Itens))
	for _, it := range l.Itens {
		item := api.ItemLista{Quantidade: it.Quantidade, PrecoUnitario: it.PrecoUnitario, Comprado: it.Comprado}
		if pi := slices.IndexFunc(b.produtos, func(p produtoRow) bool { return p.ID == it.ProdutoID }); pi >= 0 {
			item.Produto = b.produtoLocked(b.produtos[pi])
		} else {
			item.Produto = api.Produto{ID: it.ProdutoID}
		}
		out.Itens = append(out.Itens, item)
	}
	return out
}

func (b *Backend) allocate() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) bump(id int64) {
	if id > b.nextID {
		b.nextID = id
	}
}

// --- helpers ---

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Identificador inválido: %q", chi.URLParam(r, name)))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeFailure(w http.ResponseWriter, f Failure) {
	if f.Message == "" {
		writeJSON(w, f.Status, map[string]string{"error": http.StatusText(f.Status)})
		return
	}
	writeError(w, f.Status, f.Message)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
