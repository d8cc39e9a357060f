package state

import (
	"context"
	"log/slog"

	"github.com/five82/despensa/internal/api"
)

// CategoriaStore owns the category collection.
type CategoriaStore = Store[api.Categoria, api.CategoriaRequest]

// ProdutoStore owns the product collection.
type ProdutoStore = Store[api.Produto, api.ProdutoRequest]

var (
	categoriaMessages = Messages{
		Fetch:  "Falha ao buscar categorias",
		Create: "Erro de servidor ao adicionar categoria",
		Update: "Erro ao atualizar categoria",
		Delete: "Erro ao deletar categoria. Verifique se não há produtos associados.",
	}
	produtoMessages = Messages{
		Fetch:  "Falha ao buscar produtos",
		Create: "Erro ao adicionar produto",
		Update: "Erro ao atualizar produto",
		Delete: "Erro ao deletar produto. Verifique se não está em uma lista.",
	}
)

// NewCategoriaStore builds the category store over backend.
func NewCategoriaStore(backend api.Backend, logger *slog.Logger) *CategoriaStore {
	return New(Config[api.Categoria, api.CategoriaRequest]{
		Name:     "categorias",
		Resource: categoriaResource{backend},
		Messages: categoriaMessages,
		Logger:   logger,
	})
}

// NewProdutoStore builds the product store over backend.
func NewProdutoStore(backend api.Backend, logger *slog.Logger) *ProdutoStore {
	return New(Config[api.Produto, api.ProdutoRequest]{
		Name:     "produtos",
		Resource: produtoResource{backend},
		Messages: produtoMessages,
		Logger:   logger,
	})
}

type categoriaResource struct{ b api.Backend }

func (r categoriaResource) List(ctx context.Context) ([]api.Categoria, error) {
	return r.b.ListCategorias(ctx)
}

func (r categoriaResource) Create(ctx context.Context, p api.CategoriaRequest) (api.Categoria, error) {
	return r.b.CreateCategoria(ctx, p)
}

func (r categoriaResource) Update(ctx context.Context, id int64, p api.CategoriaRequest) (api.Categoria, error) {
	return r.b.UpdateCategoria(ctx, id, p)
}

func (r categoriaResource) Delete(ctx context.Context, id int64) error {
	return r.b.DeleteCategoria(ctx, id)
}

type produtoResource struct{ b api.Backend }

func (r produtoResource) List(ctx context.Context) ([]api.Produto, error) {
	return r.b.ListProdutos(ctx)
}

func (r produtoResource) Create(ctx context.Context, p api.ProdutoRequest) (api.Produto, error) {
	return r.b.CreateProduto(ctx, p)
}

func (r produtoResource) Update(ctx context.Context, id int64, p api.ProdutoRequest) (api.Produto, error) {
	return r.b.UpdateProduto(ctx, id, p)
}

func (r produtoResource) Delete(ctx context.Context, id int64) error {
	return r.b.DeleteProduto(ctx, id)
}

type listaResource struct{ b api.Backend }

func (r listaResource) List(ctx context.Context) ([]api.Lista, error) {
	return r.b.ListListas(ctx)
}

func (r listaResource) Create(ctx context.Context, p api.ListaRequest) (api.Lista, error) {
	return r.b.CreateLista(ctx, p)
}

func (r listaResource) Update(ctx context.Context, id int64, p api.ListaRequest) (api.Lista, error) {
	return r.b.UpdateLista(ctx, id, p)
}

func (r listaResource) Delete(ctx context.Context, id int64) error {
	return r.b.DeleteLista(ctx, id)
}
