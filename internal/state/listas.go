package state

import (
	"context"
	"log/slog"

	"github.com/five82/despensa/internal/api"
)

var listaMessages = Messages{
	Fetch:  "Falha ao buscar listas",
	Create: "Erro ao adicionar lista",
	Update: "Erro ao atualizar lista",
	Delete: "Falha ao excluir a lista.",
}

const (
	itemSaveFailure   = "Ocorreu um erro ao salvar o item."
	itemRemoveFailure = "Falha ao remover item"
)

// ListaStore owns shopping lists and their nested items.
//
// AddItem and UpdateItem trust the backend's full-list response and replace the
// stored list wholesale. RemoveItem gets no body back and filters locally.
// A metadata Update whose response omits itens keeps the items already held.
type ListaStore struct {
	*Store[api.Lista, api.ListaRequest]
	backend api.Backend
}

// NewListaStore builds the shopping-list store over backend.
func NewListaStore(backend api.Backend, logger *slog.Logger) *ListaStore {
	return &ListaStore{
		Store: New(Config[api.Lista, api.ListaRequest]{
			Name:      "listas",
			Resource:  listaResource{backend},
			Messages:  listaMessages,
			Logger:    logger,
			Normalize: normalizeLista,
			Merge:     carryItens,
			Clone:     api.Lista.Clone,
		}),
		backend: backend,
	}
}

// AddItem adds a product to listaID.
func (s *ListaStore) AddItem(ctx context.Context, listaID int64, req api.ItemRequest) (api.Lista, error) {
	lista, err := s.backend.AddItem(ctx, listaID, req)
	if err != nil {
		return api.Lista{}, newOpError(s.name, "add_item", err, itemSaveFailure)
	}
	s.replace("add_item", listaID, lista)
	return lista.Clone(), nil
}

// UpdateItem changes the item for produtoID in listaID.
func (s *ListaStore) UpdateItem(ctx context.Context, listaID, produtoID int64, req api.ItemUpdateRequest) (api.Lista, error) {
	lista, err := s.backend.UpdateItem(ctx, listaID, produtoID, req)
	if err != nil {
		return api.Lista{}, newOpError(s.name, "update_item", err, itemSaveFailure)
	}
	s.replace("update_item", listaID, lista)
	return lista.Clone(), nil
}

// RemoveItem removes the item for produtoID from listaID.
func (s *ListaStore) RemoveItem(ctx context.Context, listaID, produtoID int64) error {
	if err := s.backend.RemoveItem(ctx, listaID, produtoID); err != nil {
		return newOpError(s.name, "remove_item", err, itemRemoveFailure)
	}
	s.modify("remove_item", listaID, func(l api.Lista) api.Lista {
		kept := make([]api.ItemLista, 0, len(l.Itens))
		for _, item := range l.Itens {
			if item.Produto.ID != produtoID {
				kept = append(kept, item)
			}
		}
		l.Itens = kept
		return l
	})
	return nil
}

// normalizeLista gives lists created without itens an empty slice.
func normalizeLista(l api.Lista) api.Lista {
	if l.Itens == nil {
		l.Itens = []api.ItemLista{}
	}
	return l
}

// carryItens restores the stored items when an update response omitted them.
// A response that does carry itens is authoritative.
func carryItens(prev, next api.Lista) api.Lista {
	if next.Itens == nil {
		next.Itens = prev.Itens
	}
	return next
}
