package api

import "time"

// backendTimestampLayout matches the zone-less LocalDateTime the backend emits.
const backendTimestampLayout = "2006-01-02T15:04:05"

// Categoria mirrors the category payload returned by /categorias.
type Categoria struct {
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao,omitempty"`
}

// EntityID returns the server-assigned identifier.
func (c Categoria) EntityID() int64 { return c.ID }

// DescricaoOr returns the description or fallback when unset or blank.
func (c Categoria) DescricaoOr(fallback string) string {
	if c.Descricao == nil || *c.Descricao == "" {
		return fallback
	}
	return *c.Descricao
}

// Produto mirrors /produtos. The category is embedded, not referenced.
type Produto struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	Categoria Categoria `json:"categoria"`
}

// EntityID returns the server-assigned identifier.
func (p Produto) EntityID() int64 { return p.ID }

// ItemLista is one line of a shopping list. Items are addressed by Produto.ID.
type ItemLista struct {
	Produto       Produto  `json:"produto"`
	Quantidade    int      `json:"quantidade"`
	PrecoUnitario *float64 `json:"precoUnitario,omitempty"`
	Comprado      bool     `json:"comprado"`
}

// Preco returns the unit price, treating an unset price as zero.
func (i ItemLista) Preco() float64 {
	if i.PrecoUnitario == nil {
		return 0
	}
	return *i.PrecoUnitario
}

// LineTotal returns quantidade × preco.
func (i ItemLista) LineTotal() float64 {
	return float64(i.Quantidade) * i.Preco()
}

// Lista mirrors /listas. A nil Itens means the response omitted the field,
// which is distinct from an empty list.
type Lista struct {
	ID          int64       `json:"id"`
	Nome        string      `json:"nome"`
	DataCriacao string      `json:"dataCriacao"`
	UsuarioID   int64       `json:"usuarioId"`
	Itens       []ItemLista `json:"itens"`
}

// EntityID returns the server-assigned identifier.
func (l Lista) EntityID() int64 { return l.ID }

// ParsedDataCriacao returns the creation timestamp as time.Time when possible.
func (l Lista) ParsedDataCriacao() time.Time {
	return parseTime(l.DataCriacao)
}

// Item returns the entry for produtoID.
func (l Lista) Item(produtoID int64) (ItemLista, bool) {
	for _, item := range l.Itens {
		if item.Produto.ID == produtoID {
			return item, true
		}
	}
	return ItemLista{}, false
}

// Total sums the line totals of every item.
func (l Lista) Total() float64 {
	var total float64
	for _, item := range l.Itens {
		total += item.LineTotal()
	}
	return total
}

// Clone returns a copy whose Itens slice does not alias the receiver's.
func (l Lista) Clone() Lista {
	out := l
	if l.Itens != nil {
		out.Itens = make([]ItemLista, len(l.Itens))
		copy(out.Itens, l.Itens)
	}
	return out
}

// CategoriaRequest is the body for POST/PUT /categorias.
type CategoriaRequest struct {
	Nome      string  `json:"nome" validate:"required"`
	Descricao *string `json:"descricao,omitempty"`
}

// ProdutoRequest is the body for POST/PUT /produtos.
type ProdutoRequest struct {
	Nome        string `json:"nome" validate:"required"`
	CategoriaID int64  `json:"categoriaId" validate:"required,gt=0"`
}

// ListaRequest is the body for POST/PUT /listas.
type ListaRequest struct {
	Nome      string `json:"nome" validate:"required"`
	UsuarioID int64  `json:"usuarioId" validate:"required,gt=0"`
}

// ItemRequest is the body for POST /listas/{id}/itens.
type ItemRequest struct {
	ProdutoID     int64    `json:"produtoId" validate:"required,gt=0"`
	Quantidade    int      `json:"quantidade" validate:"gte=1"`
	PrecoUnitario *float64 `json:"precoUnitario,omitempty" validate:"omitempty,gte=0"`
}

// ItemUpdateRequest is the body for PUT /listas/{id}/itens/{produtoId}.
type ItemUpdateRequest struct {
	Quantidade    int      `json:"quantidade" validate:"gte=1"`
	PrecoUnitario *float64 `json:"precoUnitario,omitempty" validate:"omitempty,gte=0"`
}

// errorBody is the shape of every error response the backend sends.
type errorBody struct {
	Message string `json:"message"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// LocalDateTime may carry fractional seconds; Go accepts them when parsing
	// even though the layout omits them.
	if t, err := time.ParseInLocation(backendTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
