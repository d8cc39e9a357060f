// Package form turns raw text typed into the TUI forms into request payloads,
// rejecting input the backend would refuse before anything is sent.
package form

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/five82/despensa/internal/api"
)

// User-facing validation messages.
const (
	MsgItemRequired      = "Produto e quantidade são obrigatórios."
	MsgQuantidade        = "A quantidade deve ser um número inteiro positivo."
	MsgPreco             = "O preço inserido é inválido."
	MsgCategoriaRequired = "O nome da categoria é obrigatório."
	MsgProdutoRequired   = "Nome e categoria são obrigatórios."
	MsgListaRequired     = "O nome da lista é obrigatório."
)

// Error is a validation failure tied to one input field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func fieldError(field, msg string) *Error {
	return &Error{Field: field, Message: msg}
}

// Quantidade parses a required positive integer.
func Quantidade(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fieldError("quantidade", MsgItemRequired)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 0, fieldError("quantidade", MsgQuantidade)
	}
	return n, nil
}

// precoPattern admits plain decimals only: digits with at most one comma or
// dot separator. Signs, exponents, hex floats, NaN and Inf are rejected.
var precoPattern = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)

// Preco parses an optional non-negative price. Blank input yields nil. Both
// "12,50" and "12.50" are accepted.
func Preco(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if !precoPattern.MatchString(text) {
		return nil, fieldError("preco", MsgPreco)
	}
	v, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fieldError("preco", MsgPreco)
	}
	return &v, nil
}

// FormatPreco renders p for editing, with a decimal comma. Nil renders empty.
func FormatPreco(p *float64) string {
	if p == nil {
		return ""
	}
	return strings.Replace(strconv.FormatFloat(*p, 'f', -1, 64), ".", ",", 1)
}

// Nome returns text trimmed, or msg as an error when it is blank.
func Nome(text, msg string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fieldError("nome", msg)
	}
	return text, nil
}

// Item builds the add-item payload. produtoID is zero when nothing was picked.
func Item(produtoID int64, quantidade, preco string) (api.ItemRequest, error) {
	if produtoID <= 0 {
		return api.ItemRequest{}, fieldError("produto", MsgItemRequired)
	}
	q, err := Quantidade(quantidade)
	if err != nil {
		return api.ItemRequest{}, err
	}
	p, err := Preco(preco)
	if err != nil {
		return api.ItemRequest{}, err
	}
	return api.ItemRequest{ProdutoID: produtoID, Quantidade: q, PrecoUnitario: p}, nil
}

// ItemUpdate builds the edit-item payload.
func ItemUpdate(quantidade, preco string) (api.ItemUpdateRequest, error) {
	q, err := Quantidade(quantidade)
	if err != nil {
		return api.ItemUpdateRequest{}, err
	}
	p, err := Preco(preco)
	if err != nil {
		return api.ItemUpdateRequest{}, err
	}
	return api.ItemUpdateRequest{Quantidade: q, PrecoUnitario: p}, nil
}

// Categoria builds a category payload. A blank descricao is omitted.
func Categoria(nome, descricao string) (api.CategoriaRequest, error) {
	n, err := Nome(nome, MsgCategoriaRequired)
	if err != nil {
		return api.CategoriaRequest{}, err
	}
	req := api.CategoriaRequest{Nome: n}
	if d := strings.TrimSpace(descricao); d != "" {
		req.Descricao = &d
	}
	return req, nil
}

// Produto builds a product payload.
func Produto(nome string, categoriaID int64) (api.ProdutoRequest, error) {
	n, err := Nome(nome, MsgProdutoRequired)
	if err != nil {
		return api.ProdutoRequest{}, err
	}
	if categoriaID <= 0 {
		return api.ProdutoRequest{}, fieldError("categoria", MsgProdutoRequired)
	}
	return api.ProdutoRequest{Nome: n, CategoriaID: categoriaID}, nil
}

// Lista builds a list payload owned by usuarioID.
func Lista(nome string, usuarioID int64) (api.ListaRequest, error) {
	n, err := Nome(nome, MsgListaRequired)
	if err != nil {
		return api.ListaRequest{}, err
	}
	return api.ListaRequest{Nome: n, UsuarioID: usuarioID}, nil
}
