package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeLayouts(t *testing.T) {
	if parseTime("2025-12-13T10:11:12Z").IsZero() {
		t.Fatalf("parseTime should parse RFC3339")
	}
	got := parseTime("2025-12-13T10:11:12.123456")
	if got.IsZero() {
		t.Fatalf("parseTime should parse LocalDateTime with fraction")
	}
	if got.Year() != 2025 || got.Month() != time.December || got.Day() != 13 {
		t.Fatalf("parseTime = %v, want 2025-12-13", got)
	}
	if !parseTime("yesterday").IsZero() {
		t.Fatalf("parseTime should return zero for garbage")
	}
}

func TestListaDecode_DistinguishesOmittedItens(t *testing.T) {
	var omitted Lista
	if err := json.Unmarshal([]byte(`{"id":1,"nome":"Feira"}`), &omitted); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if omitted.Itens != nil {
		t.Fatalf("Itens = %#v, want nil when omitted", omitted.Itens)
	}

	var empty Lista
	if err := json.Unmarshal([]byte(`{"id":1,"nome":"Feira","itens":[]}`), &empty); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if empty.Itens == nil || len(empty.Itens) != 0 {
		t.Fatalf("Itens = %#v, want empty non-nil", empty.Itens)
	}
}

func TestListaHelpers(t *testing.T) {
	preco := 2.5
	l := Lista{ID: 5, Itens: []ItemLista{
		{Produto: Produto{ID: 9}, Quantidade: 2, PrecoUnitario: &preco},
		{Produto: Produto{ID: 7}, Quantidade: 1},
	}}
	if got := l.Total(); got != 5 {
		t.Fatalf("Total = %v, want 5", got)
	}
	item, ok := l.Item(7)
	if !ok || item.Preco() != 0 {
		t.Fatalf("Item(7) = %#v ok=%v, want unpriced item", item, ok)
	}
	if _, ok := l.Item(1); ok {
		t.Fatalf("Item(1) found, want missing")
	}

	clone := l.Clone()
	clone.Itens[0].Quantidade = 99
	if l.Itens[0].Quantidade != 2 {
		t.Fatalf("Clone aliases Itens")
	}
	if (Lista{}).Clone().Itens != nil {
		t.Fatalf("Clone of nil Itens should stay nil")
	}
}

func TestCategoriaDescricaoOr(t *testing.T) {
	desc := "Limpeza"
	if got := (Categoria{Descricao: &desc}).DescricaoOr("-"); got != "Limpeza" {
		t.Fatalf("DescricaoOr = %q", got)
	}
	if got := (Categoria{}).DescricaoOr("Sem descrição"); got != "Sem descrição" {
		t.Fatalf("DescricaoOr = %q", got)
	}
}
