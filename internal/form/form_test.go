package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantidade(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr string
	}{
		{in: "2", want: 2},
		{in: "  10 ", want: 10},
		{in: "", wantErr: MsgItemRequired},
		{in: "   ", wantErr: MsgItemRequired},
		{in: "0", wantErr: MsgQuantidade},
		{in: "-3", wantErr: MsgQuantidade},
		{in: "1.5", wantErr: MsgQuantidade},
		{in: "dois", wantErr: MsgQuantidade},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Quantidade(tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreco(t *testing.T) {
	got, err := Preco("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Preco("12,50")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, *got, 1e-9)

	got, err = Preco(" 3.75 ")
	require.NoError(t, err)
	assert.InDelta(t, 3.75, *got, 1e-9)

	got, err = Preco("0")
	require.NoError(t, err)
	assert.Zero(t, *got)

	for _, bad := range []string{"-1", "abc", "1,2,3", "R$ 5",
		"NaN", "Inf", "+Inf", "-Inf", "0x1p3", "1e3", "+5", "1.", ",5", "1.2.3"} {
		_, err := Preco(bad)
		assert.EqualError(t, err, MsgPreco, bad)
	}
}

func TestItem_RejectsNonFinitePrice(t *testing.T) {
	_, err := Item(11, "1", "Inf")
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "preco", fe.Field)
	assert.Equal(t, MsgPreco, fe.Message)
}

func TestFormatPreco(t *testing.T) {
	v := 12.5
	assert.Equal(t, "12,5", FormatPreco(&v))
	assert.Empty(t, FormatPreco(nil))

	back, err := Preco(FormatPreco(&v))
	require.NoError(t, err)
	assert.InDelta(t, v, *back, 1e-9)
}

func TestItem(t *testing.T) {
	req, err := Item(9, "2", "4,5")
	require.NoError(t, err)
	assert.Equal(t, int64(9), req.ProdutoID)
	assert.Equal(t, 2, req.Quantidade)
	assert.InDelta(t, 4.5, *req.PrecoUnitario, 1e-9)

	_, err = Item(0, "2", "")
	assert.EqualError(t, err, MsgItemRequired)

	_, err = Item(9, "2", "-1")
	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "preco", fe.Field)
}

func TestItemUpdate(t *testing.T) {
	req, err := ItemUpdate("3", "")
	require.NoError(t, err)
	assert.Equal(t, 3, req.Quantidade)
	assert.Nil(t, req.PrecoUnitario)

	_, err = ItemUpdate("", "1")
	assert.EqualError(t, err, MsgItemRequired)
}

func TestNamedPayloads(t *testing.T) {
	cat, err := Categoria(" Casa ", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Casa", cat.Nome)
	assert.Nil(t, cat.Descricao)

	cat, err = Categoria("Casa", "Limpeza")
	require.NoError(t, err)
	assert.Equal(t, "Limpeza", *cat.Descricao)

	_, err = Categoria(" ", "x")
	assert.EqualError(t, err, MsgCategoriaRequired)

	_, err = Produto("Arroz", 0)
	assert.EqualError(t, err, MsgProdutoRequired)
	prod, err := Produto("Arroz", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), prod.CategoriaID)

	_, err = Lista("", 1)
	assert.EqualError(t, err, MsgListaRequired)
	lista, err := Lista("Feira", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.UsuarioID)
}
