package service_test

import (
	"context"
	"testing"

	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abrirComanda(t *testing.T, f *fixture, ator service.Ator) uuid.UUID {
	t.Helper()
	resp, err := f.comandaSvc.Criar(context.Background(), ator, dto.CriarComandaRequest{})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func adicionar(t *testing.T, f *fixture, ator service.Ator, comandaID uuid.UUID, p *model.Produto, qtd string) *dto.AdicionarItemResponse {
	t.Helper()
	resp, err := f.comandaSvc.AdicionarItem(context.Background(), ator, comandaID, dto.AdicionarItemRequest{
		ProdutoID: p.ID.String(), Quantidade: dec(qtd),
	})
	require.NoError(t, err)
	return resp
}

// somaItens recomputes a comanda total from its item rows.
func somaItens(f *fixture, comandaID uuid.UUID) decimal.Decimal {
	itens, _ := f.comandas.ListItensTx(nil, comandaID)
	total := decimal.Zero
	for _, it := range itens {
		total = total.Add(it.Total)
	}
	return total
}

func TestCriarComandaNumeraSequencialmente(t *testing.T) {
	f := newFixture()
	mesa := "7"

	a, err := f.comandaSvc.Criar(context.Background(), f.vendedor, dto.CriarComandaRequest{Mesa: &mesa})
	require.NoError(t, err)
	b, err := f.comandaSvc.Criar(context.Background(), f.vendedor, dto.CriarComandaRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.Numero)
	assert.Equal(t, int64(2), b.Numero)
	assert.Equal(t, "ABERTA", a.Status)
	assert.Equal(t, f.vendedor.ID.String(), a.VendedorID)
	assert.Equal(t, "7", *a.Mesa)
	assert.True(t, a.ValorTotal.IsZero())
}

func TestAdicionarERemoverItemRestauraEstoqueETotal(t *testing.T) {
	f := newFixture()
	p := f.simples("Caipirinha", "10.00", "5")
	id := abrirComanda(t, f, f.vendedor)

	resp := adicionar(t, f, f.vendedor, id, p, "3")
	assert.Equal(t, "30.00", resp.ValorTotal.StringFixed(2))
	assert.Equal(t, "30.00", resp.Item.Total.StringFixed(2))
	assert.Equal(t, "Caipirinha", resp.Item.ProdutoNome)
	assert.Equal(t, "2", saldo(t, f, p))

	baixas := f.store.movsDoProduto(p.ID, model.MovBaixa)
	require.Len(t, baixas, 1)
	assert.Equal(t, "Comanda #1", baixas[0].Detalhe)
	assert.Equal(t, resp.Item.ID, baixas[0].ItemComandaID.String())

	comanda, err := f.comandaSvc.RemoverItem(context.Background(), f.vendedor, uuid.MustParse(resp.Item.ID))
	require.NoError(t, err)
	assert.Equal(t, "0.00", comanda.ValorTotal.StringFixed(2))
	assert.Equal(t, "5", saldo(t, f, p))
	assert.Len(t, f.store.movsDoProduto(p.ID, model.MovEstorno), 1)
}

func TestRemoverItemDuasVezes(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "5")
	id := abrirComanda(t, f, f.vendedor)
	resp := adicionar(t, f, f.vendedor, id, p, "1")
	itemID := uuid.MustParse(resp.Item.ID)

	_, err := f.comandaSvc.RemoverItem(context.Background(), f.vendedor, itemID)
	require.NoError(t, err)
	_, err = f.comandaSvc.RemoverItem(context.Background(), f.vendedor, itemID)
	assert.ErrorIs(t, err, service.ErrInvalidTabState)
	assert.Equal(t, 1, f.store.contarMovs(model.MovEstorno))
}

func TestTotalDaComandaIgualSomaDosItens(t *testing.T) {
	f := newFixture()
	a := f.simples("Cerveja", "8.50", "20")
	b := f.simples("Porção", "32.90", "20")
	id := abrirComanda(t, f, f.vendedor)

	adicionar(t, f, f.vendedor, id, a, "2")
	r := adicionar(t, f, f.vendedor, id, b, "1")
	adicionar(t, f, f.vendedor, id, a, "3")
	_, err := f.comandaSvc.RemoverItem(context.Background(), f.vendedor, uuid.MustParse(r.Item.ID))
	require.NoError(t, err)

	c, err := f.comandaSvc.Obter(context.Background(), f.vendedor, id)
	require.NoError(t, err)
	assert.Equal(t, "42.50", c.ValorTotal.StringFixed(2))
	assert.True(t, c.ValorTotal.Equal(somaItens(f, id)))
}

func TestAdicionarItemSemEstoqueNaoAlteraComanda(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "1")
	id := abrirComanda(t, f, f.vendedor)

	_, err := f.comandaSvc.AdicionarItem(context.Background(), f.vendedor, id, dto.AdicionarItemRequest{
		ProdutoID: p.ID.String(), Quantidade: dec("2"),
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	itens, _ := f.comandas.ListItensTx(nil, id)
	assert.Empty(t, itens)
	assert.Empty(t, f.store.movs)
}

func TestAdicionarItemCombo(t *testing.T) {
	f := newFixture()
	vodka := f.simples("Vodka", "0", "10")
	energ := f.simples("Energético", "0", "9")
	combo := f.combo("Combo", "45.00", map[*model.Produto]string{vodka: "2", energ: "3"})
	id := abrirComanda(t, f, f.vendedor)

	resp := adicionar(t, f, f.vendedor, id, combo, "1")
	assert.Equal(t, "45.00", resp.ValorTotal.StringFixed(2))
	assert.Equal(t, "8", saldo(t, f, vodka))
	assert.Equal(t, "6", saldo(t, f, energ))

	n, _, err := f.estoque.DisponibilidadeCombo(context.Background(), nil, combo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCancelarEstornaTudo(t *testing.T) {
	f := newFixture()
	a := f.simples("A", "5.00", "10")
	b := f.simples("B", "0", "6")
	combo := f.combo("AB", "12.00", map[*model.Produto]string{a: "1", b: "2"})
	id := abrirComanda(t, f, f.vendedor)

	adicionar(t, f, f.vendedor, id, a, "2")
	adicionar(t, f, f.vendedor, id, combo, "2")
	baixas := f.store.contarMovs(model.MovBaixa)
	require.Equal(t, 3, baixas)

	resp, err := f.comandaSvc.Cancelar(context.Background(), f.vendedor, id)
	require.NoError(t, err)
	assert.Equal(t, "CANCELADA", resp.Status)
	assert.True(t, resp.ValorTotal.IsZero())
	assert.Equal(t, baixas, f.store.contarMovs(model.MovEstorno))
	assert.Equal(t, "10", saldo(t, f, a))
	assert.Equal(t, "6", saldo(t, f, b))

	itens, _ := f.comandas.ListItensTx(nil, id)
	assert.Empty(t, itens)
}

func TestComandaFechadaRecusaAlteracoes(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "10")
	id := abrirComanda(t, f, f.vendedor)
	r := adicionar(t, f, f.vendedor, id, p, "1")

	_, err := f.comandaSvc.Finalizar(context.Background(), f.vendedor, id)
	require.NoError(t, err)

	_, err = f.comandaSvc.AdicionarItem(context.Background(), f.vendedor, id, dto.AdicionarItemRequest{
		ProdutoID: p.ID.String(), Quantidade: dec("1"),
	})
	assert.ErrorIs(t, err, service.ErrInvalidTabState)

	_, err = f.comandaSvc.RemoverItem(context.Background(), f.vendedor, uuid.MustParse(r.Item.ID))
	assert.ErrorIs(t, err, service.ErrInvalidTabState)

	_, err = f.comandaSvc.Cancelar(context.Background(), f.vendedor, id)
	assert.ErrorIs(t, err, service.ErrInvalidTabState)

	_, err = f.comandaSvc.Finalizar(context.Background(), f.vendedor, id)
	assert.ErrorIs(t, err, service.ErrInvalidTabState)

	assert.Equal(t, "9", saldo(t, f, p))
}

func TestComandaInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.comandaSvc.Finalizar(context.Background(), f.vendedor, uuid.New())
	assert.ErrorIs(t, err, service.ErrInvalidTabState)

	_, err = f.comandaSvc.Obter(context.Background(), f.vendedor, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestComandaDeOutroVendedor(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "10")
	id := abrirComanda(t, f, f.vendedor)

	_, err := f.comandaSvc.AdicionarItem(context.Background(), f.outro, id, dto.AdicionarItemRequest{
		ProdutoID: p.ID.String(), Quantidade: dec("1"),
	})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.comandaSvc.Obter(context.Background(), f.outro, id)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Admins may act on any tab.
	adicionar(t, f, f.admin, id, p, "1")
	_, err = f.comandaSvc.Cancelar(context.Background(), f.admin, id)
	assert.NoError(t, err)
}

func TestListarAbertasFiltraPorVendedor(t *testing.T) {
	f := newFixture()
	abrirComanda(t, f, f.vendedor)
	abrirComanda(t, f, f.vendedor)
	fechada := abrirComanda(t, f, f.vendedor)
	abrirComanda(t, f, f.outro)
	_, err := f.comandaSvc.Cancelar(context.Background(), f.vendedor, fechada)
	require.NoError(t, err)

	minhas, err := f.comandaSvc.ListarAbertas(context.Background(), f.vendedor)
	require.NoError(t, err)
	assert.Len(t, minhas, 2)

	todas, err := f.comandaSvc.ListarAbertas(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Len(t, todas, 3)
}

func TestListarItensDaComanda(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "10")
	id := abrirComanda(t, f, f.vendedor)
	adicionar(t, f, f.vendedor, id, p, "2")

	resp, err := f.comandaSvc.ListarItens(context.Background(), f.vendedor, id)
	require.NoError(t, err)
	assert.Equal(t, "16.00", resp.Comanda.ValorTotal.StringFixed(2))
	require.Len(t, resp.Itens, 1)
	assert.Equal(t, "Cerveja", resp.Itens[0].ProdutoNome)
}

func TestFinalizarRegistraVendaNoCaixaAberto(t *testing.T) {
	f := newFixture()
	_, err := f.caixaSvc.Abrir(context.Background(), dto.AbrirCaixaRequest{SaldoInicial: dec("100")})
	require.NoError(t, err)

	p := f.simples("Cerveja", "8.00", "10")
	id := abrirComanda(t, f, f.vendedor)
	adicionar(t, f, f.vendedor, id, p, "2")

	resp, err := f.comandaSvc.Finalizar(context.Background(), f.vendedor, id)
	require.NoError(t, err)
	assert.Equal(t, "FINALIZADA", resp.Status)

	vendas := f.store.movimentosCaixa(model.CaixaMovVenda)
	require.Len(t, vendas, 1)
	assert.Equal(t, "16.00", vendas[0].Valor.StringFixed(2))
	assert.Equal(t, "Comanda #1", *vendas[0].Descricao)
}

func TestFinalizarSemCaixaOuSemValor(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "10")

	id := abrirComanda(t, f, f.vendedor)
	adicionar(t, f, f.vendedor, id, p, "1")
	_, err := f.comandaSvc.Finalizar(context.Background(), f.vendedor, id)
	require.NoError(t, err)

	_, err = f.caixaSvc.Abrir(context.Background(), dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	vazia := abrirComanda(t, f, f.vendedor)
	_, err = f.comandaSvc.Finalizar(context.Background(), f.vendedor, vazia)
	require.NoError(t, err)

	assert.Empty(t, f.store.movimentosCaixa(model.CaixaMovVenda))
}

func TestResumoDia(t *testing.T) {
	f := newFixture()
	p := f.simples("Cerveja", "8.00", "20")

	a := abrirComanda(t, f, f.vendedor)
	adicionar(t, f, f.vendedor, a, p, "2")
	_, err := f.comandaSvc.Finalizar(context.Background(), f.vendedor, a)
	require.NoError(t, err)

	b := abrirComanda(t, f, f.outro)
	adicionar(t, f, f.outro, b, p, "1")
	_, err = f.comandaSvc.Finalizar(context.Background(), f.outro, b)
	require.NoError(t, err)

	// Open tabs are not part of the summary.
	c := abrirComanda(t, f, f.vendedor)
	adicionar(t, f, f.vendedor, c, p, "5")

	todos, err := f.comandaSvc.ResumoDia(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, "24.00", todos.TotalGeral.StringFixed(2))
	assert.Len(t, todos.Vendedores, 2)

	meu, err := f.comandaSvc.ResumoDia(context.Background(), f.vendedor)
	require.NoError(t, err)
	assert.Equal(t, "16.00", meu.TotalGeral.StringFixed(2))
	require.Len(t, meu.Vendedores, 1)
	assert.Equal(t, int64(1), meu.Vendedores[0].Comandas)
}
