package service_test

import (
	"time"

	"barcontrol/internal/model"
	"barcontrol/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixture wires every service over one in-memory store. The nil TxRunner runs each
// transaction body directly.
type fixture struct {
	store    *memStore
	produtos *stubProdutoRepo
	movs     *stubMovRepo
	comandas *stubComandaRepo
	caixas   *stubCaixaRepo
	alertas  *stubAlertas

	estoque    service.EstoqueService
	produtoSvc service.ProdutoService
	comandaSvc service.ComandaService
	caixaSvc   service.CaixaService
	vendedor   service.Ator
	outro      service.Ator
	admin      service.Ator
}

func newFixture() *fixture {
	s := newMemStore()
	f := &fixture{
		store:    s,
		produtos: &stubProdutoRepo{s: s},
		movs:     &stubMovRepo{s: s},
		comandas: &stubComandaRepo{s: s},
		caixas:   &stubCaixaRepo{s: s},
		alertas:  &stubAlertas{},
		vendedor: service.Ator{ID: uuid.New(), Username: "joao", Role: model.RoleVendedor},
		outro:    service.Ator{ID: uuid.New(), Username: "maria", Role: model.RoleVendedor},
		admin:    service.Ator{ID: uuid.New(), Username: "admin", Role: model.RoleAdmin},
	}
	f.estoque = service.NewEstoqueService(f.produtos, f.movs, nil, f.alertas)
	f.produtoSvc = service.NewProdutoService(f.produtos, f.estoque, nil)
	f.comandaSvc = service.NewComandaService(f.comandas, f.caixas, f.movs, f.estoque, nil, time.UTC)
	f.caixaSvc = service.NewCaixaService(f.caixas, f.estoque, nil, nil, time.UTC)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) simples(nome, preco, estoque string) *model.Produto {
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		Preco:         dec(preco),
		EstoqueAtual:  dec(estoque),
		EstoqueMinimo: decimal.Zero,
		Tipo:          model.ProdutoSimples,
		Ativo:         true,
	}
	f.store.produtos[p.ID] = p
	return p
}

// combo registers a COMBO product whose recipe maps component → quantity per unit.
func (f *fixture) combo(nome, preco string, receita map[*model.Produto]string) *model.Produto {
	c := &model.Produto{
		ID:    uuid.New(),
		Nome:  nome,
		Preco: dec(preco),
		Tipo:  model.ProdutoCombo,
		Ativo: true,
	}
	f.store.produtos[c.ID] = c
	for comp, qtd := range receita {
		f.store.componentes = append(f.store.componentes, model.ProdutoComponente{
			ID:           uuid.New(),
			ComboID:      c.ID,
			ComponenteID: comp.ID,
			Quantidade:   dec(qtd),
		})
	}
	return c
}

// entrada appends an ENTRADA row directly to the ledger.
func (f *fixture) entrada(p *model.Produto, qtd string) {
	f.store.movs = append(f.store.movs, model.MovEstoque{
		ID:         uuid.New(),
		ProdutoID:  p.ID,
		Tipo:       model.MovEntrada,
		Quantidade: dec(qtd),
		DataHora:   time.Now(),
	})
}

func (f *fixture) snapshot(p *model.Produto) decimal.Decimal {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.produtos[p.ID].EstoqueAtual
}
