package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by every repository stub ──────────────────────────

type memStore struct {
	mu sync.Mutex

	produtos    map[uuid.UUID]*model.Produto
	componentes []model.ProdutoComponente
	movs        []model.MovEstoque

	comandas map[uuid.UUID]*model.Comanda
	itens    []model.ItemComanda
	numero   int64

	caixas    []*model.Caixa
	caixaMovs []model.CaixaMov

	usuarios map[uuid.UUID]*model.Usuario
	logs     []model.LogAcao
}

func newMemStore() *memStore {
	return &memStore{
		produtos: make(map[uuid.UUID]*model.Produto),
		comandas: make(map[uuid.UUID]*model.Comanda),
		usuarios: make(map[uuid.UUID]*model.Usuario),
	}
}

// ── ProdutoRepository stub ───────────────────────────────────────────────────

type stubProdutoRepo struct{ s *memStore }

func (r *stubProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.s.produtos[p.ID] = &cp
	return nil
}

func (r *stubProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProdutoRepo) List(_ context.Context, filter repository.ProdutoFilter) ([]model.Produto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Produto
	for _, p := range r.s.produtos {
		switch filter.Ativo {
		case "all":
		case "false":
			if p.Ativo {
				continue
			}
		default:
			if !p.Ativo {
				continue
			}
		}
		if filter.Tipo != "" && string(p.Tipo) != filter.Tipo {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (r *stubProdutoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProdutoRepo) UpdateTx(_ *gorm.DB, p *model.Produto) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.produtos[p.ID] = &cp
	return nil
}

func (r *stubProdutoRepo) LockTx(_ *gorm.DB, ids []uuid.UUID) ([]model.Produto, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Produto
	for _, id := range repository.SortIDs(ids) {
		if p, ok := r.s.produtos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProdutoRepo) AjustarEstoqueTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.EstoqueAtual = p.EstoqueAtual.Add(delta)
	return nil
}

func (r *stubProdutoRepo) ListComponentesTx(_ *gorm.DB, comboID uuid.UUID) ([]model.ProdutoComponente, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ProdutoComponente
	for _, c := range r.s.componentes {
		if c.ComboID == comboID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ComponenteID.String() < out[j].ComponenteID.String()
	})
	return out, nil
}

func (r *stubProdutoRepo) SubstituirComponentesTx(_ *gorm.DB, comboID uuid.UUID, comps []model.ProdutoComponente) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.componentes[:0]
	for _, c := range r.s.componentes {
		if c.ComboID != comboID {
			kept = append(kept, c)
		}
	}
	r.s.componentes = append(kept, comps...)
	return nil
}

func (r *stubProdutoRepo) CountCombosComComponenteTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.componentes {
		if c.ComponenteID == id {
			n++
		}
	}
	return n, nil
}

func (r *stubProdutoRepo) DB() *gorm.DB { return nil }

// Ensure the stub satisfies the interface at compile time.
var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

// ── MovEstoqueRepository stub ────────────────────────────────────────────────

type stubMovRepo struct{ s *memStore }

func (r *stubMovRepo) CreateTx(_ *gorm.DB, m *model.MovEstoque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.s.movs = append(r.s.movs, *m)
	return nil
}

func (r *stubMovRepo) TotaisTx(_ *gorm.DB, produtoID uuid.UUID) (repository.TotaisMov, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := repository.TotaisMov{Entradas: decimal.Zero, Saidas: decimal.Zero}
	for _, m := range r.s.movs {
		if m.ProdutoID != produtoID {
			continue
		}
		t.Count++
		if m.Tipo == model.MovBaixa {
			t.Saidas = t.Saidas.Add(m.Quantidade)
		} else {
			t.Entradas = t.Entradas.Add(m.Quantidade)
		}
	}
	return t, nil
}

func (r *stubMovRepo) ListBaixasItemTx(_ *gorm.DB, itemID uuid.UUID) ([]model.MovEstoque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.MovEstoque
	for _, m := range r.s.movs {
		if m.Tipo == model.MovBaixa && m.ItemComandaID != nil && *m.ItemComandaID == itemID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovRepo) List(_ context.Context, filter repository.MovEstoqueFilter) ([]model.MovEstoque, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.MovEstoque
	for i := len(r.s.movs) - 1; i >= 0; i-- {
		m := r.s.movs[i]
		if filter.ProdutoID != nil && m.ProdutoID != *filter.ProdutoID {
			continue
		}
		if filter.Tipo != "" && string(m.Tipo) != filter.Tipo {
			continue
		}
		if p, ok := r.s.produtos[m.ProdutoID]; ok {
			cp := *p
			m.Produto = &cp
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovEstoqueRepository = (*stubMovRepo)(nil)

// movsDoProduto returns a product's ledger rows by kind.
func (s *memStore) movsDoProduto(produtoID uuid.UUID, tipo model.TipoMov) []model.MovEstoque {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MovEstoque
	for _, m := range s.movs {
		if m.ProdutoID == produtoID && m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

func (s *memStore) contarMovs(tipo model.TipoMov) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movs {
		if m.Tipo == tipo {
			n++
		}
	}
	return n
}

// ── ComandaRepository stub ───────────────────────────────────────────────────

type stubComandaRepo struct{ s *memStore }

func (r *stubComandaRepo) NextNumeroTx(_ *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.numero++
	return r.s.numero, nil
}

func (r *stubComandaRepo) CreateTx(_ *gorm.DB, c *model.Comanda) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.comandas[c.ID] = &cp
	return nil
}

func (r *stubComandaRepo) LockTx(_ *gorm.DB, id uuid.UUID) (*model.Comanda, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubComandaRepo) UpdateTx(_ *gorm.DB, c *model.Comanda) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.comandas[c.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Status = c.Status
	cur.ValorTotal = c.ValorTotal
	cur.UpdatedAt = time.Now()
	return nil
}

func (r *stubComandaRepo) CreateItemTx(_ *gorm.DB, item *model.ItemComanda) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.itens = append(r.s.itens, *item)
	return nil
}

func (r *stubComandaRepo) FindItemTx(_ *gorm.DB, itemID uuid.UUID) (*model.ItemComanda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.itens {
		if it.ID == itemID {
			cp := it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubComandaRepo) ListItensTx(_ *gorm.DB, comandaID uuid.UUID) ([]model.ItemComanda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ItemComanda
	for _, it := range r.s.itens {
		if it.ComandaID == comandaID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubComandaRepo) DeleteItemTx(_ *gorm.DB, itemID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, it := range r.s.itens {
		if it.ID == itemID {
			r.s.itens = append(r.s.itens[:i], r.s.itens[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubComandaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Comanda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comandas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubComandaRepo) ListItens(_ context.Context, comandaID uuid.UUID) ([]model.ItemComanda, error) {
	itens, _ := r.ListItensTx(nil, comandaID)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range itens {
		if p, ok := r.s.produtos[itens[i].ProdutoID]; ok {
			cp := *p
			itens[i].Produto = &cp
		}
	}
	return itens, nil
}

func (r *stubComandaRepo) ListAbertas(_ context.Context, vendedorID *uuid.UUID) ([]model.Comanda, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Comanda
	for _, c := range r.s.comandas {
		if !c.Aberta() {
			continue
		}
		if vendedorID != nil && c.VendedorID != *vendedorID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *stubComandaRepo) ResumoPorProduto(_ context.Context, _, _ time.Time, _ *uuid.UUID) ([]repository.ResumoProdutoRow, error) {
	return nil, nil
}

func (r *stubComandaRepo) ResumoPorVendedor(_ context.Context, inicio, fim time.Time, vendedorID *uuid.UUID) ([]repository.ResumoVendedorRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make(map[uuid.UUID]*repository.ResumoVendedorRow)
	for _, c := range r.s.comandas {
		if c.Status != model.ComandaFinalizada || c.UpdatedAt.Before(inicio) || !c.UpdatedAt.Before(fim) {
			continue
		}
		if vendedorID != nil && c.VendedorID != *vendedorID {
			continue
		}
		row, ok := rows[c.VendedorID]
		if !ok {
			row = &repository.ResumoVendedorRow{VendedorID: c.VendedorID, Total: decimal.Zero}
			rows[c.VendedorID] = row
		}
		row.Comandas++
		row.Total = row.Total.Add(c.ValorTotal)
	}
	out := make([]repository.ResumoVendedorRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *stubComandaRepo) DB() *gorm.DB { return nil }

var _ repository.ComandaRepository = (*stubComandaRepo)(nil)

// ── CaixaRepository stub ─────────────────────────────────────────────────────

type stubCaixaRepo struct{ s *memStore }

func (r *stubCaixaRepo) FindAbertoTx(_ *gorm.DB, _ bool) (*model.Caixa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.caixas {
		if c.Status == model.CaixaAberto {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubCaixaRepo) CreateTx(_ *gorm.DB, c *model.Caixa) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.caixas = append(r.s.caixas, &cp)
	return nil
}

func (r *stubCaixaRepo) UpdateTx(_ *gorm.DB, c *model.Caixa) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, cur := range r.s.caixas {
		if cur.ID == c.ID {
			cp := *c
			r.s.caixas[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCaixaRepo) CreateMovimentoTx(_ *gorm.DB, m *model.CaixaMov) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.caixaMovs = append(r.s.caixaMovs, *m)
	return nil
}

func (r *stubCaixaRepo) SumVendasTx(_ *gorm.DB, caixaID uuid.UUID, inicio, fim time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, m := range r.s.caixaMovs {
		if m.CaixaID == caixaID && m.Tipo == model.CaixaMovVenda &&
			!m.CriadoEm.Before(inicio) && m.CriadoEm.Before(fim) {
			total = total.Add(m.Valor)
		}
	}
	return total, nil
}

func (r *stubCaixaRepo) FindAtual(_ context.Context) (*model.Caixa, error) {
	aberto, _ := r.FindAbertoTx(nil, false)
	if aberto != nil {
		return aberto, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.caixas) == 0 {
		return nil, nil
	}
	cp := *r.s.caixas[len(r.s.caixas)-1]
	return &cp, nil
}

func (r *stubCaixaRepo) ListMovimentos(_ context.Context, caixaID uuid.UUID) ([]model.CaixaMov, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CaixaMov
	for i := len(r.s.caixaMovs) - 1; i >= 0; i-- {
		if r.s.caixaMovs[i].CaixaID == caixaID {
			out = append(out, r.s.caixaMovs[i])
		}
	}
	return out, nil
}

func (r *stubCaixaRepo) DB() *gorm.DB { return nil }

var _ repository.CaixaRepository = (*stubCaixaRepo)(nil)

func (s *memStore) movimentosCaixa(tipo model.CaixaMovTipo) []model.CaixaMov {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CaixaMov
	for _, m := range s.caixaMovs {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

// ── UsuarioRepository stub ───────────────────────────────────────────────────

type stubUsuarioRepo struct{ s *memStore }

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.usuarios {
		if u.Username == username && u.Ativo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) ExistsUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.usuarios {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Usuario, 0, len(r.s.usuarios))
	for _, u := range r.s.usuarios {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── AlertaPublisher stub ─────────────────────────────────────────────────────

type stubAlertas struct {
	mu      sync.Mutex
	alertas []dto.AlertaEstoque
}

func (a *stubAlertas) PublicarAlertaEstoque(_ context.Context, alerta dto.AlertaEstoque) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alertas = append(a.alertas, alerta)
}
