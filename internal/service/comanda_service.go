package service

import (
	"context"
	"fmt"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComandaService drives the tab lifecycle: ABERTA → FINALIZADA | CANCELADA.
// Every write locks the comanda row first, so concurrent edits of one tab serialize.
type ComandaService interface {
	Criar(ctx context.Context, ator Ator, req dto.CriarComandaRequest) (*dto.ComandaResponse, error)
	AdicionarItem(ctx context.Context, ator Ator, comandaID uuid.UUID, req dto.AdicionarItemRequest) (*dto.AdicionarItemResponse, error)
	RemoverItem(ctx context.Context, ator Ator, itemID uuid.UUID) (*dto.ComandaResponse, error)
	Cancelar(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error)
	Finalizar(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error)

	Obter(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error)
	ListarAbertas(ctx context.Context, ator Ator) ([]dto.ComandaResponse, error)
	ListarItens(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaItensResponse, error)
	ResumoDia(ctx context.Context, ator Ator) (*dto.ResumoDiaResponse, error)
}

type comandaService struct {
	comandas repository.ComandaRepository
	caixas   repository.CaixaRepository
	movs     repository.MovEstoqueRepository
	estoque  EstoqueService
	tx       *TxRunner
	loc      *time.Location
	now      func() time.Time
}

func NewComandaService(
	comandas repository.ComandaRepository,
	caixas repository.CaixaRepository,
	movs repository.MovEstoqueRepository,
	estoque EstoqueService,
	tx *TxRunner,
	loc *time.Location,
) ComandaService {
	if loc == nil {
		loc = time.UTC
	}
	return &comandaService{
		comandas: comandas,
		caixas:   caixas,
		movs:     movs,
		estoque:  estoque,
		tx:       tx,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *comandaService) Criar(ctx context.Context, ator Ator, req dto.CriarComandaRequest) (*dto.ComandaResponse, error) {
	var c model.Comanda
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		numero, err := s.comandas.NextNumeroTx(tx)
		if err != nil {
			return fmt.Errorf("gerando número da comanda: %w", err)
		}
		now := s.now()
		c = model.Comanda{
			ID:         uuid.New(),
			Numero:     numero,
			VendedorID: ator.ID,
			Mesa:       req.Mesa,
			Observacao: req.Observacao,
			Status:     model.ComandaAberta,
			ValorTotal: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.comandas.CreateTx(tx, &c)
	})
	if err != nil {
		return nil, err
	}
	resp := comandaToResponse(&c)
	return &resp, nil
}

// travarComanda locks the comanda and checks ownership and state.
func (s *comandaService) travarComanda(tx *gorm.DB, ator Ator, comandaID uuid.UUID) (*model.Comanda, error) {
	c, err := s.comandas.LockTx(tx, comandaID)
	if err != nil {
		if isNotFound(err) {
			return nil, newErr(KindInvalidTabState, "Comanda não encontrada")
		}
		return nil, fmt.Errorf("travando comanda: %w", err)
	}
	if !ator.podeAcessar(c.VendedorID) {
		return nil, newErr(KindForbidden, "Comanda pertence a outro vendedor")
	}
	if !c.Aberta() {
		return nil, newErr(KindInvalidTabState, "Comanda #%d não está aberta (%s)", c.Numero, c.Status)
	}
	return c, nil
}

func (s *comandaService) AdicionarItem(ctx context.Context, ator Ator, comandaID uuid.UUID, req dto.AdicionarItemRequest) (*dto.AdicionarItemResponse, error) {
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, newErr(KindInvalidProduct, "produto_id inválido")
	}

	var item model.ItemComanda
	var total decimal.Decimal
	var nome string
	var afetados []uuid.UUID
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		c, err := s.travarComanda(tx, ator, comandaID)
		if err != nil {
			return err
		}

		// The item id is allocated up front so the BAIXA rows can point at it.
		itemID := uuid.New()
		r, err := s.estoque.Reservar(ctx, tx, ReservaInput{
			ProdutoID:  produtoID,
			Quantidade: req.Quantidade,
			ComandaID:  &c.ID,
			ItemID:     &itemID,
			Detalhe:    fmt.Sprintf("Comanda #%d", c.Numero),
		})
		if err != nil {
			return err
		}

		item = model.ItemComanda{
			ID:            itemID,
			ComandaID:     c.ID,
			ProdutoID:     produtoID,
			Quantidade:    r.Quantidade,
			PrecoUnitario: r.PrecoUnitario,
			Total:         r.Total,
			CreatedAt:     s.now(),
		}
		if err := s.comandas.CreateItemTx(tx, &item); err != nil {
			return fmt.Errorf("criando item: %w", err)
		}

		c.ValorTotal = c.ValorTotal.Add(r.Total)
		if err := s.comandas.UpdateTx(tx, c); err != nil {
			return fmt.Errorf("atualizando comanda: %w", err)
		}
		total = c.ValorTotal
		nome = r.Produto.Nome
		afetados = produtosAfetados(r.Movimentos)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.estoque.VerificarMinimos(ctx, afetados)
	resp := itemToResponse(&item, nome)
	return &dto.AdicionarItemResponse{Item: resp, ValorTotal: total}, nil
}

func (s *comandaService) RemoverItem(ctx context.Context, ator Ator, itemID uuid.UUID) (*dto.ComandaResponse, error) {
	var c *model.Comanda
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		item, err := s.comandas.FindItemTx(tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return newErr(KindInvalidTabState, "Item não encontrado")
			}
			return fmt.Errorf("buscando item: %w", err)
		}
		c, err = s.travarComanda(tx, ator, item.ComandaID)
		if err != nil {
			return err
		}
		// Re-read under the comanda lock: a concurrent removal may have won the race.
		item, err = s.comandas.FindItemTx(tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return newErr(KindInvalidTabState, "Item não encontrado")
			}
			return fmt.Errorf("buscando item: %w", err)
		}
		return s.removerItemTx(ctx, tx, c, item)
	})
	if err != nil {
		return nil, err
	}
	resp := comandaToResponse(c)
	return &resp, nil
}

// removerItemTx releases the item's stock and takes its total off the comanda.
// The comanda must already be locked by the caller.
func (s *comandaService) removerItemTx(ctx context.Context, tx *gorm.DB, c *model.Comanda, item *model.ItemComanda) error {
	if _, err := s.estoque.Estornar(ctx, tx, item); err != nil {
		return err
	}
	c.ValorTotal = c.ValorTotal.Sub(item.Total)
	if err := s.comandas.DeleteItemTx(tx, item.ID); err != nil {
		return fmt.Errorf("removendo item: %w", err)
	}
	if err := s.comandas.UpdateTx(tx, c); err != nil {
		return fmt.Errorf("atualizando comanda: %w", err)
	}
	return nil
}

func (s *comandaService) Cancelar(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	var c *model.Comanda
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		var err error
		c, err = s.travarComanda(tx, ator, comandaID)
		if err != nil {
			return err
		}
		itens, err := s.comandas.ListItensTx(tx, c.ID)
		if err != nil {
			return fmt.Errorf("listando itens: %w", err)
		}

		// Lock every product the reversals will touch, ascending, before the first write.
		var ids []uuid.UUID
		for _, it := range itens {
			baixas, err := s.movs.ListBaixasItemTx(tx, it.ID)
			if err != nil {
				return fmt.Errorf("buscando baixas do item: %w", err)
			}
			if len(baixas) == 0 {
				ids = append(ids, it.ProdutoID)
			}
			ids = append(ids, produtosAfetados(baixas)...)
		}
		if err := s.estoque.TravarEstoque(ctx, tx, ids); err != nil {
			return err
		}

		for i := range itens {
			if err := s.removerItemTx(ctx, tx, c, &itens[i]); err != nil {
				return err
			}
		}
		c.Status = model.ComandaCancelada
		c.ValorTotal = decimal.Zero
		return s.comandas.UpdateTx(tx, c)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("numero", c.Numero).Msg("comanda cancelada")
	resp := comandaToResponse(c)
	return &resp, nil
}

func (s *comandaService) Finalizar(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	var c *model.Comanda
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		var err error
		c, err = s.travarComanda(tx, ator, comandaID)
		if err != nil {
			return err
		}
		c.Status = model.ComandaFinalizada
		if err := s.comandas.UpdateTx(tx, c); err != nil {
			return fmt.Errorf("atualizando comanda: %w", err)
		}
		if !c.ValorTotal.IsPositive() {
			return nil
		}

		caixa, err := s.caixas.FindAbertoTx(tx, true)
		if err != nil {
			return fmt.Errorf("buscando caixa aberto: %w", err)
		}
		if caixa == nil {
			log.Warn().Int64("numero", c.Numero).Msg("comanda finalizada sem caixa aberto")
			return nil
		}
		mov := model.CaixaMov{
			ID:        uuid.New(),
			CaixaID:   caixa.ID,
			Tipo:      model.CaixaMovVenda,
			Valor:     c.ValorTotal,
			Descricao: strPtr(fmt.Sprintf("Comanda #%d", c.Numero)),
			CriadoEm:  s.now(),
		}
		return s.caixas.CreateMovimentoTx(tx, &mov)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("numero", c.Numero).Str("total", c.ValorTotal.StringFixed(2)).Msg("comanda finalizada")
	resp := comandaToResponse(c)
	return &resp, nil
}

// ── Read projections ────────────────────────────────────────────────────────

func (s *comandaService) obter(ctx context.Context, ator Ator, comandaID uuid.UUID) (*model.Comanda, error) {
	c, err := s.comandas.FindByID(ctx, comandaID)
	if err != nil {
		if isNotFound(err) {
			return nil, newErr(KindNotFound, "Comanda não encontrada")
		}
		return nil, fmt.Errorf("buscando comanda: %w", err)
	}
	if !ator.podeAcessar(c.VendedorID) {
		return nil, newErr(KindForbidden, "Comanda pertence a outro vendedor")
	}
	return c, nil
}

func (s *comandaService) Obter(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaResponse, error) {
	c, err := s.obter(ctx, ator, comandaID)
	if err != nil {
		return nil, err
	}
	resp := comandaToResponse(c)
	return &resp, nil
}

func (s *comandaService) ListarAbertas(ctx context.Context, ator Ator) ([]dto.ComandaResponse, error) {
	var vendedor *uuid.UUID
	if !ator.Admin() {
		vendedor = &ator.ID
	}
	comandas, err := s.comandas.ListAbertas(ctx, vendedor)
	if err != nil {
		return nil, fmt.Errorf("listando comandas: %w", err)
	}
	out := make([]dto.ComandaResponse, 0, len(comandas))
	for i := range comandas {
		out = append(out, comandaToResponse(&comandas[i]))
	}
	return out, nil
}

func (s *comandaService) ListarItens(ctx context.Context, ator Ator, comandaID uuid.UUID) (*dto.ComandaItensResponse, error) {
	c, err := s.obter(ctx, ator, comandaID)
	if err != nil {
		return nil, err
	}
	itens, err := s.comandas.ListItens(ctx, comandaID)
	if err != nil {
		return nil, fmt.Errorf("listando itens: %w", err)
	}
	resp := &dto.ComandaItensResponse{
		Comanda: comandaToResponse(c),
		Itens:   make([]dto.ItemComandaResponse, 0, len(itens)),
	}
	for i := range itens {
		nome := ""
		if itens[i].Produto != nil {
			nome = itens[i].Produto.Nome
		}
		resp.Itens = append(resp.Itens, itemToResponse(&itens[i], nome))
	}
	return resp, nil
}

func (s *comandaService) ResumoDia(ctx context.Context, ator Ator) (*dto.ResumoDiaResponse, error) {
	inicio, fim := diaLocal(s.now(), s.loc)
	var vendedor *uuid.UUID
	if !ator.Admin() {
		vendedor = &ator.ID
	}

	produtos, err := s.comandas.ResumoPorProduto(ctx, inicio, fim, vendedor)
	if err != nil {
		return nil, fmt.Errorf("resumo por produto: %w", err)
	}
	vendedores, err := s.comandas.ResumoPorVendedor(ctx, inicio, fim, vendedor)
	if err != nil {
		return nil, fmt.Errorf("resumo por vendedor: %w", err)
	}

	resp := &dto.ResumoDiaResponse{
		Data:       inicio.Format("2006-01-02"),
		TotalGeral: decimal.Zero,
		Produtos:   make([]dto.ResumoProduto, 0, len(produtos)),
		Vendedores: make([]dto.ResumoVendedor, 0, len(vendedores)),
	}
	for _, p := range produtos {
		resp.Produtos = append(resp.Produtos, dto.ResumoProduto{
			ProdutoID:  p.ProdutoID.String(),
			Nome:       p.Nome,
			Quantidade: p.Quantidade,
			Total:      p.Total,
		})
	}
	for _, v := range vendedores {
		resp.TotalGeral = resp.TotalGeral.Add(v.Total)
		resp.Vendedores = append(resp.Vendedores, dto.ResumoVendedor{
			VendedorID: v.VendedorID.String(),
			Nome:       v.Nome,
			Comandas:   v.Comandas,
			Total:      v.Total,
		})
	}
	return resp, nil
}

// diaLocal returns [00:00, 24:00) of t's calendar day in loc.
func diaLocal(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	inicio := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return inicio, inicio.AddDate(0, 0, 1)
}

func comandaToResponse(c *model.Comanda) dto.ComandaResponse {
	r := dto.ComandaResponse{
		ID:         c.ID.String(),
		Numero:     c.Numero,
		VendedorID: c.VendedorID.String(),
		Mesa:       c.Mesa,
		Observacao: c.Observacao,
		Status:     string(c.Status),
		ValorTotal: c.ValorTotal,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Vendedor != nil {
		r.VendedorNome = c.Vendedor.Nome
	}
	return r
}

func itemToResponse(it *model.ItemComanda, nome string) dto.ItemComandaResponse {
	return dto.ItemComandaResponse{
		ID:            it.ID.String(),
		ComandaID:     it.ComandaID.String(),
		ProdutoID:     it.ProdutoID.String(),
		ProdutoNome:   nome,
		Quantidade:    it.Quantidade,
		PrecoUnitario: it.PrecoUnitario,
		Total:         it.Total,
		CreatedAt:     it.CreatedAt,
	}
}
