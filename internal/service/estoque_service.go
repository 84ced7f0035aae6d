package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Messages surfaced by the combo resolver and the display projection.
const (
	motivoComboSemComponentes = "Combo sem componentes cadastrados"
	motivoComponenteInvalido  = "Componente inválido/inativo"
	motivoQuantidadeInvalida  = "Quantidade do componente inválida"
	motivoSemEstoque          = "Sem estoque"
	motivoSemComponentes      = "Sem componentes suficientes"
	motivoInativo             = "Produto inativo"

	detalheSaldoInicial = "Saldo inicial"
)

// AlertaPublisher receives low-stock notifications after a write commits.
type AlertaPublisher interface {
	PublicarAlertaEstoque(ctx context.Context, alerta dto.AlertaEstoque)
}

// ReservaInput describes one stock reservation. ComandaID and ItemID are nil for counter sales.
type ReservaInput struct {
	ProdutoID  uuid.UUID
	Quantidade decimal.Decimal
	ComandaID  *uuid.UUID
	ItemID     *uuid.UUID
	Detalhe    string
}

// Reserva is the outcome of a successful reservation.
type Reserva struct {
	Produto       model.Produto
	Quantidade    decimal.Decimal
	PrecoUnitario decimal.Decimal
	Total         decimal.Decimal
	Movimentos    []model.MovEstoque
}

// EstoqueService is the inventory engine: ledger balance, combo availability, reservation
// and reversal, plus manual intake/withdrawal. Methods taking a tx run on the caller's
// transaction and never commit on their own.
type EstoqueService interface {
	Saldo(ctx context.Context, tx *gorm.DB, produtoID uuid.UUID) (decimal.Decimal, error)
	DisponibilidadeCombo(ctx context.Context, tx *gorm.DB, comboID uuid.UUID) (int64, *string, error)
	Reservar(ctx context.Context, tx *gorm.DB, in ReservaInput) (*Reserva, error)
	Estornar(ctx context.Context, tx *gorm.DB, item *model.ItemComanda) ([]model.MovEstoque, error)
	// TravarEstoque locks, in ascending id order, every SIMPLES row that selling or reversing
	// the given products would touch (combos expand to their components).
	TravarEstoque(ctx context.Context, tx *gorm.DB, produtoIDs []uuid.UUID) error
	Display(ctx context.Context, tx *gorm.DB, p *model.Produto) (dto.ProdutoResponse, error)

	Entrada(ctx context.Context, produtoID uuid.UUID, req dto.EntradaEstoqueRequest) (*dto.EstoqueAjusteResponse, error)
	Saida(ctx context.Context, produtoID uuid.UUID, req dto.SaidaEstoqueRequest) (*dto.EstoqueAjusteResponse, error)
	ListarMovimentos(ctx context.Context, filter dto.MovEstoqueFilter) (*dto.MovEstoqueListResponse, error)
	// VerificarMinimos publishes an alert for each SIMPLES product at or below its minimum.
	VerificarMinimos(ctx context.Context, produtoIDs []uuid.UUID)
}

type estoqueService struct {
	produtos repository.ProdutoRepository
	movs     repository.MovEstoqueRepository
	tx       *TxRunner
	alertas  AlertaPublisher
	now      func() time.Time
}

func NewEstoqueService(
	produtos repository.ProdutoRepository,
	movs repository.MovEstoqueRepository,
	tx *TxRunner,
	alertas AlertaPublisher,
) EstoqueService {
	return &estoqueService{
		produtos: produtos,
		movs:     movs,
		tx:       tx,
		alertas:  alertas,
		now:      time.Now,
	}
}

// ── Balance ─────────────────────────────────────────────────────────────────

func (s *estoqueService) Saldo(ctx context.Context, tx *gorm.DB, produtoID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.produtos.FindByIDTx(tx, produtoID)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, newErr(KindInvalidProduct, "Produto não encontrado")
		}
		return decimal.Zero, fmt.Errorf("buscando produto: %w", err)
	}
	saldo, _, err := s.saldoProduto(tx, p)
	return saldo, err
}

// saldoProduto returns the balance and the number of ledger rows behind it.
// With no rows the snapshot is the balance.
func (s *estoqueService) saldoProduto(tx *gorm.DB, p *model.Produto) (decimal.Decimal, int64, error) {
	t, err := s.movs.TotaisTx(tx, p.ID)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("somando movimentos: %w", err)
	}
	if t.Count == 0 {
		return p.EstoqueAtual, 0, nil
	}
	return t.Entradas.Sub(t.Saidas), t.Count, nil
}

// abrirLedger materialises the snapshot as an opening ENTRADA before the first movement of a
// product, so the balance stays continuous once the ledger takes over.
func (s *estoqueService) abrirLedger(tx *gorm.DB, p *model.Produto, count int64) (*model.MovEstoque, error) {
	if count > 0 || !p.EstoqueAtual.IsPositive() {
		return nil, nil
	}
	mov := &model.MovEstoque{
		ID:         uuid.New(),
		ProdutoID:  p.ID,
		Tipo:       model.MovEntrada,
		Quantidade: p.EstoqueAtual,
		DataHora:   s.now(),
		Detalhe:    detalheSaldoInicial,
	}
	if err := s.movs.CreateTx(tx, mov); err != nil {
		return nil, fmt.Errorf("registrando saldo inicial: %w", err)
	}
	return mov, nil
}

// ── Combo resolver ──────────────────────────────────────────────────────────

func (s *estoqueService) DisponibilidadeCombo(ctx context.Context, tx *gorm.DB, comboID uuid.UUID) (int64, *string, error) {
	links, err := s.produtos.ListComponentesTx(tx, comboID)
	if err != nil {
		return 0, nil, fmt.Errorf("buscando componentes: %w", err)
	}
	if len(links) == 0 {
		return 0, strPtr(motivoComboSemComponentes), nil
	}

	var disponivel int64 = -1
	for _, link := range links {
		comp, err := s.produtos.FindByIDTx(tx, link.ComponenteID)
		if err != nil && !isNotFound(err) {
			return 0, nil, fmt.Errorf("buscando componente: %w", err)
		}
		if err != nil || !comp.Ativo || comp.IsCombo() {
			return 0, strPtr(motivoComponenteInvalido), nil
		}
		if !link.Quantidade.IsPositive() {
			return 0, strPtr(motivoQuantidadeInvalida), nil
		}
		saldo, _, err := s.saldoProduto(tx, comp)
		if err != nil {
			return 0, nil, err
		}
		q, _ := saldo.QuoRem(link.Quantidade, 0)
		n := q.IntPart()
		if n < 0 {
			n = 0
		}
		if disponivel < 0 || n < disponivel {
			disponivel = n
		}
	}
	return disponivel, nil, nil
}

// ── Reservation ─────────────────────────────────────────────────────────────

func (s *estoqueService) Reservar(ctx context.Context, tx *gorm.DB, in ReservaInput) (*Reserva, error) {
	p, err := s.produtos.FindByIDTx(tx, in.ProdutoID)
	if err != nil {
		if isNotFound(err) {
			return nil, newErr(KindInvalidProduct, "Produto inválido ou inativo")
		}
		return nil, fmt.Errorf("buscando produto: %w", err)
	}
	if !p.Ativo {
		return nil, newErr(KindInvalidProduct, "Produto inválido ou inativo")
	}
	qtd := in.Quantidade.Round(3)
	if !qtd.IsPositive() {
		return nil, newErr(KindInvalidQuantity, "Quantidade deve ser maior que zero")
	}

	var movs []model.MovEstoque
	if p.IsCombo() {
		movs, err = s.reservarCombo(tx, p, qtd, in)
	} else {
		movs, err = s.reservarSimples(tx, p.ID, qtd, in)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("produto", p.Nome).Str("quantidade", qtd.String()).Int("movimentos", len(movs)).Msg("estoque reservado")
	return &Reserva{
		Produto:       *p,
		Quantidade:    qtd,
		PrecoUnitario: p.Preco,
		Total:         p.Preco.Mul(qtd).Round(2),
		Movimentos:    movs,
	}, nil
}

func (s *estoqueService) reservarSimples(tx *gorm.DB, produtoID uuid.UUID, qtd decimal.Decimal, in ReservaInput) ([]model.MovEstoque, error) {
	locked, err := s.produtos.LockTx(tx, []uuid.UUID{produtoID})
	if err != nil {
		return nil, fmt.Errorf("travando produto: %w", err)
	}
	if len(locked) == 0 || !locked[0].Ativo {
		return nil, newErr(KindInvalidProduct, "Produto inválido ou inativo")
	}
	p := &locked[0]

	saldo, count, err := s.saldoProduto(tx, p)
	if err != nil {
		return nil, err
	}
	if !saldo.IsPositive() {
		return nil, newErr(KindInsufficientStock, "Produto sem estoque disponível")
	}
	if saldo.LessThan(qtd) {
		return nil, newErr(KindInsufficientStock, "Estoque insuficiente para %s (disponível: %s)", p.Nome, saldo.String())
	}

	var movs []model.MovEstoque
	if abertura, err := s.abrirLedger(tx, p, count); err != nil {
		return nil, err
	} else if abertura != nil {
		movs = append(movs, *abertura)
	}
	baixa, err := s.baixar(tx, p.ID, qtd, in.ComandaID, in.ItemID, in.Detalhe)
	if err != nil {
		return nil, err
	}
	return append(movs, *baixa), nil
}

func (s *estoqueService) reservarCombo(tx *gorm.DB, combo *model.Produto, qtd decimal.Decimal, in ReservaInput) ([]model.MovEstoque, error) {
	links, err := s.produtos.ListComponentesTx(tx, combo.ID)
	if err != nil {
		return nil, fmt.Errorf("buscando componentes: %w", err)
	}
	if len(links) == 0 {
		return nil, newErr(KindInvalidComboDefinition, "%s: %s", motivoComboSemComponentes, combo.Nome)
	}

	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ComponenteID)
	}
	locked, err := s.produtos.LockTx(tx, ids)
	if err != nil {
		return nil, fmt.Errorf("travando componentes: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Produto, len(locked))
	for i := range locked {
		byID[locked[i].ID] = &locked[i]
	}

	type plano struct {
		comp  *model.Produto
		need  decimal.Decimal
		count int64
	}
	planos := make([]plano, 0, len(links))
	// Validate every component before writing anything.
	for _, id := range repository.SortIDs(ids) {
		link := linkFor(links, id)
		comp, ok := byID[id]
		if !ok || !comp.Ativo || comp.IsCombo() {
			return nil, newErr(KindInvalidComboDefinition, "%s no combo %s", motivoComponenteInvalido, combo.Nome)
		}
		if !link.Quantidade.IsPositive() {
			return nil, newErr(KindInvalidComboDefinition, "%s no combo %s", motivoQuantidadeInvalida, combo.Nome)
		}
		need := link.Quantidade.Mul(qtd).Round(3)
		saldo, count, err := s.saldoProduto(tx, comp)
		if err != nil {
			return nil, err
		}
		if saldo.LessThan(need) {
			return nil, newErr(KindInsufficientStock, "Estoque insuficiente para %s (componente de %s, disponível: %s)",
				comp.Nome, combo.Nome, saldo.String())
		}
		planos = append(planos, plano{comp: comp, need: need, count: count})
	}

	detalhe := strings.TrimSpace(fmt.Sprintf("%s combo (%s)", in.Detalhe, combo.Nome))
	var movs []model.MovEstoque
	for _, pl := range planos {
		abertura, err := s.abrirLedger(tx, pl.comp, pl.count)
		if err != nil {
			return nil, err
		}
		if abertura != nil {
			movs = append(movs, *abertura)
		}
		baixa, err := s.baixar(tx, pl.comp.ID, pl.need, in.ComandaID, in.ItemID, detalhe)
		if err != nil {
			return nil, err
		}
		movs = append(movs, *baixa)
	}
	return movs, nil
}

func linkFor(links []model.ProdutoComponente, componenteID uuid.UUID) model.ProdutoComponente {
	for _, l := range links {
		if l.ComponenteID == componenteID {
			return l
		}
	}
	return model.ProdutoComponente{}
}

// baixar decrements the snapshot and appends one BAIXA.
func (s *estoqueService) baixar(tx *gorm.DB, produtoID uuid.UUID, qtd decimal.Decimal, comandaID, itemID *uuid.UUID, detalhe string) (*model.MovEstoque, error) {
	if err := s.produtos.AjustarEstoqueTx(tx, produtoID, qtd.Neg()); err != nil {
		return nil, fmt.Errorf("atualizando estoque: %w", err)
	}
	mov := &model.MovEstoque{
		ID:            uuid.New(),
		ComandaID:     comandaID,
		ItemComandaID: itemID,
		ProdutoID:     produtoID,
		Tipo:          model.MovBaixa,
		Quantidade:    qtd,
		DataHora:      s.now(),
		Detalhe:       detalhe,
	}
	if err := s.movs.CreateTx(tx, mov); err != nil {
		return nil, fmt.Errorf("registrando baixa: %w", err)
	}
	return mov, nil
}

// ── Reversal ────────────────────────────────────────────────────────────────

func (s *estoqueService) Estornar(ctx context.Context, tx *gorm.DB, item *model.ItemComanda) ([]model.MovEstoque, error) {
	type devolucao struct {
		produtoID uuid.UUID
		qtd       decimal.Decimal
	}
	var devolucoes []devolucao

	baixas, err := s.movs.ListBaixasItemTx(tx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("buscando baixas do item: %w", err)
	}
	if len(baixas) > 0 {
		for _, b := range baixas {
			devolucoes = append(devolucoes, devolucao{produtoID: b.ProdutoID, qtd: b.Quantidade})
		}
	} else {
		// Items recorded without ledger links: recompute from the current definition.
		p, err := s.produtos.FindByIDTx(tx, item.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("buscando produto do item: %w", err)
		}
		if p.IsCombo() {
			links, err := s.produtos.ListComponentesTx(tx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("buscando componentes: %w", err)
			}
			for _, l := range links {
				devolucoes = append(devolucoes, devolucao{produtoID: l.ComponenteID, qtd: l.Quantidade.Mul(item.Quantidade).Round(3)})
			}
		} else {
			devolucoes = append(devolucoes, devolucao{produtoID: p.ID, qtd: item.Quantidade})
		}
	}

	ids := make([]uuid.UUID, 0, len(devolucoes))
	for _, d := range devolucoes {
		ids = append(ids, d.produtoID)
	}
	travados, err := s.produtos.LockTx(tx, ids)
	if err != nil {
		return nil, fmt.Errorf("travando produtos: %w", err)
	}
	// Legacy items may be the first movement of a product: keep its snapshot as the baseline.
	for i := range travados {
		_, count, err := s.saldoProduto(tx, &travados[i])
		if err != nil {
			return nil, err
		}
		if _, err := s.abrirLedger(tx, &travados[i], count); err != nil {
			return nil, err
		}
	}

	movs := make([]model.MovEstoque, 0, len(devolucoes))
	for _, d := range devolucoes {
		if !d.qtd.IsPositive() {
			continue
		}
		if err := s.produtos.AjustarEstoqueTx(tx, d.produtoID, d.qtd); err != nil {
			return nil, fmt.Errorf("atualizando estoque: %w", err)
		}
		mov := model.MovEstoque{
			ID:            uuid.New(),
			ComandaID:     &item.ComandaID,
			ItemComandaID: &item.ID,
			ProdutoID:     d.produtoID,
			Tipo:          model.MovEstorno,
			Quantidade:    d.qtd,
			DataHora:      s.now(),
			Detalhe:       "Estorno de item da comanda",
		}
		if err := s.movs.CreateTx(tx, &mov); err != nil {
			return nil, fmt.Errorf("registrando estorno: %w", err)
		}
		movs = append(movs, mov)
	}
	log.Debug().Str("item_id", item.ID.String()).Int("estornos", len(movs)).Msg("item estornado")
	return movs, nil
}

func (s *estoqueService) TravarEstoque(ctx context.Context, tx *gorm.DB, produtoIDs []uuid.UUID) error {
	var ids []uuid.UUID
	for _, id := range repository.SortIDs(produtoIDs) {
		p, err := s.produtos.FindByIDTx(tx, id)
		if err != nil {
			if isNotFound(err) {
				// Reservar reports the missing product with the proper error.
				continue
			}
			return fmt.Errorf("buscando produto: %w", err)
		}
		if !p.IsCombo() {
			ids = append(ids, id)
			continue
		}
		links, err := s.produtos.ListComponentesTx(tx, id)
		if err != nil {
			return fmt.Errorf("buscando componentes: %w", err)
		}
		for _, l := range links {
			ids = append(ids, l.ComponenteID)
		}
	}
	if _, err := s.produtos.LockTx(tx, ids); err != nil {
		return fmt.Errorf("travando produtos: %w", err)
	}
	return nil
}

// ── Display projection ──────────────────────────────────────────────────────

func (s *estoqueService) Display(ctx context.Context, tx *gorm.DB, p *model.Produto) (dto.ProdutoResponse, error) {
	resp := dto.ProdutoResponse{
		ID:            p.ID.String(),
		Nome:          p.Nome,
		Preco:         p.Preco,
		Tipo:          string(p.Tipo),
		Ativo:         p.Ativo,
		EstoqueAtual:  p.EstoqueAtual,
		EstoqueMinimo: p.EstoqueMinimo,
	}

	if p.IsCombo() {
		disp, motivo, err := s.DisponibilidadeCombo(ctx, tx, p.ID)
		if err != nil {
			return resp, err
		}
		resp.DisponivelCombo = &disp
		resp.Saldo = decimal.NewFromInt(disp)
		resp.CanAdd = p.Ativo && disp > 0
		if !resp.CanAdd {
			switch {
			case !p.Ativo:
				resp.ReasonDisabled = strPtr(motivoInativo)
			case motivo != nil:
				resp.ReasonDisabled = motivo
			default:
				resp.ReasonDisabled = strPtr(motivoSemComponentes)
			}
		}
		return resp, nil
	}

	saldo, _, err := s.saldoProduto(tx, p)
	if err != nil {
		return resp, err
	}
	resp.Saldo = saldo
	resp.CanAdd = p.Ativo && saldo.IsPositive()
	if !p.Ativo {
		resp.ReasonDisabled = strPtr(motivoInativo)
	} else if !resp.CanAdd {
		resp.ReasonDisabled = strPtr(motivoSemEstoque)
	}
	resp.AbaixoMinimo = p.EstoqueMinimo.IsPositive() && saldo.LessThanOrEqual(p.EstoqueMinimo)
	return resp, nil
}

// ── Manual intake / withdrawal ──────────────────────────────────────────────

func (s *estoqueService) Entrada(ctx context.Context, produtoID uuid.UUID, req dto.EntradaEstoqueRequest) (*dto.EstoqueAjusteResponse, error) {
	qtd := req.Quantidade.Round(3)
	if !qtd.IsPositive() {
		return nil, newErr(KindInvalidQuantity, "Quantidade deve ser maior que zero")
	}

	detalhe := "Entrada manual"
	if req.Detalhe != nil && strings.TrimSpace(*req.Detalhe) != "" {
		detalhe = strings.TrimSpace(*req.Detalhe)
	}
	if req.Validade != nil {
		detalhe = fmt.Sprintf("%s (validade %s)", detalhe, *req.Validade)
	}
	dataHora := s.now()
	if req.DataEntrada != nil {
		dataHora = *req.DataEntrada
	}

	var mov model.MovEstoque
	var saldo decimal.Decimal
	var nome string
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		p, count, err := s.travarSimples(tx, produtoID, "Entrada")
		if err != nil {
			return err
		}
		nome = p.Nome
		if _, err := s.abrirLedger(tx, p, count); err != nil {
			return err
		}
		if err := s.produtos.AjustarEstoqueTx(tx, p.ID, qtd); err != nil {
			return fmt.Errorf("atualizando estoque: %w", err)
		}
		mov = model.MovEstoque{
			ID:         uuid.New(),
			ProdutoID:  p.ID,
			Tipo:       model.MovEntrada,
			Quantidade: qtd,
			DataHora:   dataHora,
			Detalhe:    detalhe,
		}
		if err := s.movs.CreateTx(tx, &mov); err != nil {
			return fmt.Errorf("registrando entrada: %w", err)
		}
		saldo, _, err = s.saldoProduto(tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("produto", nome).Str("quantidade", qtd.String()).Msg("entrada de estoque")
	return &dto.EstoqueAjusteResponse{Movimento: movToResponse(mov, nome), Saldo: saldo}, nil
}

func (s *estoqueService) Saida(ctx context.Context, produtoID uuid.UUID, req dto.SaidaEstoqueRequest) (*dto.EstoqueAjusteResponse, error) {
	qtd := req.Quantidade.Round(3)
	if !qtd.IsPositive() {
		return nil, newErr(KindInvalidQuantity, "Quantidade deve ser maior que zero")
	}
	detalhe := "Saída manual"
	if req.Detalhe != nil && strings.TrimSpace(*req.Detalhe) != "" {
		detalhe = strings.TrimSpace(*req.Detalhe)
	}

	var mov model.MovEstoque
	var saldo decimal.Decimal
	var nome string
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		p, count, err := s.travarSimples(tx, produtoID, "Saída")
		if err != nil {
			return err
		}
		nome = p.Nome
		atual, _, err := s.saldoProduto(tx, p)
		if err != nil {
			return err
		}
		if atual.LessThan(qtd) {
			return newErr(KindInsufficientStock, "Estoque insuficiente para %s (disponível: %s)", p.Nome, atual.String())
		}
		if _, err := s.abrirLedger(tx, p, count); err != nil {
			return err
		}
		baixa, err := s.baixar(tx, p.ID, qtd, nil, nil, detalhe)
		if err != nil {
			return err
		}
		mov = *baixa
		saldo, _, err = s.saldoProduto(tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("produto", nome).Str("quantidade", qtd.String()).Msg("saída de estoque")
	s.VerificarMinimos(ctx, []uuid.UUID{produtoID})
	return &dto.EstoqueAjusteResponse{Movimento: movToResponse(mov, nome), Saldo: saldo}, nil
}

// travarSimples locks a SIMPLES product for a manual adjustment and returns its ledger row count.
func (s *estoqueService) travarSimples(tx *gorm.DB, produtoID uuid.UUID, operacao string) (*model.Produto, int64, error) {
	locked, err := s.produtos.LockTx(tx, []uuid.UUID{produtoID})
	if err != nil {
		return nil, 0, fmt.Errorf("travando produto: %w", err)
	}
	if len(locked) == 0 {
		return nil, 0, newErr(KindNotFound, "Produto não encontrado")
	}
	p := &locked[0]
	if p.IsCombo() {
		return nil, 0, newErr(KindInvalidProduct, "%s de estoque só é permitida para produtos SIMPLES", operacao)
	}
	t, err := s.movs.TotaisTx(tx, p.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("somando movimentos: %w", err)
	}
	return p, t.Count, nil
}

func (s *estoqueService) ListarMovimentos(ctx context.Context, filter dto.MovEstoqueFilter) (*dto.MovEstoqueListResponse, error) {
	f := repository.MovEstoqueFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ProdutoID != "" {
		id, err := uuid.Parse(filter.ProdutoID)
		if err != nil {
			return nil, newErr(KindInvalidProduct, "produto_id inválido")
		}
		f.ProdutoID = &id
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}

	movs, total, err := s.movs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listando movimentos: %w", err)
	}
	resp := &dto.MovEstoqueListResponse{
		Data:  make([]dto.MovEstoqueResponse, 0, len(movs)),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}
	for _, m := range movs {
		nome := ""
		if m.Produto != nil {
			nome = m.Produto.Nome
		}
		resp.Data = append(resp.Data, movToResponse(m, nome))
	}
	return resp, nil
}

// ── Alerts ──────────────────────────────────────────────────────────────────

func (s *estoqueService) VerificarMinimos(ctx context.Context, produtoIDs []uuid.UUID) {
	if s.alertas == nil {
		return
	}
	db := s.tx.read(ctx)
	for _, id := range repository.SortIDs(produtoIDs) {
		p, err := s.produtos.FindByIDTx(db, id)
		if err != nil || p.IsCombo() || !p.EstoqueMinimo.IsPositive() {
			continue
		}
		saldo, _, err := s.saldoProduto(db, p)
		if err != nil {
			log.Warn().Err(err).Str("produto_id", id.String()).Msg("verificando estoque mínimo")
			continue
		}
		if saldo.LessThanOrEqual(p.EstoqueMinimo) {
			s.alertas.PublicarAlertaEstoque(ctx, dto.AlertaEstoque{
				ProdutoID:     p.ID.String(),
				Nome:          p.Nome,
				Saldo:         saldo,
				EstoqueMinimo: p.EstoqueMinimo,
			})
		}
	}
}

// produtosAfetados lists the distinct products touched by a set of movements.
func produtosAfetados(movs []model.MovEstoque) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(movs))
	for _, m := range movs {
		ids = append(ids, m.ProdutoID)
	}
	return repository.SortIDs(ids)
}

func movToResponse(m model.MovEstoque, nome string) dto.MovEstoqueResponse {
	r := dto.MovEstoqueResponse{
		ID:          m.ID.String(),
		ProdutoID:   m.ProdutoID.String(),
		ProdutoNome: nome,
		Tipo:        string(m.Tipo),
		Quantidade:  m.Quantidade,
		DataHora:    m.DataHora,
		Detalhe:     m.Detalhe,
	}
	if m.ComandaID != nil {
		r.ComandaID = strPtr(m.ComandaID.String())
	}
	if m.ItemComandaID != nil {
		r.ItemComandaID = strPtr(m.ItemComandaID.String())
	}
	return r
}

func strPtr(s string) *string { return &s }
