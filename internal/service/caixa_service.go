package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	lockAberturaCaixa = "lock:caixa:abertura"
	lockAberturaTTL   = 10 * time.Second
)

// Locker is satisfied by *redislock.Client.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// CaixaService manages the single cash register session and its ledger.
type CaixaService interface {
	Abrir(ctx context.Context, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error)
	Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FecharCaixaResponse, error)
	RegistrarMovimento(ctx context.Context, req dto.RegistrarMovimentoRequest) (*dto.CaixaMovResponse, error)
	VendaBalcao(ctx context.Context, req dto.VendaBalcaoRequest) (*dto.VendaBalcaoResponse, error)
	VendaBalcaoLote(ctx context.Context, req dto.VendaBalcaoLoteRequest) (*dto.VendaBalcaoResponse, error)
	// Atual returns the open caixa, else the latest one, else nil.
	Atual(ctx context.Context) (*dto.CaixaResponse, error)
	ListarMovimentos(ctx context.Context) (*dto.CaixaMovimentosResponse, error)
}

type caixaService struct {
	caixas  repository.CaixaRepository
	estoque EstoqueService
	tx      *TxRunner
	locker  Locker
	loc     *time.Location
	now     func() time.Time
}

// NewCaixaService builds the service. locker may be nil (no Redis); the partial unique
// index on caixas still guarantees a single open session.
func NewCaixaService(
	caixas repository.CaixaRepository,
	estoque EstoqueService,
	tx *TxRunner,
	locker Locker,
	loc *time.Location,
) CaixaService {
	if loc == nil {
		loc = time.UTC
	}
	return &caixaService{
		caixas:  caixas,
		estoque: estoque,
		tx:      tx,
		locker:  locker,
		loc:     loc,
		now:     time.Now,
	}
}

// obterLockAbertura tries to take the cross-instance opening lock. Failure to get it is
// logged and ignored.
func (s *caixaService) obterLockAbertura(ctx context.Context) *redislock.Lock {
	if s.locker == nil {
		return nil
	}
	lock, err := s.locker.Obtain(ctx, lockAberturaCaixa, lockAberturaTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Warn().Msg("lock de abertura de caixa ocupado; seguindo sem lock")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("erro obtendo lock de abertura de caixa; seguindo sem lock")
		return nil
	}
	return lock
}

func (s *caixaService) Abrir(ctx context.Context, req dto.AbrirCaixaRequest) (*dto.CaixaResponse, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, newErr(KindInvalidQuantity, "Saldo inicial não pode ser negativo")
	}
	if lock := s.obterLockAbertura(ctx); lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	var caixa model.Caixa
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		aberto, err := s.caixas.FindAbertoTx(tx, false)
		if err != nil {
			return fmt.Errorf("buscando caixa aberto: %w", err)
		}
		if aberto != nil {
			return newErr(KindCashSessionConflict, "Já existe um caixa aberto")
		}
		now := s.now()
		caixa = model.Caixa{
			ID:           uuid.New(),
			Status:       model.CaixaAberto,
			SaldoInicial: req.SaldoInicial.Round(2),
			Observacao:   req.Observacao,
			AbertoEm:     now,
		}
		if err := s.caixas.CreateTx(tx, &caixa); err != nil {
			return err
		}
		return s.caixas.CreateMovimentoTx(tx, &model.CaixaMov{
			ID:        uuid.New(),
			CaixaID:   caixa.ID,
			Tipo:      model.CaixaMovAbertura,
			Valor:     caixa.SaldoInicial,
			Descricao: strPtr("Abertura de caixa"),
			CriadoEm:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("caixa_id", caixa.ID.String()).Str("saldo_inicial", caixa.SaldoInicial.StringFixed(2)).Msg("caixa aberto")
	resp := caixaToResponse(&caixa)
	return &resp, nil
}

func (s *caixaService) travarAberto(tx *gorm.DB) (*model.Caixa, error) {
	caixa, err := s.caixas.FindAbertoTx(tx, true)
	if err != nil {
		return nil, fmt.Errorf("buscando caixa aberto: %w", err)
	}
	if caixa == nil {
		return nil, newErr(KindCashSessionConflict, "Nenhum caixa aberto")
	}
	return caixa, nil
}

func (s *caixaService) Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FecharCaixaResponse, error) {
	var caixa *model.Caixa
	var totalVendido decimal.Decimal
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		var err error
		caixa, err = s.travarAberto(tx)
		if err != nil {
			return err
		}
		now := s.now()
		inicio, fim := diaLocal(now, s.loc)
		totalVendido, err = s.caixas.SumVendasTx(tx, caixa.ID, inicio, fim)
		if err != nil {
			return fmt.Errorf("somando vendas: %w", err)
		}
		if err := s.caixas.CreateMovimentoTx(tx, &model.CaixaMov{
			ID:        uuid.New(),
			CaixaID:   caixa.ID,
			Tipo:      model.CaixaMovFechamento,
			Valor:     totalVendido,
			Descricao: strPtr("Fechamento de caixa"),
			CriadoEm:  now,
		}); err != nil {
			return err
		}
		saldoFinal := req.SaldoFinal.Round(2)
		caixa.Status = model.CaixaFechado
		caixa.SaldoFinal = &saldoFinal
		caixa.FechadoEm = &now
		if req.Observacao != nil {
			caixa.Observacao = req.Observacao
		}
		return s.caixas.UpdateTx(tx, caixa)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("caixa_id", caixa.ID.String()).Str("total_vendido", totalVendido.StringFixed(2)).Msg("caixa fechado")
	return &dto.FecharCaixaResponse{CaixaResponse: caixaToResponse(caixa), TotalVendido: totalVendido}, nil
}

// tiposManuais are the kinds a client may post directly.
var tiposManuais = map[model.CaixaMovTipo]bool{
	model.CaixaMovVenda:   true,
	model.CaixaMovReforco: true,
	model.CaixaMovSangria: true,
	model.CaixaMovAjuste:  true,
}

func (s *caixaService) RegistrarMovimento(ctx context.Context, req dto.RegistrarMovimentoRequest) (*dto.CaixaMovResponse, error) {
	tipo := model.CaixaMovTipo(strings.ToUpper(strings.TrimSpace(req.Tipo)))
	if !tiposManuais[tipo] {
		return nil, newErr(KindInvalidMovementKind, "Tipo de movimento inválido: %s", req.Tipo)
	}
	valor := req.Valor.Round(2)
	if !valor.IsPositive() {
		return nil, newErr(KindInvalidQuantity, "Valor deve ser maior que zero")
	}
	var (
		pagamento       *model.PagamentoTipo
		recebido, troco *decimal.Decimal
		err             error
	)
	if tipo == model.CaixaMovVenda {
		pagamento, recebido, troco, err = calcularPagamento(req.PagamentoTipo, req.ValorRecebido, valor, false)
		if err != nil {
			return nil, err
		}
	} else if (req.PagamentoTipo != nil && *req.PagamentoTipo != "") || req.ValorRecebido != nil {
		return nil, newErr(KindPaymentMismatch, "Pagamento e valor recebido só se aplicam a vendas")
	}

	var mov model.CaixaMov
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		caixa, err := s.travarAberto(tx)
		if err != nil {
			return err
		}
		mov = model.CaixaMov{
			ID:            uuid.New(),
			CaixaID:       caixa.ID,
			Tipo:          tipo,
			Valor:         valor,
			Descricao:     req.Descricao,
			PagamentoTipo: pagamento,
			ValorRecebido: recebido,
			Troco:         troco,
			CriadoEm:      s.now(),
		}
		return s.caixas.CreateMovimentoTx(tx, &mov)
	})
	if err != nil {
		return nil, err
	}
	resp := caixaMovToResponse(&mov)
	return &resp, nil
}

// calcularPagamento validates the tendered amount of a cash payment and computes change.
// exigeRecebido makes the tendered amount mandatory for DINHEIRO.
func calcularPagamento(tipo *string, valorRecebido *decimal.Decimal, total decimal.Decimal, exigeRecebido bool) (*model.PagamentoTipo, *decimal.Decimal, *decimal.Decimal, error) {
	if tipo == nil || *tipo == "" {
		return nil, nil, nil, nil
	}
	pt := model.PagamentoTipo(strings.ToUpper(*tipo))
	switch pt {
	case model.PagamentoCartao:
		return &pt, nil, nil, nil
	case model.PagamentoDinheiro:
	default:
		return nil, nil, nil, newErr(KindPaymentMismatch, "Forma de pagamento inválida: %s", *tipo)
	}

	if valorRecebido == nil {
		if exigeRecebido {
			return nil, nil, nil, newErr(KindPaymentMismatch, "Informe o valor recebido para pagamento em dinheiro")
		}
		return &pt, nil, nil, nil
	}
	recebido := valorRecebido.Round(2)
	if recebido.LessThan(total) {
		return nil, nil, nil, newErr(KindPaymentMismatch, "Valor recebido (%s) menor que o total (%s)",
			recebido.StringFixed(2), total.StringFixed(2))
	}
	troco := recebido.Sub(total)
	return &pt, &recebido, &troco, nil
}

func (s *caixaService) VendaBalcao(ctx context.Context, req dto.VendaBalcaoRequest) (*dto.VendaBalcaoResponse, error) {
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, newErr(KindInvalidProduct, "produto_id inválido")
	}
	pagamento, _, _, err := calcularPagamento(req.PagamentoTipo, nil, decimal.Zero, false)
	if err != nil {
		return nil, err
	}

	var mov model.CaixaMov
	var item dto.VendaBalcaoItemResponse
	var afetados []uuid.UUID
	err = s.tx.Run(ctx, func(tx *gorm.DB) error {
		caixa, err := s.travarAberto(tx)
		if err != nil {
			return err
		}
		r, err := s.estoque.Reservar(ctx, tx, ReservaInput{
			ProdutoID:  produtoID,
			Quantidade: req.Quantidade,
			Detalhe:    "Venda balcao",
		})
		if err != nil {
			return err
		}
		descricao := fmt.Sprintf("Venda balcao %s x%s", r.Produto.Nome, r.Quantidade.String())
		if req.Descricao != nil && strings.TrimSpace(*req.Descricao) != "" {
			descricao = strings.TrimSpace(*req.Descricao)
		}
		mov = model.CaixaMov{
			ID:            uuid.New(),
			CaixaID:       caixa.ID,
			Tipo:          model.CaixaMovVenda,
			Valor:         r.Total,
			Descricao:     &descricao,
			PagamentoTipo: pagamento,
			CriadoEm:      s.now(),
		}
		item = reservaToItem(r)
		afetados = produtosAfetados(r.Movimentos)
		return s.caixas.CreateMovimentoTx(tx, &mov)
	})
	if err != nil {
		return nil, err
	}

	s.estoque.VerificarMinimos(ctx, afetados)
	return &dto.VendaBalcaoResponse{
		Movimento: caixaMovToResponse(&mov),
		Itens:     []dto.VendaBalcaoItemResponse{item},
		Total:     mov.Valor,
	}, nil
}

func (s *caixaService) VendaBalcaoLote(ctx context.Context, req dto.VendaBalcaoLoteRequest) (*dto.VendaBalcaoResponse, error) {
	if len(req.Itens) == 0 {
		return nil, newErr(KindInvalidQuantity, "Nenhum item informado")
	}
	ids := make([]uuid.UUID, 0, len(req.Itens))
	for _, it := range req.Itens {
		id, err := uuid.Parse(it.ProdutoID)
		if err != nil {
			return nil, newErr(KindInvalidProduct, "produto_id inválido: %s", it.ProdutoID)
		}
		ids = append(ids, id)
	}

	var mov model.CaixaMov
	var itens []dto.VendaBalcaoItemResponse
	var afetados []uuid.UUID
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		caixa, err := s.travarAberto(tx)
		if err != nil {
			return err
		}
		if err := s.estoque.TravarEstoque(ctx, tx, ids); err != nil {
			return err
		}

		total := decimal.Zero
		partes := make([]string, 0, len(req.Itens))
		for i, it := range req.Itens {
			r, err := s.estoque.Reservar(ctx, tx, ReservaInput{
				ProdutoID:  ids[i],
				Quantidade: it.Quantidade,
				Detalhe:    "Venda balcao",
			})
			if err != nil {
				return err
			}
			total = total.Add(r.Total)
			partes = append(partes, fmt.Sprintf("%s x%s", r.Produto.Nome, r.Quantidade.String()))
			itens = append(itens, reservaToItem(r))
			afetados = append(afetados, produtosAfetados(r.Movimentos)...)
		}

		pagamento, recebido, troco, err := calcularPagamento(&req.PagamentoTipo, req.ValorRecebido, total, true)
		if err != nil {
			return err
		}
		descricao := "Venda balcao: " + strings.Join(partes, ", ")
		if req.Descricao != nil && strings.TrimSpace(*req.Descricao) != "" {
			descricao = strings.TrimSpace(*req.Descricao)
		}
		mov = model.CaixaMov{
			ID:            uuid.New(),
			CaixaID:       caixa.ID,
			Tipo:          model.CaixaMovVenda,
			Valor:         total,
			Descricao:     &descricao,
			PagamentoTipo: pagamento,
			ValorRecebido: recebido,
			Troco:         troco,
			CriadoEm:      s.now(),
		}
		return s.caixas.CreateMovimentoTx(tx, &mov)
	})
	if err != nil {
		return nil, err
	}

	s.estoque.VerificarMinimos(ctx, afetados)
	return &dto.VendaBalcaoResponse{
		Movimento: caixaMovToResponse(&mov),
		Itens:     itens,
		Total:     mov.Valor,
		Troco:     mov.Troco,
	}, nil
}

func (s *caixaService) Atual(ctx context.Context) (*dto.CaixaResponse, error) {
	caixa, err := s.caixas.FindAtual(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscando caixa: %w", err)
	}
	if caixa == nil {
		return nil, nil
	}
	resp := caixaToResponse(caixa)
	return &resp, nil
}

func (s *caixaService) ListarMovimentos(ctx context.Context) (*dto.CaixaMovimentosResponse, error) {
	caixa, err := s.caixas.FindAtual(ctx)
	if err != nil {
		return nil, fmt.Errorf("buscando caixa: %w", err)
	}
	resp := &dto.CaixaMovimentosResponse{Movimentos: []dto.CaixaMovResponse{}}
	if caixa == nil {
		return resp, nil
	}
	movs, err := s.caixas.ListMovimentos(ctx, caixa.ID)
	if err != nil {
		return nil, fmt.Errorf("listando movimentos: %w", err)
	}
	cr := caixaToResponse(caixa)
	resp.Caixa = &cr
	for i := range movs {
		resp.Movimentos = append(resp.Movimentos, caixaMovToResponse(&movs[i]))
	}
	return resp, nil
}

func reservaToItem(r *Reserva) dto.VendaBalcaoItemResponse {
	return dto.VendaBalcaoItemResponse{
		ProdutoID:     r.Produto.ID.String(),
		Nome:          r.Produto.Nome,
		Quantidade:    r.Quantidade,
		PrecoUnitario: r.PrecoUnitario,
		Total:         r.Total,
	}
}

func caixaToResponse(c *model.Caixa) dto.CaixaResponse {
	return dto.CaixaResponse{
		ID:           c.ID.String(),
		Status:       string(c.Status),
		SaldoInicial: c.SaldoInicial,
		SaldoFinal:   c.SaldoFinal,
		Observacao:   c.Observacao,
		AbertoEm:     c.AbertoEm,
		FechadoEm:    c.FechadoEm,
	}
}

func caixaMovToResponse(m *model.CaixaMov) dto.CaixaMovResponse {
	r := dto.CaixaMovResponse{
		ID:            m.ID.String(),
		CaixaID:       m.CaixaID.String(),
		Tipo:          string(m.Tipo),
		Valor:         m.Valor,
		Descricao:     m.Descricao,
		ValorRecebido: m.ValorRecebido,
		Troco:         m.Troco,
		CriadoEm:      m.CriadoEm,
	}
	if m.PagamentoTipo != nil {
		r.PagamentoTipo = strPtr(string(*m.PagamentoTipo))
	}
	return r
}
