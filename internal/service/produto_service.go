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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProdutoService manages the catalog: products, combo definitions and the display projection.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter repository.ProdutoFilter) ([]dto.ProdutoResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	DefinirComponentes(ctx context.Context, comboID uuid.UUID, req dto.DefinirComponentesRequest) (*dto.ComponentesResponse, error)
	ListarComponentes(ctx context.Context, comboID uuid.UUID) (*dto.ComponentesResponse, error)
}

type produtoService struct {
	produtos repository.ProdutoRepository
	estoque  EstoqueService
	tx       *TxRunner
	now      func() time.Time
}

func NewProdutoService(produtos repository.ProdutoRepository, estoque EstoqueService, tx *TxRunner) ProdutoService {
	return &produtoService{produtos: produtos, estoque: estoque, tx: tx, now: time.Now}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	nome := strings.TrimSpace(req.Nome)
	if nome == "" {
		return nil, newErr(KindInvalidProduct, "Nome do produto é obrigatório")
	}
	tipo := model.ProdutoSimples
	if req.Tipo != "" {
		tipo = model.ProdutoTipo(req.Tipo)
	}
	if tipo != model.ProdutoSimples && tipo != model.ProdutoCombo {
		return nil, newErr(KindInvalidProduct, "Tipo de produto inválido: %s", req.Tipo)
	}
	if req.Preco.IsNegative() || req.EstoqueAtual.IsNegative() || req.EstoqueMinimo.IsNegative() {
		return nil, newErr(KindInvalidQuantity, "Valores não podem ser negativos")
	}

	now := s.now()
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		Preco:         req.Preco.Round(2),
		EstoqueAtual:  req.EstoqueAtual.Round(3),
		EstoqueMinimo: req.EstoqueMinimo.Round(3),
		Tipo:          tipo,
		Ativo:         true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// A combo has no stock of its own.
	if p.IsCombo() {
		p.EstoqueAtual = decimal.Zero
		p.EstoqueMinimo = decimal.Zero
	}
	if err := s.produtos.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("criando produto: %w", err)
	}
	resp, err := s.estoque.Display(ctx, s.tx.read(ctx), p)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	var p *model.Produto
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		locked, err := s.produtos.LockTx(tx, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("travando produto: %w", err)
		}
		if len(locked) == 0 {
			return newErr(KindNotFound, "Produto não encontrado")
		}
		p = &locked[0]

		if req.Nome != nil {
			nome := strings.TrimSpace(*req.Nome)
			if nome == "" {
				return newErr(KindInvalidProduct, "Nome do produto é obrigatório")
			}
			p.Nome = nome
		}
		if req.Preco != nil {
			if req.Preco.IsNegative() {
				return newErr(KindInvalidQuantity, "Preço não pode ser negativo")
			}
			p.Preco = req.Preco.Round(2)
		}
		if req.EstoqueMinimo != nil {
			if req.EstoqueMinimo.IsNegative() {
				return newErr(KindInvalidQuantity, "Estoque mínimo não pode ser negativo")
			}
			p.EstoqueMinimo = req.EstoqueMinimo.Round(3)
		}
		if req.Tipo != nil && model.ProdutoTipo(*req.Tipo) != p.Tipo {
			if err := s.validarTrocaTipo(tx, p, model.ProdutoTipo(*req.Tipo)); err != nil {
				return err
			}
			p.Tipo = model.ProdutoTipo(*req.Tipo)
		}
		if req.Ativo != nil {
			p.Ativo = *req.Ativo
		}
		p.UpdatedAt = s.now()
		return s.produtos.UpdateTx(tx, p)
	})
	if err != nil {
		return nil, err
	}
	resp, err := s.estoque.Display(ctx, s.tx.read(ctx), p)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// validarTrocaTipo keeps the catalog flat: no combo inside a combo, no links on a SIMPLES.
func (s *produtoService) validarTrocaTipo(tx *gorm.DB, p *model.Produto, novo model.ProdutoTipo) error {
	switch novo {
	case model.ProdutoCombo:
		n, err := s.produtos.CountCombosComComponenteTx(tx, p.ID)
		if err != nil {
			return fmt.Errorf("verificando combos: %w", err)
		}
		if n > 0 {
			return newErr(KindInvalidComboDefinition, "%s é componente de %d combo(s) e não pode virar COMBO", p.Nome, n)
		}
	case model.ProdutoSimples:
		links, err := s.produtos.ListComponentesTx(tx, p.ID)
		if err != nil {
			return fmt.Errorf("buscando componentes: %w", err)
		}
		if len(links) > 0 {
			return newErr(KindInvalidComboDefinition, "Remova os componentes de %s antes de torná-lo SIMPLES", p.Nome)
		}
	default:
		return newErr(KindInvalidProduct, "Tipo de produto inválido: %s", novo)
	}
	return nil
}

func (s *produtoService) Listar(ctx context.Context, filter repository.ProdutoFilter) ([]dto.ProdutoResponse, error) {
	produtos, err := s.produtos.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listando produtos: %w", err)
	}
	db := s.tx.read(ctx)
	out := make([]dto.ProdutoResponse, 0, len(produtos))
	for i := range produtos {
		resp, err := s.estoque.Display(ctx, db, &produtos[i])
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *produtoService) Obter(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.produtos.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, newErr(KindNotFound, "Produto não encontrado")
		}
		return nil, fmt.Errorf("buscando produto: %w", err)
	}
	resp, err := s.estoque.Display(ctx, s.tx.read(ctx), p)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *produtoService) DefinirComponentes(ctx context.Context, comboID uuid.UUID, req dto.DefinirComponentesRequest) (*dto.ComponentesResponse, error) {
	type pedido struct {
		id  uuid.UUID
		qtd decimal.Decimal
	}
	pedidos := make([]pedido, 0, len(req.Componentes))
	vistos := make(map[uuid.UUID]bool, len(req.Componentes))
	for _, c := range req.Componentes {
		compID, err := uuid.Parse(c.ComponenteID)
		if err != nil {
			return nil, newErr(KindInvalidComboDefinition, "componente_id inválido: %s", c.ComponenteID)
		}
		if compID == comboID {
			return nil, newErr(KindInvalidComboDefinition, "Um combo não pode conter a si mesmo")
		}
		if vistos[compID] {
			return nil, newErr(KindInvalidComboDefinition, "Componente repetido no combo")
		}
		vistos[compID] = true

		qtd := c.Quantidade.Round(3)
		if !qtd.IsPositive() {
			return nil, newErr(KindInvalidComboDefinition, motivoQuantidadeInvalida)
		}
		pedidos = append(pedidos, pedido{id: compID, qtd: qtd})
	}

	resp := &dto.ComponentesResponse{ComboID: comboID.String(), Componentes: []dto.ComponenteResponse{}}
	err := s.tx.Run(ctx, func(tx *gorm.DB) error {
		// Same row locks Atualizar takes before a tipo change.
		ids := make([]uuid.UUID, 0, len(pedidos)+1)
		ids = append(ids, comboID)
		for _, p := range pedidos {
			ids = append(ids, p.id)
		}
		travados, err := s.produtos.LockTx(tx, ids)
		if err != nil {
			return fmt.Errorf("travando produtos: %w", err)
		}
		porID := make(map[uuid.UUID]*model.Produto, len(travados))
		for i := range travados {
			porID[travados[i].ID] = &travados[i]
		}

		combo, ok := porID[comboID]
		if !ok {
			return newErr(KindNotFound, "Produto não encontrado")
		}
		if !combo.IsCombo() {
			return newErr(KindInvalidComboDefinition, "%s não é um combo", combo.Nome)
		}

		links := make([]model.ProdutoComponente, 0, len(pedidos))
		for _, p := range pedidos {
			comp, ok := porID[p.id]
			if !ok {
				return newErr(KindInvalidComboDefinition, "Componente não encontrado")
			}
			if comp.IsCombo() {
				return newErr(KindInvalidComboDefinition, "Componente %s deve ser SIMPLES", comp.Nome)
			}
			links = append(links, model.ProdutoComponente{
				ID:           uuid.New(),
				ComboID:      comboID,
				ComponenteID: p.id,
				Quantidade:   p.qtd,
			})
			resp.Componentes = append(resp.Componentes, dto.ComponenteResponse{
				ComponenteID: p.id.String(),
				Nome:         comp.Nome,
				Quantidade:   p.qtd,
			})
		}
		return s.produtos.SubstituirComponentesTx(tx, comboID, links)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *produtoService) ListarComponentes(ctx context.Context, comboID uuid.UUID) (*dto.ComponentesResponse, error) {
	db := s.tx.read(ctx)
	if _, err := s.produtos.FindByIDTx(db, comboID); err != nil {
		if isNotFound(err) {
			return nil, newErr(KindNotFound, "Produto não encontrado")
		}
		return nil, fmt.Errorf("buscando combo: %w", err)
	}
	links, err := s.produtos.ListComponentesTx(db, comboID)
	if err != nil {
		return nil, fmt.Errorf("buscando componentes: %w", err)
	}
	resp := &dto.ComponentesResponse{ComboID: comboID.String(), Componentes: make([]dto.ComponenteResponse, 0, len(links))}
	for _, l := range links {
		nome := ""
		if comp, err := s.produtos.FindByIDTx(db, l.ComponenteID); err == nil {
			nome = comp.Nome
		}
		resp.Componentes = append(resp.Componentes, dto.ComponenteResponse{
			ComponenteID: l.ComponenteID.String(),
			Nome:         nome,
			Quantidade:   l.Quantidade,
		})
	}
	return resp, nil
}
