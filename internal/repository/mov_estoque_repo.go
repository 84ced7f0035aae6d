package repository

import (
	"context"

	"barcontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovEstoqueFilter defines filters for listing stock movements.
type MovEstoqueFilter struct {
	ProdutoID *uuid.UUID
	Tipo      string
	Page      int
	Limit     int
}

// TotaisMov aggregates a product's ledger in one pass.
type TotaisMov struct {
	Count    int64
	Entradas decimal.Decimal // ENTRADA + ESTORNO
	Saidas   decimal.Decimal // BAIXA
}

// MovEstoqueRepository is append-only: there is no Update or Delete.
type MovEstoqueRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovEstoque) error
	TotaisTx(tx *gorm.DB, produtoID uuid.UUID) (TotaisMov, error)
	ListBaixasItemTx(tx *gorm.DB, itemID uuid.UUID) ([]model.MovEstoque, error)
	List(ctx context.Context, filter MovEstoqueFilter) ([]model.MovEstoque, int64, error)
}

type movEstoqueRepo struct{ db *gorm.DB }

func NewMovEstoqueRepository(db *gorm.DB) MovEstoqueRepository {
	return &movEstoqueRepo{db: db}
}

func (r *movEstoqueRepo) CreateTx(tx *gorm.DB, m *model.MovEstoque) error {
	return tx.Create(m).Error
}

func (r *movEstoqueRepo) TotaisTx(tx *gorm.DB, produtoID uuid.UUID) (TotaisMov, error) {
	var row struct {
		Count    int64
		Entradas decimal.Decimal
		Saidas   decimal.Decimal
	}
	err := tx.Model(&model.MovEstoque{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(CASE WHEN tipo IN ('ENTRADA','ESTORNO') THEN quantidade ELSE 0 END), 0) AS entradas,
			COALESCE(SUM(CASE WHEN tipo = 'BAIXA' THEN quantidade ELSE 0 END), 0) AS saidas`).
		Where("produto_id = ?", produtoID).
		Scan(&row).Error
	if err != nil {
		return TotaisMov{}, err
	}
	return TotaisMov{Count: row.Count, Entradas: row.Entradas, Saidas: row.Saidas}, nil
}

func (r *movEstoqueRepo) ListBaixasItemTx(tx *gorm.DB, itemID uuid.UUID) ([]model.MovEstoque, error) {
	var movs []model.MovEstoque
	err := tx.Where("item_comanda_id = ? AND tipo = ?", itemID, model.MovBaixa).
		Order("produto_id ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movEstoqueRepo) List(ctx context.Context, filter MovEstoqueFilter) ([]model.MovEstoque, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovEstoque{})
	if filter.ProdutoID != nil {
		q = q.Where("produto_id = ?", *filter.ProdutoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movs []model.MovEstoque
	err := q.Preload("Produto").Order("data_hora DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}
