package repository

import (
	"context"
	"errors"
	"time"

	"barcontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaixaRepository interface {
	// FindAbertoTx returns the open caixa or (nil, nil) when there is none.
	// lock=true takes a FOR UPDATE lock on the row.
	FindAbertoTx(tx *gorm.DB, lock bool) (*model.Caixa, error)
	CreateTx(tx *gorm.DB, c *model.Caixa) error
	UpdateTx(tx *gorm.DB, c *model.Caixa) error
	CreateMovimentoTx(tx *gorm.DB, m *model.CaixaMov) error
	SumVendasTx(tx *gorm.DB, caixaID uuid.UUID, inicio, fim time.Time) (decimal.Decimal, error)

	// FindAtual returns the open caixa, else the most recently opened one, else (nil, nil).
	FindAtual(ctx context.Context) (*model.Caixa, error)
	ListMovimentos(ctx context.Context, caixaID uuid.UUID) ([]model.CaixaMov, error)

	DB() *gorm.DB
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) FindAbertoTx(tx *gorm.DB, lock bool) (*model.Caixa, error) {
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c model.Caixa
	err := q.Where("status = ?", model.CaixaAberto).Order("aberto_em DESC").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) CreateTx(tx *gorm.DB, c *model.Caixa) error {
	return tx.Create(c).Error
}

func (r *caixaRepo) UpdateTx(tx *gorm.DB, c *model.Caixa) error {
	return tx.Save(c).Error
}

func (r *caixaRepo) CreateMovimentoTx(tx *gorm.DB, m *model.CaixaMov) error {
	return tx.Create(m).Error
}

func (r *caixaRepo) SumVendasTx(tx *gorm.DB, caixaID uuid.UUID, inicio, fim time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&model.CaixaMov{}).
		Select("COALESCE(SUM(valor), 0)").
		Where("caixa_id = ? AND tipo = ? AND criado_em >= ? AND criado_em < ?",
			caixaID, model.CaixaMovVenda, inicio, fim).
		Scan(&total).Error
	return total, err
}

func (r *caixaRepo) FindAtual(ctx context.Context) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).
		Order("CASE WHEN status = 'ABERTO' THEN 0 ELSE 1 END").
		Order("aberto_em DESC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caixaRepo) ListMovimentos(ctx context.Context, caixaID uuid.UUID) ([]model.CaixaMov, error) {
	var movs []model.CaixaMov
	err := r.db.WithContext(ctx).Where("caixa_id = ?", caixaID).Order("criado_em DESC").Find(&movs).Error
	return movs, err
}
