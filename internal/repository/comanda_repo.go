package repository

import (
	"context"
	"time"

	"barcontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResumoProdutoRow is one line of the daily summary grouped by product.
type ResumoProdutoRow struct {
	ProdutoID  uuid.UUID
	Nome       string
	Quantidade decimal.Decimal
	Total      decimal.Decimal
}

// ResumoVendedorRow is one line of the daily summary grouped by seller.
type ResumoVendedorRow struct {
	VendedorID uuid.UUID
	Nome       string
	Comandas   int64
	Total      decimal.Decimal
}

type ComandaRepository interface {
	NextNumeroTx(tx *gorm.DB) (int64, error)
	CreateTx(tx *gorm.DB, c *model.Comanda) error
	// LockTx loads the comanda with a FOR UPDATE row lock. Returns gorm.ErrRecordNotFound when absent.
	LockTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error)
	UpdateTx(tx *gorm.DB, c *model.Comanda) error

	CreateItemTx(tx *gorm.DB, item *model.ItemComanda) error
	FindItemTx(tx *gorm.DB, itemID uuid.UUID) (*model.ItemComanda, error)
	ListItensTx(tx *gorm.DB, comandaID uuid.UUID) ([]model.ItemComanda, error)
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error)
	ListItens(ctx context.Context, comandaID uuid.UUID) ([]model.ItemComanda, error)
	// ListAbertas returns open comandas; a nil vendedorID means all sellers.
	ListAbertas(ctx context.Context, vendedorID *uuid.UUID) ([]model.Comanda, error)
	ResumoPorProduto(ctx context.Context, inicio, fim time.Time, vendedorID *uuid.UUID) ([]ResumoProdutoRow, error)
	ResumoPorVendedor(ctx context.Context, inicio, fim time.Time, vendedorID *uuid.UUID) ([]ResumoVendedorRow, error)

	DB() *gorm.DB
}

type comandaRepo struct{ db *gorm.DB }

func NewComandaRepository(db *gorm.DB) ComandaRepository { return &comandaRepo{db: db} }

func (r *comandaRepo) DB() *gorm.DB { return r.db }

func (r *comandaRepo) NextNumeroTx(tx *gorm.DB) (int64, error) {
	// Sequence gives gap-tolerant, race-free numbering across instances
	var num int64
	err := tx.Raw("SELECT nextval('comanda_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *comandaRepo) CreateTx(tx *gorm.DB, c *model.Comanda) error {
	return tx.Create(c).Error
}

func (r *comandaRepo) LockTx(tx *gorm.DB, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *comandaRepo) UpdateTx(tx *gorm.DB, c *model.Comanda) error {
	return tx.Model(&model.Comanda{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"status":      c.Status,
		"valor_total": c.ValorTotal,
		"updated_at":  time.Now(),
	}).Error
}

func (r *comandaRepo) CreateItemTx(tx *gorm.DB, item *model.ItemComanda) error {
	return tx.Create(item).Error
}

func (r *comandaRepo) FindItemTx(tx *gorm.DB, itemID uuid.UUID) (*model.ItemComanda, error) {
	var item model.ItemComanda
	err := tx.First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *comandaRepo) ListItensTx(tx *gorm.DB, comandaID uuid.UUID) ([]model.ItemComanda, error) {
	var itens []model.ItemComanda
	err := tx.Where("comanda_id = ?", comandaID).Order("created_at ASC").Find(&itens).Error
	return itens, err
}

func (r *comandaRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.ItemComanda{}, "id = ?", itemID).Error
}

func (r *comandaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comanda, error) {
	var c model.Comanda
	err := r.db.WithContext(ctx).Preload("Vendedor").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *comandaRepo) ListItens(ctx context.Context, comandaID uuid.UUID) ([]model.ItemComanda, error) {
	var itens []model.ItemComanda
	err := r.db.WithContext(ctx).Preload("Produto").
		Where("comanda_id = ?", comandaID).
		Order("created_at ASC").
		Find(&itens).Error
	return itens, err
}

func (r *comandaRepo) ListAbertas(ctx context.Context, vendedorID *uuid.UUID) ([]model.Comanda, error) {
	q := r.db.WithContext(ctx).Preload("Vendedor").Where("status = ?", model.ComandaAberta)
	if vendedorID != nil {
		q = q.Where("vendedor_id = ?", *vendedorID)
	}
	var comandas []model.Comanda
	err := q.Order("created_at DESC").Find(&comandas).Error
	return comandas, err
}

func (r *comandaRepo) ResumoPorProduto(ctx context.Context, inicio, fim time.Time, vendedorID *uuid.UUID) ([]ResumoProdutoRow, error) {
	q := r.db.WithContext(ctx).Table("itens_comanda AS i").
		Select("i.produto_id, p.nome, SUM(i.quantidade) AS quantidade, SUM(i.total) AS total").
		Joins("JOIN comandas c ON c.id = i.comanda_id").
		Joins("JOIN produtos p ON p.id = i.produto_id").
		Where("c.status = ? AND c.updated_at >= ? AND c.updated_at < ?", model.ComandaFinalizada, inicio, fim)
	if vendedorID != nil {
		q = q.Where("c.vendedor_id = ?", *vendedorID)
	}
	var rows []ResumoProdutoRow
	err := q.Group("i.produto_id, p.nome").Order("total DESC").Scan(&rows).Error
	return rows, err
}

func (r *comandaRepo) ResumoPorVendedor(ctx context.Context, inicio, fim time.Time, vendedorID *uuid.UUID) ([]ResumoVendedorRow, error) {
	q := r.db.WithContext(ctx).Table("comandas AS c").
		Select("c.vendedor_id, u.nome, COUNT(c.id) AS comandas, COALESCE(SUM(c.valor_total), 0) AS total").
		Joins("JOIN usuarios u ON u.id = c.vendedor_id").
		Where("c.status = ? AND c.updated_at >= ? AND c.updated_at < ?", model.ComandaFinalizada, inicio, fim)
	if vendedorID != nil {
		q = q.Where("c.vendedor_id = ?", *vendedorID)
	}
	var rows []ResumoVendedorRow
	err := q.Group("c.vendedor_id, u.nome").Order("total DESC").Scan(&rows).Error
	return rows, err
}
