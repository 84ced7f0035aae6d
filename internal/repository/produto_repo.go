package repository

import (
	"bytes"
	"context"
	"sort"

	"barcontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProdutoFilter narrows catalog listings.
type ProdutoFilter struct {
	// Ativo: "false" = inactive only, "all" = everything, anything else = active only
	Ativo string
	Nome  string
	Tipo  string
}

// ProdutoRepository defines the data access contract for products and combo links.
// Methods suffixed with Tx run on the caller's transaction; callers must pass the tx instance.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	List(ctx context.Context, filter ProdutoFilter) ([]model.Produto, error)

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error)
	UpdateTx(tx *gorm.DB, p *model.Produto) error
	// LockTx takes FOR UPDATE row locks on every id, in ascending id order, and returns the
	// locked rows. Missing ids are simply absent from the result.
	LockTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Produto, error)
	AjustarEstoqueTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error

	ListComponentesTx(tx *gorm.DB, comboID uuid.UUID) ([]model.ProdutoComponente, error)
	SubstituirComponentesTx(tx *gorm.DB, comboID uuid.UUID, comps []model.ProdutoComponente) error
	// CountCombosComComponenteTx reports how many combos use id as a component.
	CountCombosComComponenteTx(tx *gorm.DB, id uuid.UUID) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *produtoRepo) List(ctx context.Context, filter ProdutoFilter) ([]model.Produto, error) {
	q := r.db.WithContext(ctx).Model(&model.Produto{})

	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = false")
	case "all":
	default:
		q = q.Where("ativo = true")
	}
	if filter.Nome != "" {
		q = q.Where("nome ILIKE ?", "%"+filter.Nome+"%")
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var produtos []model.Produto
	err := q.Order("nome ASC").Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) UpdateTx(tx *gorm.DB, p *model.Produto) error {
	return tx.Save(p).Error
}

func (r *produtoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := tx.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *produtoRepo) LockTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Produto, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := SortIDs(ids)
	// ORDER BY id makes Postgres acquire the row locks in ascending order.
	var produtos []model.Produto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) AjustarEstoqueTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) error {
	return tx.Model(&model.Produto{}).Where("id = ?", id).
		Update("estoque_atual", gorm.Expr("estoque_atual + ?", delta)).Error
}

func (r *produtoRepo) ListComponentesTx(tx *gorm.DB, comboID uuid.UUID) ([]model.ProdutoComponente, error) {
	var comps []model.ProdutoComponente
	err := tx.Where("combo_id = ?", comboID).Order("componente_id ASC").Find(&comps).Error
	return comps, err
}

func (r *produtoRepo) SubstituirComponentesTx(tx *gorm.DB, comboID uuid.UUID, comps []model.ProdutoComponente) error {
	if err := tx.Where("combo_id = ?", comboID).Delete(&model.ProdutoComponente{}).Error; err != nil {
		return err
	}
	if len(comps) == 0 {
		return nil
	}
	return tx.Create(&comps).Error
}

func (r *produtoRepo) CountCombosComComponenteTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.ProdutoComponente{}).Where("componente_id = ?", id).Count(&n).Error
	return n, err
}

// SortIDs returns a deduplicated copy of ids in ascending byte order, which is the order
// Postgres uses for the uuid type. Every multi-row lock goes through this ordering.
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
