package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoMov: "BAIXA" (deduction) | "ESTORNO" (reversal) | "ENTRADA" (intake)
type TipoMov string

const (
	MovBaixa   TipoMov = "BAIXA"
	MovEstorno TipoMov = "ESTORNO"
	MovEntrada TipoMov = "ENTRADA"
)

// MovEstoque is an append-only stock ledger entry. Quantidade is always positive; the
// direction comes from Tipo. Rows are never updated or deleted.
type MovEstoque struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComandaID     *uuid.UUID      `gorm:"type:uuid;index"`
	ItemComandaID *uuid.UUID      `gorm:"type:uuid;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo          TipoMov         `gorm:"type:varchar(10);not null"`
	Quantidade    decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	DataHora      time.Time       `gorm:"not null;index"`
	Detalhe       string          `gorm:"type:varchar(255)"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// TableName overrides GORM's default pluralization (mov_estoques → mov_estoque).
func (MovEstoque) TableName() string { return "mov_estoque" }
