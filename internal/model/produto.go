package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProdutoTipo: "SIMPLES" | "COMBO"
type ProdutoTipo string

const (
	ProdutoSimples ProdutoTipo = "SIMPLES"
	ProdutoCombo   ProdutoTipo = "COMBO"
)

// Produto is a sellable item. A COMBO product has no stock of its own: selling it consumes
// its ProdutoComponente links, which always point to SIMPLES products.
type Produto struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome  string          `gorm:"type:varchar(200);index;not null"`
	Preco decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	// EstoqueAtual is the legacy snapshot. It is the balance only while the product has no
	// MovEstoque rows; afterwards the ledger wins (it is still kept in sync on every write).
	EstoqueAtual  decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
	EstoqueMinimo decimal.Decimal `gorm:"type:numeric(12,3);not null;default:0"`
	Tipo          ProdutoTipo     `gorm:"type:varchar(10);not null;default:'SIMPLES'"`
	Ativo         bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Componentes []ProdutoComponente `gorm:"foreignKey:ComboID"`
}

func (p *Produto) IsCombo() bool { return p.Tipo == ProdutoCombo }
