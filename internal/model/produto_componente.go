package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProdutoComponente links a combo to one of its SIMPLES components.
// Quantidade is the amount consumed per one combo unit (may be fractional, e.g. doses).
type ProdutoComponente struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComboID      uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_combo_componente;not null"`
	ComponenteID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_combo_componente;index;not null"`
	Quantidade   decimal.Decimal `gorm:"type:numeric(12,3);not null"`

	Componente *Produto `gorm:"foreignKey:ComponenteID"`
}

// TableName overrides GORM's default pluralization (produto_componentes → produtos_componentes).
func (ProdutoComponente) TableName() string { return "produtos_componentes" }
