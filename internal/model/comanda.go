package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComandaStatus: "ABERTA" | "FINALIZADA" | "CANCELADA". Only ABERTA accepts changes.
type ComandaStatus string

const (
	ComandaAberta     ComandaStatus = "ABERTA"
	ComandaFinalizada ComandaStatus = "FINALIZADA"
	ComandaCancelada  ComandaStatus = "CANCELADA"
)

// Comanda is a running order (tab) owned by a seller.
// ValorTotal always equals the sum of its items' Total at every committed state.
type Comanda struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     int64           `gorm:"uniqueIndex;not null"`
	VendedorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Mesa       *string         `gorm:"type:varchar(20)"`
	Observacao *string         `gorm:"type:varchar(255)"`
	Status     ComandaStatus   `gorm:"type:varchar(12);not null;default:'ABERTA';index"`
	ValorTotal decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Vendedor *Usuario      `gorm:"foreignKey:VendedorID"`
	Itens    []ItemComanda `gorm:"foreignKey:ComandaID"`
}

func (c *Comanda) Aberta() bool { return c.Status == ComandaAberta }

// ItemComanda captures the unit price at add-time; later price changes do not affect it.
type ItemComanda struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ComandaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantidade    decimal.Decimal `gorm:"type:numeric(12,3);not null;default:1"`
	PrecoUnitario decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// TableName overrides GORM's default pluralization (item_comandas → itens_comanda).
func (ItemComanda) TableName() string { return "itens_comanda" }
