package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaixaStatus: "ABERTO" | "FECHADO"
type CaixaStatus string

const (
	CaixaAberto  CaixaStatus = "ABERTO"
	CaixaFechado CaixaStatus = "FECHADO"
)

// CaixaMovTipo enumerates the cash ledger entry kinds.
type CaixaMovTipo string

const (
	CaixaMovVenda      CaixaMovTipo = "VENDA"
	CaixaMovReforco    CaixaMovTipo = "REFORCO"
	CaixaMovSangria    CaixaMovTipo = "SANGRIA"
	CaixaMovAjuste     CaixaMovTipo = "AJUSTE"
	CaixaMovAbertura   CaixaMovTipo = "ABERTURA"
	CaixaMovFechamento CaixaMovTipo = "FECHAMENTO"
)

// PagamentoTipo: "DINHEIRO" | "CARTAO"
type PagamentoTipo string

const (
	PagamentoDinheiro PagamentoTipo = "DINHEIRO"
	PagamentoCartao   PagamentoTipo = "CARTAO"
)

// Caixa is a cash register session. At most one row may be ABERTO at any time; the
// uniq_caixa_aberto partial index enforces it (see infra.applySchemaPatches).
type Caixa struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status       CaixaStatus      `gorm:"type:varchar(10);not null;default:'ABERTO';index"`
	SaldoInicial decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	SaldoFinal   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Observacao   *string          `gorm:"type:varchar(255)"`
	AbertoEm     time.Time        `gorm:"not null;index"`
	FechadoEm    *time.Time       `gorm:"index"`

	Movimentos []CaixaMov `gorm:"foreignKey:CaixaID"`
}

// CaixaMov is an immutable event in the cash ledger.
// ValorRecebido and Troco are only filled for cash (DINHEIRO) sales.
type CaixaMov struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaID       uuid.UUID        `gorm:"type:uuid;index;not null"`
	Tipo          CaixaMovTipo     `gorm:"type:varchar(12);not null"`
	Valor         decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Descricao     *string          `gorm:"type:varchar(255)"`
	PagamentoTipo *PagamentoTipo   `gorm:"type:varchar(10)"`
	ValorRecebido *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Troco         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CriadoEm      time.Time        `gorm:"not null;index"`
}

// TableName overrides GORM's default pluralization (caixa_movs → caixa_movimentos).
func (CaixaMov) TableName() string { return "caixa_movimentos" }
