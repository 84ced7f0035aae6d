package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditoriaJob is the payload persisted as a LogAcao row by the audit worker.
type AuditoriaJob struct {
	Usuario  string    `json:"usuario"`
	Acao     string    `json:"acao"`
	Detalhe  *string   `json:"detalhe,omitempty"`
	IP       *string   `json:"ip,omitempty"`
	DataHora time.Time `json:"data_hora"`
}

// AlertaEstoque is emitted after commit when a product's balance reaches its minimum.
type AlertaEstoque struct {
	ProdutoID     string          `json:"produto_id"`
	Nome          string          `json:"nome"`
	Saldo         decimal.Decimal `json:"saldo"`
	EstoqueMinimo decimal.Decimal `json:"estoque_minimo"`
}
