package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"min=0"`
	Observacao   *string         `json:"observacao"    validate:"omitempty,max=255"`
}

type FecharCaixaRequest struct {
	SaldoFinal decimal.Decimal `json:"saldo_final" validate:"min=0"`
	Observacao *string         `json:"observacao"  validate:"omitempty,max=255"`
}

// RegistrarMovimentoRequest leaves tipo/valor checks to the service so that the
// domain error (not a validator tag) reaches the client.
type RegistrarMovimentoRequest struct {
	Tipo          string           `json:"tipo"           validate:"required"`
	Valor         decimal.Decimal  `json:"valor"`
	Descricao     *string          `json:"descricao"      validate:"omitempty,max=255"`
	PagamentoTipo *string          `json:"pagamento_tipo" validate:"omitempty,oneof=DINHEIRO CARTAO"`
	ValorRecebido *decimal.Decimal `json:"valor_recebido"`
}

type VendaBalcaoRequest struct {
	ProdutoID     string          `json:"produto_id"     validate:"required,uuid"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	Descricao     *string         `json:"descricao"      validate:"omitempty,max=255"`
	PagamentoTipo *string         `json:"pagamento_tipo" validate:"omitempty,oneof=DINHEIRO CARTAO"`
}

type VendaBalcaoItem struct {
	ProdutoID  string          `json:"produto_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade"`
}

type VendaBalcaoLoteRequest struct {
	Itens         []VendaBalcaoItem `json:"itens"          validate:"dive"`
	Descricao     *string           `json:"descricao"      validate:"omitempty,max=255"`
	PagamentoTipo string            `json:"pagamento_tipo" validate:"required,oneof=DINHEIRO CARTAO"`
	ValorRecebido *decimal.Decimal  `json:"valor_recebido"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CaixaResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	SaldoInicial decimal.Decimal  `json:"saldo_inicial"`
	SaldoFinal   *decimal.Decimal `json:"saldo_final"`
	Observacao   *string          `json:"observacao"`
	AbertoEm     time.Time        `json:"aberto_em"`
	FechadoEm    *time.Time       `json:"fechado_em"`
}

type FecharCaixaResponse struct {
	CaixaResponse
	TotalVendido decimal.Decimal `json:"total_vendido"`
}

type CaixaMovResponse struct {
	ID            string           `json:"id"`
	CaixaID       string           `json:"caixa_id"`
	Tipo          string           `json:"tipo"`
	Valor         decimal.Decimal  `json:"valor"`
	Descricao     *string          `json:"descricao"`
	PagamentoTipo *string          `json:"pagamento_tipo"`
	ValorRecebido *decimal.Decimal `json:"valor_recebido"`
	Troco         *decimal.Decimal `json:"troco"`
	CriadoEm      time.Time        `json:"criado_em"`
}

type VendaBalcaoItemResponse struct {
	ProdutoID     string          `json:"produto_id"`
	Nome          string          `json:"nome"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Total         decimal.Decimal `json:"total"`
}

type VendaBalcaoResponse struct {
	Movimento CaixaMovResponse          `json:"movimento"`
	Itens     []VendaBalcaoItemResponse `json:"itens"`
	Total     decimal.Decimal           `json:"total"`
	Troco     *decimal.Decimal          `json:"troco"`
}

// CaixaMovimentosResponse lists the ledger of the open caixa, or of the last one closed.
type CaixaMovimentosResponse struct {
	Caixa      *CaixaResponse     `json:"caixa"`
	Movimentos []CaixaMovResponse `json:"movimentos"`
}
