package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntradaEstoqueRequest struct {
	Quantidade  decimal.Decimal `json:"quantidade"   validate:"gt=0"`
	DataEntrada *time.Time      `json:"data_entrada"`
	Validade    *string         `json:"validade"     validate:"omitempty,datetime=2006-01-02"`
	Detalhe     *string         `json:"detalhe"      validate:"omitempty,max=200"`
}

type SaidaEstoqueRequest struct {
	Quantidade decimal.Decimal `json:"quantidade" validate:"gt=0"`
	Detalhe    *string         `json:"detalhe"    validate:"omitempty,max=200"`
}

type MovEstoqueFilter struct {
	ProdutoID string `form:"produto_id"`
	Tipo      string `form:"tipo"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type MovEstoqueResponse struct {
	ID            string          `json:"id"`
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	Tipo          string          `json:"tipo"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	DataHora      time.Time       `json:"data_hora"`
	Detalhe       string          `json:"detalhe"`
	ComandaID     *string         `json:"comanda_id"`
	ItemComandaID *string         `json:"item_comanda_id"`
}

type MovEstoqueListResponse struct {
	Data  []MovEstoqueResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// EstoqueAjusteResponse answers manual intake/withdrawal with the resulting balance.
type EstoqueAjusteResponse struct {
	Movimento MovEstoqueResponse `json:"movimento"`
	Saldo     decimal.Decimal    `json:"saldo"`
}
