package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarComandaRequest struct {
	Mesa       *string `json:"mesa"       validate:"omitempty,max=20"`
	Observacao *string `json:"observacao" validate:"omitempty,max=255"`
}

type AdicionarItemRequest struct {
	ProdutoID  string          `json:"produto_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComandaResponse struct {
	ID           string          `json:"id"`
	Numero       int64           `json:"numero"`
	VendedorID   string          `json:"vendedor_id"`
	VendedorNome string          `json:"vendedor_nome,omitempty"`
	Mesa         *string         `json:"mesa"`
	Observacao   *string         `json:"observacao"`
	Status       string          `json:"status"`
	ValorTotal   decimal.Decimal `json:"valor_total"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ItemComandaResponse struct {
	ID            string          `json:"id"`
	ComandaID     string          `json:"comanda_id"`
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome,omitempty"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

type AdicionarItemResponse struct {
	Item       ItemComandaResponse `json:"item"`
	ValorTotal decimal.Decimal     `json:"valor_total"`
}

type ComandaItensResponse struct {
	Comanda ComandaResponse       `json:"comanda"`
	Itens   []ItemComandaResponse `json:"itens"`
}

type ResumoProduto struct {
	ProdutoID  string          `json:"produto_id"`
	Nome       string          `json:"nome"`
	Quantidade decimal.Decimal `json:"quantidade"`
	Total      decimal.Decimal `json:"total"`
}

type ResumoVendedor struct {
	VendedorID string          `json:"vendedor_id"`
	Nome       string          `json:"nome"`
	Comandas   int64           `json:"comandas"`
	Total      decimal.Decimal `json:"total"`
}

// ResumoDiaResponse summarises comandas finalized during the local calendar day.
type ResumoDiaResponse struct {
	Data       string           `json:"data"`
	TotalGeral decimal.Decimal  `json:"total_geral"`
	Produtos   []ResumoProduto  `json:"produtos"`
	Vendedores []ResumoVendedor `json:"vendedores"`
}
