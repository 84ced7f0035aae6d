package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	Nome          string          `json:"nome"           validate:"required,min=1,max=120"`
	Preco         decimal.Decimal `json:"preco"          validate:"min=0"`
	EstoqueAtual  decimal.Decimal `json:"estoque_atual"  validate:"min=0"`
	EstoqueMinimo decimal.Decimal `json:"estoque_minimo" validate:"min=0"`
	Tipo          string          `json:"tipo"           validate:"omitempty,oneof=SIMPLES COMBO"`
}

// AtualizarProdutoRequest is a partial update: nil fields are left untouched.
type AtualizarProdutoRequest struct {
	Nome          *string          `json:"nome"           validate:"omitempty,min=1,max=120"`
	Preco         *decimal.Decimal `json:"preco"          validate:"omitempty,min=0"`
	EstoqueMinimo *decimal.Decimal `json:"estoque_minimo" validate:"omitempty,min=0"`
	Tipo          *string          `json:"tipo"           validate:"omitempty,oneof=SIMPLES COMBO"`
	Ativo         *bool            `json:"ativo"`
}

type ComponenteRequest struct {
	ComponenteID string          `json:"componente_id" validate:"required,uuid"`
	Quantidade   decimal.Decimal `json:"quantidade"    validate:"gt=0"`
}

type DefinirComponentesRequest struct {
	Componentes []ComponenteRequest `json:"componentes" validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProdutoResponse is the display projection used by the sales screens.
// DisponivelCombo is only set for combos.
type ProdutoResponse struct {
	ID              string          `json:"id"`
	Nome            string          `json:"nome"`
	Preco           decimal.Decimal `json:"preco"`
	Tipo            string          `json:"tipo"`
	Ativo           bool            `json:"ativo"`
	EstoqueAtual    decimal.Decimal `json:"estoque_atual"`
	EstoqueMinimo   decimal.Decimal `json:"estoque_minimo"`
	Saldo           decimal.Decimal `json:"saldo"`
	DisponivelCombo *int64          `json:"disponivel_combo,omitempty"`
	CanAdd          bool            `json:"can_add"`
	ReasonDisabled  *string         `json:"reason_disabled"`
	AbaixoMinimo    bool            `json:"abaixo_minimo"`
}

type ComponenteResponse struct {
	ComponenteID string          `json:"componente_id"`
	Nome         string          `json:"nome"`
	Quantidade   decimal.Decimal `json:"quantidade"`
}

type ComponentesResponse struct {
	ComboID     string               `json:"combo_id"`
	Componentes []ComponenteResponse `json:"componentes"`
}
