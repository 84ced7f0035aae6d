package dto

import "time"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	User        UsuarioResponse `json:"user"`
}

type CriarUsuarioRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Nome     string `json:"nome"     validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN VENDEDOR CAIXA"`
}

type UsuarioResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nome     string `json:"nome"`
	Role     string `json:"role"`
	Ativo    bool   `json:"ativo"`
}

type LogResponse struct {
	ID       string    `json:"id"`
	Usuario  string    `json:"usuario"`
	Acao     string    `json:"acao"`
	Detalhe  *string   `json:"detalhe"`
	IP       *string   `json:"ip"`
	DataHora time.Time `json:"data_hora"`
}
