package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values. ADMIN manages the catalog and users, VENDEDOR runs comandas,
// CAIXA operates the cash register.
const (
	RoleAdmin    = "ADMIN"
	RoleVendedor = "VENDEDOR"
	RoleCaixa    = "CAIXA"
)

// Usuario stores system users with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	Nome         string    `gorm:"type:varchar(120);not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(10);not null;default:'VENDEDOR'"`
	Ativo        bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LogAcao is an audit trail row written asynchronously by the worker pool.
type LogAcao struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Usuario  string    `gorm:"type:varchar(120);not null;index"`
	Acao     string    `gorm:"type:varchar(120);not null;index"`
	Detalhe  *string   `gorm:"type:varchar(500)"`
	IP       *string   `gorm:"type:varchar(64)"`
	DataHora time.Time `gorm:"not null;index"`
}

// TableName keeps the audit table name short.
func (LogAcao) TableName() string { return "logs" }
