package service

import (
	"barcontrol/internal/model"

	"github.com/google/uuid"
)

// Ator is the authenticated user on whose behalf a service call runs.
type Ator struct {
	ID       uuid.UUID
	Username string
	Role     string
}

func (a Ator) Admin() bool { return a.Role == model.RoleAdmin }

// podeAcessar reports whether the actor may touch a comanda owned by vendedorID.
// Admins see every comanda; everybody else only their own.
func (a Ator) podeAcessar(vendedorID uuid.UUID) bool {
	return a.Admin() || a.ID == vendedorID
}
