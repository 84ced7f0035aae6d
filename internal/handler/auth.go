package handler

import (
	"net/http"

	"barcontrol/internal/dto"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc     service.AuthService
	auditor Auditor
}

func NewAuthHandler(svc service.AuthService, auditor Auditor) *AuthHandler {
	return &AuthHandler{svc: svc, auditor: auditor}
}

// Login godoc
// @Summary      Login de usuário
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credenciais"
// @Success      200  {object} dto.LoginResponse
// @Failure      401  {object} apierror.APIError
// @Failure      429  {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct {
	svc     service.AuthService
	auditor Auditor
}

func NewUsuariosHandler(svc service.AuthService, auditor Auditor) *UsuariosHandler {
	return &UsuariosHandler{svc: svc, auditor: auditor}
}

func (h *UsuariosHandler) Criar(c *gin.Context) {
	var req dto.CriarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CriarUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "criar_usuario", resp.Username+" ("+resp.Role+")")
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
