package handler

import (
	"fmt"
	"net/http"

	"barcontrol/internal/dto"
	"barcontrol/internal/middleware"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type ComandasHandler struct {
	svc     service.ComandaService
	auditor Auditor
}

func NewComandasHandler(svc service.ComandaService, auditor Auditor) *ComandasHandler {
	return &ComandasHandler{svc: svc, auditor: auditor}
}

// Criar godoc
// @Summary      Abrir comanda
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarComandaRequest true "Mesa e observação"
// @Success      201  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/comandas [post]
func (h *ComandasHandler) Criar(c *gin.Context) {
	var req dto.CriarComandaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), middleware.GetAtor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "abrir_comanda", fmt.Sprintf("#%d", resp.Numero))
	c.JSON(http.StatusCreated, resp)
}

// ListarAbertas GET /v1/comandas/abertas. Sellers only see their own tabs.
func (h *ComandasHandler) ListarAbertas(c *gin.Context) {
	resp, err := h.svc.ListarAbertas(c.Request.Context(), middleware.GetAtor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComandasHandler) Obter(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComandasHandler) ListarItens(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarItens(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdicionarItem godoc
// @Summary      Adicionar item à comanda
// @Description  Reserva o estoque (combos baixam cada componente) e soma ao total.
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID da comanda"
// @Param        body body dto.AdicionarItemRequest true "Produto e quantidade"
// @Success      201  {object} dto.AdicionarItemResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/comandas/{id}/itens [post]
func (h *ComandasHandler) AdicionarItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdicionarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdicionarItem(c.Request.Context(), middleware.GetAtor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "adicionar_item", fmt.Sprintf("%s x%s", resp.Item.ProdutoNome, resp.Item.Quantidade))
	c.JSON(http.StatusCreated, resp)
}

// RemoverItem godoc
// @Summary      Remover item da comanda
// @Description  Estorna exatamente o que foi baixado para o item.
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        item_id path   string true "UUID do item"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/comandas/itens/{item_id} [delete]
func (h *ComandasHandler) RemoverItem(c *gin.Context) {
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoverItem(c.Request.Context(), middleware.GetAtor(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "remover_item", fmt.Sprintf("comanda #%d", resp.Numero))
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar comanda
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID da comanda"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/comandas/{id}/cancelar [post]
func (h *ComandasHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "cancelar_comanda", fmt.Sprintf("#%d", resp.Numero))
	c.JSON(http.StatusOK, resp)
}

// Finalizar godoc
// @Summary      Finalizar comanda
// @Tags         comandas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "UUID da comanda"
// @Success      200  {object} dto.ComandaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      403  {object} apierror.APIError
// @Router       /v1/comandas/{id}/finalizar [post]
func (h *ComandasHandler) Finalizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), middleware.GetAtor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "finalizar_comanda", fmt.Sprintf("#%d total %s", resp.Numero, resp.ValorTotal.StringFixed(2)))
	c.JSON(http.StatusOK, resp)
}

func (h *ComandasHandler) ResumoDia(c *gin.Context) {
	resp, err := h.svc.ResumoDia(c.Request.Context(), middleware.GetAtor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
