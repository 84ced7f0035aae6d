package handler

import (
	"net/http"

	"barcontrol/internal/dto"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type CaixaHandler struct {
	svc     service.CaixaService
	auditor Auditor
}

func NewCaixaHandler(svc service.CaixaService, auditor Auditor) *CaixaHandler {
	return &CaixaHandler{svc: svc, auditor: auditor}
}

// Atual godoc
// @Summary      Caixa atual
// @Description  Caixa aberto ou o último fechado; null quando nenhum caixa foi aberto.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CaixaResponse
// @Router       /v1/caixa/atual [get]
func (h *CaixaHandler) Atual(c *gin.Context) {
	resp, err := h.svc.Atual(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Abrir godoc
// @Summary      Abrir caixa
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCaixaRequest true "Saldo inicial"
// @Success      201  {object} dto.CaixaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/abrir [post]
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "abrir_caixa", "saldo inicial "+resp.SaldoInicial.StringFixed(2))
	c.JSON(http.StatusCreated, resp)
}

// Fechar godoc
// @Summary      Fechar caixa
// @Description  Soma as vendas do dia e registra o FECHAMENTO.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FecharCaixaRequest true "Saldo final"
// @Success      200  {object} dto.FecharCaixaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/fechar [post]
func (h *CaixaHandler) Fechar(c *gin.Context) {
	var req dto.FecharCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Fechar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "fechar_caixa", "total vendido "+resp.TotalVendido.StringFixed(2))
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimento godoc
// @Summary      Registrar movimento manual
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarMovimentoRequest true "VENDA, REFORCO, SANGRIA ou AJUSTE"
// @Success      201  {object} dto.CaixaMovResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/movimentos [post]
func (h *CaixaHandler) RegistrarMovimento(c *gin.Context) {
	var req dto.RegistrarMovimentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "movimento_caixa", resp.Tipo+" "+resp.Valor.StringFixed(2))
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimentos godoc
// @Summary      Movimentos do caixa atual
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CaixaMovimentosResponse
// @Router       /v1/caixa/movimentos [get]
func (h *CaixaHandler) ListarMovimentos(c *gin.Context) {
	resp, err := h.svc.ListarMovimentos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VendaBalcao godoc
// @Summary      Venda de balcão
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.VendaBalcaoRequest true "Produto e quantidade"
// @Success      201  {object} dto.VendaBalcaoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/venda-balcao [post]
func (h *CaixaHandler) VendaBalcao(c *gin.Context) {
	var req dto.VendaBalcaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VendaBalcao(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "venda_balcao", "total "+resp.Total.StringFixed(2))
	c.JSON(http.StatusCreated, resp)
}

// VendaBalcaoLote godoc
// @Summary      Venda de balcão em lote
// @Description  Baixa todos os itens ou nenhum; registra uma única VENDA.
// @Tags         caixa
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.VendaBalcaoLoteRequest true "Itens e pagamento"
// @Success      201  {object} dto.VendaBalcaoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/caixa/venda-balcao-lote [post]
func (h *CaixaHandler) VendaBalcaoLote(c *gin.Context) {
	var req dto.VendaBalcaoLoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VendaBalcaoLote(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "venda_balcao_lote", "total "+resp.Total.StringFixed(2))
	c.JSON(http.StatusCreated, resp)
}
