package handler

import (
	"net/http"

	"barcontrol/internal/apierror"
	"barcontrol/internal/dto"
	"barcontrol/internal/repository"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type ProdutosHandler struct {
	svc     service.ProdutoService
	estoque service.EstoqueService
	auditor Auditor
}

func NewProdutosHandler(svc service.ProdutoService, estoque service.EstoqueService, auditor Auditor) *ProdutosHandler {
	return &ProdutosHandler{svc: svc, estoque: estoque, auditor: auditor}
}

// Listar GET /v1/produtos?ativo=&nome=&tipo=
func (h *ProdutosHandler) Listar(c *gin.Context) {
	filter := repository.ProdutoFilter{
		Ativo: c.Query("ativo"),
		Nome:  c.Query("nome"),
		Tipo:  c.Query("tipo"),
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Obter(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Criar(c *gin.Context) {
	var req dto.CriarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "criar_produto", resp.Nome)
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) Atualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "atualizar_produto", resp.Nome)
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) ListarComponentes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarComponentes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DefinirComponentes POST /v1/produtos/:id/componentes replaces the combo's recipe.
func (h *ProdutosHandler) DefinirComponentes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.DefinirComponentesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DefinirComponentes(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "definir_componentes", id.String())
	c.JSON(http.StatusOK, resp)
}

func (h *ProdutosHandler) Entrada(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EntradaEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.estoque.Entrada(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "entrada_estoque", resp.Movimento.ProdutoNome+" +"+resp.Movimento.Quantidade.String())
	c.JSON(http.StatusCreated, resp)
}

func (h *ProdutosHandler) Saida(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SaidaEstoqueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.estoque.Saida(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, h.auditor, "saida_estoque", resp.Movimento.ProdutoNome+" -"+resp.Movimento.Quantidade.String())
	c.JSON(http.StatusCreated, resp)
}

// Movimentos GET /v1/produtos/movimentos?produto_id=&tipo=&page=&limit=
func (h *ProdutosHandler) Movimentos(c *gin.Context) {
	var filter dto.MovEstoqueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Filtro inválido"))
		return
	}
	resp, err := h.estoque.ListarMovimentos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
