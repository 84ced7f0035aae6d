package handler

import (
	"net/http"
	"strconv"

	"barcontrol/internal/repository"
	"barcontrol/internal/service"

	"github.com/gin-gonic/gin"
)

type LogsHandler struct{ svc service.LogService }

func NewLogsHandler(svc service.LogService) *LogsHandler { return &LogsHandler{svc: svc} }

// Listar GET /v1/logs?usuario=&acao=&limit=
func (h *LogsHandler) Listar(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.Listar(c.Request.Context(), repository.LogFilter{
		Usuario: c.Query("usuario"),
		Acao:    c.Query("acao"),
		Limit:   limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
