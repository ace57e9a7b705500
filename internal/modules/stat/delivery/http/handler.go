package http

import (
	"net/http"

	"anoa.com/coursemarket/internal/middleware"
	statService "anoa.com/coursemarket/internal/modules/stat/service"
	"anoa.com/coursemarket/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetStats(c *gin.Context) {
	stats, err := h.statService.GetStats(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
