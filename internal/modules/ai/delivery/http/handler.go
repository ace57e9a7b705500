package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"anoa.com/coursemarket/internal/middleware"
	"anoa.com/coursemarket/internal/modules/ai/dto"
	aiService "anoa.com/coursemarket/internal/modules/ai/service"
	"anoa.com/coursemarket/pkg/ratelimiter"
	"anoa.com/coursemarket/pkg/response"
	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	aiService aiService.AIService
}

func NewAIHandler(aiService aiService.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

func (h *AIHandler) GenerateCourseDraft(c *gin.Context) {
	var req dto.CourseDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	draft, err := h.aiService.GenerateCourseDraft(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft})
}

func (h *AIHandler) Summarize(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	summary, err := h.aiService.SummarizeCourse(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func respondError(c *gin.Context, err error) {
	var rateLimitErr *ratelimiter.Error
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", math.Ceil(rateLimitErr.RetryAfter.Seconds())))
	}
	response.ResponseError(c, err)
}
