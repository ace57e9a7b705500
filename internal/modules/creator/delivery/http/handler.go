package handler

import (
	"net/http"

	"anoa.com/coursemarket/internal/middleware"
	"anoa.com/coursemarket/internal/modules/creator/dto"
	"anoa.com/coursemarket/internal/modules/creator/service"
	"anoa.com/coursemarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreatorHandler struct {
	service service.CreatorService
}

func NewCreatorHandler(service service.CreatorService) *CreatorHandler {
	return &CreatorHandler{service: service}
}

// GetCreators lists creators, or returns a single profile when ?userId= is given.
func (h *CreatorHandler) GetCreators(c *gin.Context) {
	var filter dto.CreatorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	if filter.UserID != "" {
		profile, err := h.service.GetProfileByUserID(c.Request.Context(), uuid.MustParse(filter.UserID))
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": profile})
		return
	}

	creators, err := h.service.ListCreators(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": creators})
}

func (h *CreatorHandler) GetCreator(c *gin.Context) {
	var req dto.CreatorIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "creator not found"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (h *CreatorHandler) UpsertProfile(c *gin.Context) {
	var req dto.UpsertCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	profile, err := h.service.UpsertProfile(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}
