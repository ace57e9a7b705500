package handler

import (
	"net/http"

	"anoa.com/coursemarket/internal/middleware"
	attachment "anoa.com/coursemarket/internal/modules/attachment/service"
	"anoa.com/coursemarket/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadCourseImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.service.UploadCourseImage(c.Request.Context(), middleware.CurrentUser(c), file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
