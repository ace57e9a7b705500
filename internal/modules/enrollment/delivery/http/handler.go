package handler

import (
	"net/http"

	"anoa.com/coursemarket/internal/middleware"
	"anoa.com/coursemarket/internal/modules/enrollment/dto"
	"anoa.com/coursemarket/internal/modules/enrollment/service"
	"anoa.com/coursemarket/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentHandler struct {
	service service.EnrollmentService
}

func NewEnrollmentHandler(service service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	var filter dto.EnrollmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	enrollments, err := h.service.ListEnrollments(c.Request.Context(), middleware.CurrentUser(c), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": enrollments})
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": enrollment})
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ResponseError(c, service.ErrEnrollmentNotFound)
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), middleware.CurrentUser(c), courseID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c)
}
