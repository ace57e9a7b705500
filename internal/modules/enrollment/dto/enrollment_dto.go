package dto

import (
	"time"

	"anoa.com/coursemarket/internal/entity"
	courseDto "anoa.com/coursemarket/internal/modules/course/dto"
	"github.com/google/uuid"
)

type CreateEnrollmentRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

type EnrollmentFilter struct {
	CourseID string `form:"courseId" binding:"omitempty,uuid"`
}

type EnrollmentResponse struct {
	ID         uuid.UUID                 `json:"id"`
	CourseID   uuid.UUID                 `json:"courseId"`
	EnrolledAt time.Time                 `json:"enrolledAt"`
	Course     *courseDto.CourseResponse `json:"course,omitempty"`
}

func ToEnrollmentResponse(e *entity.Enrollment) EnrollmentResponse {
	resp := EnrollmentResponse{
		ID:         e.ID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	}
	if e.Course != nil {
		course := courseDto.ToCourseResponse(e.Course)
		resp.Course = &course
	}
	return resp
}
