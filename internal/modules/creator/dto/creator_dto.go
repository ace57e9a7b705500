package dto

import (
	"time"

	courseDto "anoa.com/coursemarket/internal/modules/course/dto"
	"github.com/google/uuid"
)

type UpsertCreatorRequest struct {
	Bio       *string `json:"bio" binding:"omitempty,max=2000"`
	Expertise *string `json:"expertise" binding:"omitempty,max=500"`
}

type CreatorFilter struct {
	UserID string `form:"userId" binding:"omitempty,uuid"`
}

type CreatorIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CreatorProfileResponse struct {
	ID        uuid.UUID                  `json:"id"`
	UserID    uuid.UUID                  `json:"userId"`
	Bio       *string                    `json:"bio"`
	Expertise *string                    `json:"expertise"`
	User      *courseDto.CreatorUser     `json:"user"`
	Courses   []courseDto.CourseResponse `json:"courses"`
	CreatedAt time.Time                  `json:"createdAt"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

type CreatorSummaryResponse struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"userId"`
	Bio         *string                `json:"bio"`
	Expertise   *string                `json:"expertise"`
	User        *courseDto.CreatorUser `json:"user"`
	CourseCount int64                  `json:"courseCount"`
	CreatedAt   time.Time              `json:"createdAt"`
}
