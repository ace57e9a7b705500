package dto

import (
	"time"

	"anoa.com/coursemarket/internal/entity"
	"github.com/google/uuid"
)

type CourseFilter struct {
	Search      string `form:"search"`
	Level       string `form:"level" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Category    string `form:"category"`
	IsPublished string `form:"isPublished" binding:"omitempty,oneof=true false"`
	CreatorID   string `form:"creatorId" binding:"omitempty,uuid"`
}

type SearchQuery struct {
	Query string `form:"q" binding:"required,min=1"`
	Limit int64  `form:"limit" binding:"omitempty,min=1,max=50"`
}

// CourseRequest is used for both create and update; updates replace every field.
type CourseRequest struct {
	Title       string   `json:"title" binding:"required,min=3"`
	Description string   `json:"description" binding:"required,min=10"`
	Category    string   `json:"category" binding:"required,min=2"`
	Level       string   `json:"level" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Price       *float64 `json:"price" binding:"required,gte=0,lte=99999999.99"`
	Duration    int      `json:"duration" binding:"required,min=1"`
	ImageURL    string   `json:"imageUrl" binding:"required,http_url"`
	IsPublished *bool    `json:"isPublished"`
}

type CourseIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type CreatorUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type CourseCreator struct {
	ID        uuid.UUID    `json:"id"`
	Bio       *string      `json:"bio"`
	Expertise *string      `json:"expertise"`
	User      *CreatorUser `json:"user"`
}

type CourseResponse struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	Level           string         `json:"level"`
	Price           float64        `json:"price"`
	Duration        int            `json:"duration"`
	ImageURL        string         `json:"imageUrl"`
	IsPublished     bool           `json:"isPublished"`
	CreatorID       uuid.UUID      `json:"creatorId"`
	Creator         *CourseCreator `json:"creator"`
	EnrollmentCount int64          `json:"enrollmentCount"`
	IsEnrolled      *bool          `json:"isEnrolled,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func ToCourseResponse(c *entity.Course) CourseResponse {
	resp := CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Level:       c.Level,
		Price:       c.Price,
		Duration:    c.Duration,
		ImageURL:    c.ImageURL,
		IsPublished: c.IsPublished,
		CreatorID:   c.CreatorID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Creator != nil {
		resp.Creator = &CourseCreator{
			ID:        c.Creator.ID,
			Bio:       c.Creator.Bio,
			Expertise: c.Creator.Expertise,
		}
		if c.Creator.User != nil {
			resp.Creator.User = &CreatorUser{
				ID:    c.Creator.User.ID,
				Name:  c.Creator.User.Name,
				Email: c.Creator.User.Email,
			}
		}
	}
	return resp
}
