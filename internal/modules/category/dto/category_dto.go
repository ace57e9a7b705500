package dto

type CategoryFilter struct {
	Search string `form:"search" binding:"omitempty,max=100"`
}

type CategoryResponse struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	CourseCount int64  `json:"courseCount"`
}
