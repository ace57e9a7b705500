package dto

type CourseDraftRequest struct {
	Topic    string `json:"topic" binding:"required,min=3"`
	Audience string `json:"audience" binding:"required,min=3"`
	Goals    string `json:"goals" binding:"omitempty,min=3"`
	Level    string `json:"level" binding:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
}

// CourseDraft is the shape the model must return. It is validated before reaching the client.
type CourseDraft struct {
	Title            string   `json:"title" binding:"required"`
	Description      string   `json:"description" binding:"required"`
	Category         string   `json:"category" binding:"required"`
	Level            string   `json:"level" binding:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	PriceSuggestion  float64  `json:"priceSuggestion" binding:"gte=0"`
	DurationHours    float64  `json:"durationHours" binding:"gt=0"`
	Outline          []string `json:"outline" binding:"required,min=3,dive,required"`
	Keywords         []string `json:"keywords" binding:"required,min=3,max=10,dive,required"`
	CoverImagePrompt string   `json:"coverImagePrompt" binding:"required"`
}

type SummaryRequest struct {
	Description string `json:"description" binding:"required,min=10"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}
