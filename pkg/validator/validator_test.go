package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string   `json:"title" binding:"required,min=3"`
	Level    string   `json:"level" binding:"oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Price    float64  `json:"price" binding:"gte=0"`
	ImageURL string   `json:"imageUrl" binding:"http_url"`
	Tags     []string `json:"tags" binding:"min=1"`
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	err := Validate(sample{Title: "ab", Level: "EXPERT", Price: -1, ImageURL: "not a url"})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := FieldErrors(err)
	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}

	assert.Equal(t, "title must be at least 3 characters", byField["title"])
	assert.Equal(t, "level must be one of: BEGINNER, INTERMEDIATE, ADVANCED", byField["level"])
	assert.Equal(t, "price must be greater than or equal to 0", byField["price"])
	assert.Equal(t, "imageUrl must be a valid URL", byField["imageUrl"])
	assert.Equal(t, "tags must contain at least 1 items", byField["tags"])
}

func TestValidPayload(t *testing.T) {
	err := Validate(sample{
		Title:    "Go for backend engineers",
		Level:    "BEGINNER",
		Price:    0,
		ImageURL: "https://images.example.com/go.png",
		Tags:     []string{"go"},
	})
	assert.NoError(t, err)
}

func TestFormatValidationErrorPassesThroughOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(errors.New("EOF")))
	assert.Equal(t, "EOF", FormatValidationError(errors.New("EOF")))

	err := Validate(sample{Level: "BEGINNER", ImageURL: "https://x.io/a.png", Tags: []string{"a"}})
	assert.Equal(t, "title is required", FormatValidationError(err))
}
