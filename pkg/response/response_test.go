package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestResponseErrorHidesInternalDetails(t *testing.T) {
	c, w := newContext()
	ResponseError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

func TestResponseErrorKeepsAppErrorMessage(t *testing.T) {
	c, w := newContext()
	ResponseError(c, apperror.New(http.StatusInternalServerError, "failed to generate course draft", errors.New("raw upstream")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to generate course draft", decode(t, w)["error"])
}

func TestResponseErrorMapsSentinels(t *testing.T) {
	c, w := newContext()
	ResponseError(c, fmt.Errorf("course not found: %w", apperror.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "course not found: resource not found", decode(t, w)["error"])
}

func TestResponseErrorValidationDetails(t *testing.T) {
	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}
	c, w := newContext()
	ResponseError(c, validator.Validate(payload{Email: "nope"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation failed", body["error"])
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "email", details[0].(map[string]any)["field"])
}

func TestResponseErrorExplicitStatusBeatsValidation(t *testing.T) {
	type draft struct {
		Title string `json:"title" binding:"required"`
	}
	c, w := newContext()
	ResponseError(c, apperror.New(http.StatusInternalServerError, "failed to generate course draft", validator.Validate(draft{})))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "failed to generate course draft", body["error"])
	assert.NotContains(t, body, "details")
}
