package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("course not found: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "unauthorized", err: ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "forbidden", err: fmt.Errorf("not your course: %w", ErrForbidden), want: http.StatusForbidden},
		{name: "bad request", err: ErrBadRequest, want: http.StatusBadRequest},
		{name: "invalid input", err: ErrInvalidInput, want: http.StatusBadRequest},
		{name: "conflict", err: fmt.Errorf("already enrolled: %w", ErrConflict), want: http.StatusBadRequest},
		{name: "rate limit", err: ErrRateLimitExceeded, want: http.StatusTooManyRequests},
		{name: "unavailable", err: ErrUnavailable, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "app error code wins", err: New(http.StatusNotFound, "model not found", ErrInternal), want: http.StatusNotFound},
		{name: "first sentinel wins", err: errors.Join(ErrConflict, ErrNotFound), want: http.StatusNotFound},
		{name: "wrapped app error", err: fmt.Errorf("draft: %w", New(http.StatusUnauthorized, "bad key", nil)), want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusInternalServerError, "", errors.New("upstream exploded"))
	assert.Equal(t, "upstream exploded", err.Error())

	err = New(http.StatusNotFound, "model not found", errors.New("404"))
	assert.Equal(t, "model not found", err.Error())
	assert.True(t, errors.Is(err, err.Err))

	err = New(http.StatusBadGateway, "", nil)
	assert.Equal(t, "Bad Gateway", err.Error())
}
