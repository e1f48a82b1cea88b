package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"homecare/shared/failure"
	"homecare/transport/http/response"

	"github.com/stretchr/testify/assert"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation failure keeps field errors",
			err:      failure.Validation("invalid booking data", []failure.FieldError{{Field: "phone", Message: "Phone is required"}}),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid booking data","errors":[{"field":"phone","message":"Phone is required"}]}`,
		},
		{
			name:     "wrapped conflict",
			err:      fmt.Errorf("assign: %w", failure.Conflict("schedule conflict")),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"schedule conflict"}`,
		},
		{
			name:     "system error is hidden",
			err:      errors.New("pq: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
		},
		{
			name:     "internal failure is hidden",
			err:      failure.InternalError(errors.New("dial tcp 10.0.0.3:5432")),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			response.WithError(recorder, tt.err)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
		})
	}
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]string{"id": "booking-1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"id":"booking-1"}}`, recorder.Body.String())
}
