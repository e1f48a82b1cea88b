package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"homecare/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("bad input")), code: http.StatusBadRequest, message: "bad input"},
		{name: "bad request from string", err: failure.BadRequestFromString("missing date"), code: http.StatusBadRequest, message: "missing date"},
		{name: "unauthorized", err: failure.Unauthorized("no token"), code: http.StatusUnauthorized, message: "no token"},
		{name: "not found", err: failure.NotFound("booking not found"), code: http.StatusNotFound, message: "booking not found"},
		{name: "conflict", err: failure.Conflict("schedule conflict"), code: http.StatusConflict, message: "schedule conflict"},
		{name: "forbidden", err: failure.Forbidden("not your booking"), code: http.StatusForbidden, message: "not your booking"},
		{name: "internal", err: failure.InternalError(errors.New("db down")), code: http.StatusInternalServerError, message: "db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilInputs(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestValidation(t *testing.T) {
	err := failure.Validation("invalid booking data", []failure.FieldError{{Field: "phone", Message: "Phone is required"}})

	fail, ok := failure.As(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, fail.Code)
	assert.Len(t, fail.Errors, 1)
	assert.Equal(t, "phone", fail.Errors[0].Field)
}

func TestGetCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to assign worker: %w", failure.Conflict("schedule conflict"))

	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))
}
