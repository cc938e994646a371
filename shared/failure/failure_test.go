package failure_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"shareit/shared/failure"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	assert.Equal(t, "test error message", f.Error())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("item is not available"),
			code:    http.StatusBadRequest,
			message: "item is not available",
		},
		{
			name:    "not found",
			err:     failure.NotFound("booking with id 42 not found"),
			code:    http.StatusNotFound,
			message: "booking with id 42 not found",
		},
		{
			name:    "forbidden",
			err:     failure.Forbidden("only the item owner may change booking status"),
			code:    http.StatusForbidden,
			message: "only the item owner may change booking status",
		},
		{
			name:    "conflict",
			err:     failure.Conflict("user with this email already exists"),
			code:    http.StatusConflict,
			message: "user with this email already exists",
		},
		{
			name:    "internal error",
			err:     failure.InternalError(errors.New("boom")),
			code:    http.StatusInternalServerError,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fail *failure.Failure

			assert.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.code, fail.Code)
			assert.Equal(t, tt.message, fail.Message)
		})
	}
}

func TestNilErrors(t *testing.T) {
	assert.Nil(t, failure.BadRequest(nil))
	assert.Nil(t, failure.InternalError(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, failure.GetCode(failure.NotFound("missing")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain error")))
	assert.True(t, failure.IsCode(failure.Forbidden("no"), http.StatusForbidden))
}
