package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"resort/shared/failure"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "bad request from error", err: failure.BadRequest(errors.New("check_out must be after check_in")), wantCode: http.StatusBadRequest, wantMsg: "check_out must be after check_in"},
		{name: "bad request from string", err: failure.BadRequestFromString("Invalid Promocode"), wantCode: http.StatusBadRequest, wantMsg: "Invalid Promocode"},
		{name: "unauthorized", err: failure.Unauthorized("Authentication required"), wantCode: http.StatusUnauthorized, wantMsg: "Authentication required"},
		{name: "forbidden", err: failure.Forbidden("Admin access only"), wantCode: http.StatusForbidden, wantMsg: "Admin access only"},
		{name: "not found", err: failure.NotFound("room not found"), wantCode: http.StatusNotFound, wantMsg: "room not found"},
		{name: "conflict", err: failure.Conflict("Room is fully booked for these dates"), wantCode: http.StatusConflict, wantMsg: "Room is fully booked for these dates"},
		{name: "predefined forbidden", err: failure.ForbiddenError, wantCode: http.StatusForbidden, wantMsg: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	notFound := failure.NotFound("booking not found")

	assert.Equal(t, http.StatusNotFound, failure.GetCode(fmt.Errorf("failed to load invoice: %w", notFound)))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("connection reset by peer")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", notFound), notFound))
}
