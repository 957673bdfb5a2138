package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportError_MessageFallsBackToStatusText(t *testing.T) {
	err := &TransportError{Method: "GET", Path: "/games/", Status: http.StatusNotFound}
	assert.Equal(t, "GET /games/: 404 Not Found", err.Error())

	err.Message = "Game not found"
	assert.Equal(t, "GET /games/: 404 Game not found", err.Error())
}

func TestServerMessage(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", &TransportError{Status: 401, Message: "invalid credentials"})
	assert.Equal(t, "invalid credentials", ServerMessage(wrapped, "fallback"))

	assert.Equal(t, "fallback", ServerMessage(&TransportError{Status: 500}, "fallback"))
	assert.Equal(t, "fallback", ServerMessage(&NetworkError{Err: errors.New("refused")}, "fallback"))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(fmt.Errorf("x: %w", &TransportError{Status: http.StatusUnauthorized})))
	assert.False(t, IsUnauthorized(&TransportError{Status: http.StatusForbidden}))
	assert.False(t, IsUnauthorized(errors.New("plain")))
}

func TestNetworkError_Unwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Method: "GET", Path: "/stats", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "title: is required", (&ValidationError{Field: "title", Message: "is required"}).Error())
	assert.Equal(t, "passwords do not match", (&ValidationError{Message: "passwords do not match"}).Error())
}

func TestPersistedStateError_Error(t *testing.T) {
	assert.Equal(t, "persisted user missing", (&PersistedStateError{Key: "user"}).Error())
	inner := errors.New("bad json")
	err := &PersistedStateError{Key: "user", Err: inner}
	assert.ErrorIs(t, err, inner)
}
