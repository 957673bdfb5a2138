package models

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a non-success answer from the backend.
type TransportError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *TransportError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NetworkError means the request never produced a usable response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a client-side input check that blocked submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// AuthError is what login and registration surface to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// PersistedStateError marks stored session data that is missing or corrupt.
type PersistedStateError struct {
	Key string
	Err error
}

func (e *PersistedStateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persisted %s missing", e.Key)
	}
	return fmt.Sprintf("persisted %s unreadable: %s", e.Key, e.Err)
}

func (e *PersistedStateError) Unwrap() error { return e.Err }

// ServerMessage extracts the message a user should see from err, or
// fallback when the transport carried none.
func ServerMessage(err error, fallback string) string {
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return fallback
}

func IsUnauthorized(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Unauthorized()
}
