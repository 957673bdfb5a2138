// Package views holds the screens reachable through the client router and
// the state each of them owns.
package views

import "context"

// Notifier shows short user-facing notices.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type Navigator interface {
	Navigate(ctx context.Context, url string) error
}
