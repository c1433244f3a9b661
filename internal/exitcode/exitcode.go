// Package exitcode defines the process exit codes of the todo CLI.
package exitcode

import (
	"errors"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/model"
	"github.com/devhell/todo/internal/session"
)

const (
	Success = 0

	// UserError covers bad arguments, unknown or ambiguous refs and a
	// declined confirmation.
	UserError = 1

	// AuthError covers a missing, rejected or expired token and bad credentials.
	AuthError = 2

	// BackendError covers network failures and unexpected responses.
	BackendError = 3
)

// UsageError marks an error caused by how the command was invoked.
type UsageError struct{ Msg string }

func (e *UsageError) Error() string { return e.Msg }

// Usage returns a *UsageError with msg.
func Usage(msg string) error { return &UsageError{Msg: msg} }

// For maps err to an exit code.
func For(err error) int {
	var ue *UsageError
	switch {
	case err == nil:
		return Success
	case errors.As(err, &ue), errors.Is(err, model.ErrMissingCredentials):
		return UserError
	case errors.Is(err, session.ErrNoToken), errors.Is(err, api.ErrUnauthorized):
		return AuthError
	case errors.Is(err, api.ErrNotFound):
		return UserError
	default:
		return BackendError
	}
}
