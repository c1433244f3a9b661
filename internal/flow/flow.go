// Package flow holds the client-side state machines behind both the
// interactive UI and the CLI: the login flow and the home flow (list,
// editor modal, delete, logout).
//
// Each network operation comes in two halves. The IO half performs the
// call and returns its result; the Apply half takes that result and
// updates state. The UI runs the IO half as a tea.Cmd and applies the
// result when its message arrives; the CLI and tests use the
// synchronous methods that do both.
//
// Failures are logged and returned. State only changes in the ways each
// operation documents.
package flow

import (
	"context"

	"github.com/devhell/todo/internal/model"
)

// API is the remote todo service. *api.Client implements it.
type API interface {
	Authenticate(ctx context.Context, creds model.Credentials) (string, error)
	ListTodos(ctx context.Context) ([]model.Todo, error)
	GetTodo(ctx context.Context, id string) (model.Todo, error)
	CreateTodo(ctx context.Context, in model.TodoInput) (model.Todo, error)
	UpdateTodo(ctx context.Context, id string, in model.TodoInput) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Tokens persists the session token. *session.Session implements it.
type Tokens interface {
	Save(token string) error
	Clear() error
}

// Navigator switches the visible view.
type Navigator interface {
	Navigate(v model.View)
}

// Nav is a Navigator that just remembers the current view.
type Nav struct {
	view model.View
}

func NewNav(start model.View) *Nav { return &Nav{view: start} }

func (n *Nav) Navigate(v model.View) { n.view = v }

func (n *Nav) View() model.View { return n.view }
