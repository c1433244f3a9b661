// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/model"
)

// Epoch is the fixed clock of FakeAPI.
var Epoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// FakeAPI is an in-memory implementation of flow.API for testing.
type FakeAPI struct {
	mu     sync.Mutex
	users  map[string]string
	todos  []model.Todo
	nextID int
	calls  map[string]int

	// Headers, when set, is consulted on every authenticated call the
	// way the real client does. The last Authorization value is kept
	// and calls without the issued token fail with 401.
	Headers  api.HeaderSource
	lastAuth string

	// Error injection for testing
	AuthErr   error
	ListErr   error
	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// NewFakeAPI creates a FakeAPI with no users and no todos.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		users: make(map[string]string),
		calls: make(map[string]int),
	}
}

// AddUser registers a user that Authenticate accepts.
func (f *FakeAPI) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// TokenFor is the token Authenticate issues to username.
func TokenFor(username string) string {
	return "token-" + username
}

// AddTodo seeds a todo and returns it.
func (f *FakeAPI) AddTodo(title, description string) model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(title, description)
}

func (f *FakeAPI) addLocked(title, description string) model.Todo {
	f.nextID++
	t := model.Todo{
		ID:          fmt.Sprintf("id-%d", f.nextID),
		Title:       title,
		Description: description,
		CreatedAt:   Epoch.Add(time.Duration(f.nextID) * time.Minute),
	}
	t.UpdatedAt = t.CreatedAt
	f.todos = append(f.todos, t)
	return t
}

// Todos returns a copy of the stored todos.
func (f *FakeAPI) Todos() []model.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Todo, len(f.todos))
	copy(out, f.todos)
	return out
}

// Calls returns how many times method was called.
func (f *FakeAPI) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// LastAuth returns the Authorization header of the last authenticated call.
func (f *FakeAPI) LastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// begin counts the call and checks the token. Callers hold f.mu.
func (f *FakeAPI) begin(method string) error {
	f.calls[method]++
	if f.Headers == nil {
		return nil
	}
	f.lastAuth = f.Headers.Headers().Get("Authorization")
	token, ok := strings.CutPrefix(f.lastAuth, "Bearer ")
	if ok {
		for u := range f.users {
			if token == TokenFor(u) {
				return nil
			}
		}
	}
	return &api.StatusError{Code: http.StatusUnauthorized, Message: "invalid token"}
}

func (f *FakeAPI) find(id string) int {
	for i, t := range f.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return &api.StatusError{Code: http.StatusNotFound, Message: "todo " + id + " not found"}
}

// Authenticate implements flow.API.
func (f *FakeAPI) Authenticate(ctx context.Context, creds model.Credentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Authenticate"]++
	if f.AuthErr != nil {
		return "", f.AuthErr
	}
	if pw, ok := f.users[creds.Username]; !ok || pw != creds.Password {
		return "", &api.StatusError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return TokenFor(creds.Username), nil
}

// ListTodos implements flow.API.
func (f *FakeAPI) ListTodos(ctx context.Context) ([]model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListTodos"); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]model.Todo, len(f.todos))
	copy(out, f.todos)
	return out, nil
}

// GetTodo implements flow.API.
func (f *FakeAPI) GetTodo(ctx context.Context, id string) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetTodo"); err != nil {
		return model.Todo{}, err
	}
	if f.GetErr != nil {
		return model.Todo{}, f.GetErr
	}
	i := f.find(id)
	if i < 0 {
		return model.Todo{}, notFound(id)
	}
	return f.todos[i], nil
}

// CreateTodo implements flow.API.
func (f *FakeAPI) CreateTodo(ctx context.Context, in model.TodoInput) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateTodo"); err != nil {
		return model.Todo{}, err
	}
	if f.CreateErr != nil {
		return model.Todo{}, f.CreateErr
	}
	return f.addLocked(in.Title, in.Description), nil
}

// UpdateTodo implements flow.API.
func (f *FakeAPI) UpdateTodo(ctx context.Context, id string, in model.TodoInput) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateTodo"); err != nil {
		return model.Todo{}, err
	}
	if f.UpdateErr != nil {
		return model.Todo{}, f.UpdateErr
	}
	i := f.find(id)
	if i < 0 {
		return model.Todo{}, notFound(id)
	}
	f.todos[i].Title = in.Title
	f.todos[i].Description = in.Description
	f.todos[i].UpdatedAt = f.todos[i].UpdatedAt.Add(time.Hour)
	return f.todos[i], nil
}

// DeleteTodo implements flow.API.
func (f *FakeAPI) DeleteTodo(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteTodo"); err != nil {
		return err
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	i := f.find(id)
	if i < 0 {
		return notFound(id)
	}
	f.todos = append(f.todos[:i], f.todos[i+1:]...)
	return nil
}
