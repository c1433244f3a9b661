package model

import (
	"errors"
	"strings"
	"time"
)

// Todo is a todo entry as the remote API returns it.
// The server owns it; the client only ever holds a snapshot.
type Todo struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoInput is the body of create and update calls.
type TodoInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Row is a Todo annotated with its display sequence number.
type Row struct {
	No int
	Todo
}

// Number maps a list response to rows, No = 1 + index in response order.
func Number(items []Todo) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{No: i + 1, Todo: it}
	}
	return rows
}

// Credentials is the body of the auth call.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is what the auth call returns.
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrMissingCredentials is returned before any network call when a
// login form field is left empty.
var ErrMissingCredentials = errors.New("username and password are required")

// Validate mirrors the required-field hints of the login form.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
