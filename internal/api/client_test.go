package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/devhell/todo/internal/devserver"
	"github.com/devhell/todo/internal/model"
	"github.com/devhell/todo/internal/session"
)

func newDevServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := devserver.New(devserver.NewMemoryStore(), devserver.WithBcryptCost(bcrypt.MinCost))
	if err := srv.AddUser("alice", "secret"); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestClientRoundTrip(t *testing.T) {
	ts := newDevServer(t)
	sess := session.New(session.NewMemoryStore())
	c := NewClient(sess, WithBaseURL(ts.URL+"/"))
	ctx := context.Background()

	if _, err := c.ListTodos(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListTodos without token: err = %v, want ErrUnauthorized", err)
	}

	if _, err := c.Authenticate(ctx, model.Credentials{Username: "alice", Password: "wrong"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Authenticate wrong password: err = %v, want ErrUnauthorized", err)
	}
	token, err := c.Authenticate(ctx, model.Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := sess.Save(token); err != nil {
		t.Fatal(err)
	}

	created, err := c.CreateTodo(ctx, model.TodoInput{Title: "buy milk", Description: "2 litres"})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if created.ID == "" || created.Title != "buy milk" {
		t.Fatalf("created = %+v", created)
	}

	items, err := c.ListTodos(ctx)
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("items = %+v", items)
	}

	updated, err := c.UpdateTodo(ctx, created.ID, model.TodoInput{Title: "buy oat milk"})
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if updated.Title != "buy oat milk" || updated.Description != "" {
		t.Errorf("updated = %+v", updated)
	}

	got, err := c.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if got.Title != "buy oat milk" {
		t.Errorf("GetTodo title = %q", got.Title)
	}

	if err := c.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if err := c.DeleteTodo(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTodo: err = %v, want ErrNotFound", err)
	}

	if err := sess.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListTodos(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("ListTodos after logout: err = %v, want ErrUnauthorized", err)
	}
}

type capture struct {
	method string
	path   string
	header http.Header
}

func recordingServer(t *testing.T, status int, body string) (*httptest.Server, *capture) {
	t.Helper()
	got := &capture{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, got
}

func TestAuthenticatedCallsCarryHeaders(t *testing.T) {
	ts, got := recordingServer(t, http.StatusOK, `[]`)
	store := session.NewMemoryStore()
	sess := session.New(store)
	if err := sess.Save("abc.def.ghi"); err != nil {
		t.Fatal(err)
	}
	c := NewClient(sess, WithBaseURL(ts.URL))

	if _, err := c.ListTodos(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got.method != http.MethodGet || got.path != "/todo/todos/" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if a := got.header.Get("Authorization"); a != "Bearer abc.def.ghi" {
		t.Errorf("Authorization = %q", a)
	}
	if ct := got.header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	sess.Clear()
	c.ListTodos(context.Background())
	// The empty credential is still sent; the wire form drops the trailing space.
	if a := got.header.Get("Authorization"); a != "Bearer" {
		t.Errorf("Authorization after clear = %q, want %q", a, "Bearer")
	}
}

func TestAuthenticateSendsNoToken(t *testing.T) {
	ts, got := recordingServer(t, http.StatusOK, `{"token":"t1"}`)
	sess := session.New(session.NewMemoryStore())
	sess.Save("old")
	c := NewClient(sess, WithBaseURL(ts.URL))

	token, err := c.Authenticate(context.Background(), model.Credentials{Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if token != "t1" {
		t.Errorf("token = %q", token)
	}
	if got.method != http.MethodPost || got.path != "/todo/users/auth" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if a := got.header.Get("Authorization"); a != "" {
		t.Errorf("Authorization = %q, want none", a)
	}
}

func TestMutationStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"ok", http.StatusOK, `{"_id":"1","title":"x"}`, false},
		{"no content", http.StatusNoContent, ``, false},
		{"created", http.StatusCreated, `{"_id":"1","title":"x"}`, true},
		{"accepted", http.StatusAccepted, ``, true},
		{"bad request", http.StatusBadRequest, `{"message":"title is required"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := recordingServer(t, tt.status, tt.body)
			c := NewClient(session.New(session.NewMemoryStore()), WithBaseURL(ts.URL))

			_, err := c.CreateTodo(context.Background(), model.TodoInput{Title: "x"})
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateTodo err = %v, wantErr %v", err, tt.wantErr)
			}
			err = c.DeleteTodo(context.Background(), "1")
			if (err != nil) != tt.wantErr {
				t.Errorf("DeleteTodo err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	ts, _ := recordingServer(t, http.StatusBadRequest, `{"message":"title is required"}`)
	c := NewClient(nil, WithBaseURL(ts.URL))

	_, err := c.UpdateTodo(context.Background(), "42", model.TodoInput{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadRequest || se.Message != "title is required" {
		t.Errorf("StatusError = %+v", se)
	}
	if !strings.Contains(err.Error(), "PUT /todo/todos/42") {
		t.Errorf("err = %q, want method and path", err)
	}
}

func TestStatusErrorIs(t *testing.T) {
	tests := []struct {
		code   int
		target error
		want   bool
	}{
		{401, ErrUnauthorized, true},
		{403, ErrUnauthorized, true},
		{404, ErrNotFound, true},
		{404, ErrUnauthorized, false},
		{500, ErrNotFound, false},
	}
	for _, tt := range tests {
		err := newStatusError(tt.code, nil)
		if got := errors.Is(err, tt.target); got != tt.want {
			t.Errorf("Is(%d, %v) = %v, want %v", tt.code, tt.target, got, tt.want)
		}
	}
}

func TestTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(ts.Close)

	c := NewClient(nil, WithBaseURL(ts.URL), WithTimeout(50*time.Millisecond))
	if _, err := c.ListTodos(context.Background()); err == nil {
		t.Fatal("want timeout error")
	}
}

func TestStatusErrorMessageTruncatedOnRunes(t *testing.T) {
	body := []byte(`{"message":"` + strings.Repeat("é", 300) + `"}`)
	se := newStatusError(http.StatusInternalServerError, body)
	if !utf8.ValidString(se.Message) {
		t.Errorf("message is not valid UTF-8: %q", se.Message)
	}
	if !strings.HasSuffix(se.Message, "...") || utf8.RuneCountInString(se.Message) > 200 {
		t.Errorf("message not truncated: %d runes", utf8.RuneCountInString(se.Message))
	}
}

func TestTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := NewClient(nil, WithHTTPClient(shared), WithTimeout(50*time.Millisecond))
	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout = %v, want 1m", shared.Timeout)
	}
	if c.httpClient == shared || c.httpClient.Timeout != 50*time.Millisecond {
		t.Errorf("client timeout = %v", c.httpClient.Timeout)
	}

	// without a timeout the given client is used as is
	if c := NewClient(nil, WithHTTPClient(shared)); c.httpClient != shared {
		t.Error("WithHTTPClient not used")
	}
}
