package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/config"
	"github.com/devhell/todo/internal/exitcode"
	"github.com/devhell/todo/internal/flow"
	"github.com/devhell/todo/internal/model"
	"github.com/devhell/todo/internal/session"
	"github.com/devhell/todo/internal/testutil"
	"github.com/devhell/todo/internal/tui"
)

type harness struct {
	t      *testing.T
	r      *Runner
	api    *testutil.FakeAPI
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
	ui     *tui.Deps
	uiErr  error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{session.EnvToken, config.EnvAPIURL, config.EnvTimeout, config.EnvTheme} {
		t.Setenv(k, "")
	}

	fake := testutil.NewFakeAPI()
	fake.AddUser("alice", "secret")
	h := &harness{t: t, api: fake, dir: t.TempDir()}
	h.r = &Runner{
		Version: "test",
		NewAPI: func(cfg *config.Config, headers api.HeaderSource, log *slog.Logger) flow.API {
			fake.Headers = headers
			return fake
		},
		NewStore: func(cfg *config.Config) session.Store {
			return session.NewFileStore(cfg.CredentialsPath())
		},
		RunUI: func(ctx context.Context, deps tui.Deps) error {
			h.ui = &deps
			return h.uiErr
		},
	}
	return h
}

// run executes args with stdin as input and returns the exit code.
func (h *harness) run(stdin string, args ...string) int {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	h.r.Stdin = strings.NewReader(stdin)
	h.r.Stdout = &h.stdout
	h.r.Stderr = &h.stderr
	return h.r.Run(context.Background(), args, Options{ConfigDir: h.dir})
}

func (h *harness) mustRun(stdin string, args ...string) {
	h.t.Helper()
	if code := h.run(stdin, args...); code != exitcode.Success {
		h.t.Fatalf("%v: exit %d\nstdout: %s\nstderr: %s", args, code, h.stdout.String(), h.stderr.String())
	}
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("", "login", "-u", "alice", "-p", "secret")
}

func TestLoginWithFlags(t *testing.T) {
	h := newHarness(t)
	h.login()
	if !strings.Contains(h.stdout.String(), "logged in as alice") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
	if _, err := os.Stat(filepath.Join(h.dir, config.CredentialsFile)); err != nil {
		t.Errorf("credentials not written: %v", err)
	}
}

func TestLoginPrompts(t *testing.T) {
	h := newHarness(t)
	h.mustRun("alice\nsecret\n", "login")
	if !strings.Contains(h.stderr.String(), "Username: ") || !strings.Contains(h.stderr.String(), "Password: ") {
		t.Errorf("prompts missing: %q", h.stderr.String())
	}
	if h.api.Calls("Authenticate") != 1 {
		t.Error("Authenticate not called")
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  int
		calls int
	}{
		{"bad password", "", []string{"login", "-u", "alice", "-p", "nope"}, exitcode.AuthError, 1},
		{"empty password", "\n", []string{"login", "-u", "alice"}, exitcode.UserError, 0},
		{"stray argument", "", []string{"login", "alice"}, exitcode.UserError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if got := h.run(tt.stdin, tt.args...); got != tt.want {
				t.Errorf("exit = %d, want %d (stderr %q)", got, tt.want, h.stderr.String())
			}
			if got := h.api.Calls("Authenticate"); got != tt.calls {
				t.Errorf("Authenticate calls = %d, want %d", got, tt.calls)
			}
			if _, err := os.Stat(filepath.Join(h.dir, config.CredentialsFile)); err == nil {
				t.Error("credentials written after failed login")
			}
		})
	}
}

func TestListRequiresLogin(t *testing.T) {
	h := newHarness(t)
	if code := h.run("", "ls"); code != exitcode.AuthError {
		t.Fatalf("exit = %d, want %d", code, exitcode.AuthError)
	}
	if !strings.Contains(h.stderr.String(), "todo login") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
	if got := h.api.LastAuth(); got != "Bearer " {
		t.Errorf("Authorization = %q, want empty bearer", got)
	}
}

func TestList(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.mustRun("", "ls")
	if !strings.Contains(h.stdout.String(), "no todos") {
		t.Errorf("empty list output = %q", h.stdout.String())
	}

	first := h.api.AddTodo("Buy milk", "2 litres")
	h.api.AddTodo("Call mom", "")
	h.mustRun("", "ls")
	out := h.stdout.String()
	for _, want := range []string{"Total 2", "No.", "Buy milk", "2 litres", "Call mom", formatDate(first.CreatedAt)} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if h.api.LastAuth() != "Bearer "+testutil.TokenFor("alice") {
		t.Errorf("Authorization = %q", h.api.LastAuth())
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.mustRun("", "add", "Buy", "milk", "-d", "2 litres")
	todos := h.api.Todos()
	if len(todos) != 1 || todos[0].Title != "Buy milk" || todos[0].Description != "2 litres" {
		t.Fatalf("stored = %+v", todos)
	}
	if !strings.Contains(h.stdout.String(), `added "Buy milk"`) {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	if code := h.run("", "add"); code != exitcode.UserError {
		t.Errorf("add without title: exit %d", code)
	}
	if code := h.run("", "add", "-t", "x", "extra"); code != exitcode.UserError {
		t.Errorf("add with both title forms: exit %d", code)
	}
	if n := h.api.Calls("CreateTodo"); n != 1 {
		t.Errorf("CreateTodo calls = %d, want 1", n)
	}
}

func TestAddBackendFailure(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.CreateErr = errors.New("connection refused")
	if code := h.run("", "add", "x"); code != exitcode.BackendError {
		t.Errorf("exit = %d, want %d", code, exitcode.BackendError)
	}
	if !strings.Contains(h.stderr.String(), "connection refused") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestEditKeepsOmittedFields(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.AddTodo("Buy milk", "2 litres")

	h.mustRun("", "edit", "1", "-t", "Buy oat milk")
	got := h.api.Todos()[0]
	if got.Title != "Buy oat milk" || got.Description != "2 litres" {
		t.Errorf("stored = %+v", got)
	}

	h.mustRun("", "edit", "oat", "-d", "")
	got = h.api.Todos()[0]
	if got.Title != "Buy oat milk" || got.Description != "" {
		t.Errorf("stored = %+v", got)
	}
}

func TestEditUsage(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.AddTodo("Buy milk", "")

	for _, args := range [][]string{
		{"edit", "1"},
		{"edit", "-t", "x"},
		{"edit", "1", "-t", " "},
		{"edit", "7", "-t", "x"},
	} {
		if code := h.run("", args...); code != exitcode.UserError {
			t.Errorf("%v: exit %d, want %d", args, code, exitcode.UserError)
		}
	}
	if n := h.api.Calls("UpdateTodo"); n != 0 {
		t.Errorf("UpdateTodo calls = %d", n)
	}
}

func TestShow(t *testing.T) {
	h := newHarness(t)
	h.login()
	item := h.api.AddTodo("Buy milk", "2 litres\nfull fat")

	h.mustRun("", "show", "milk")
	out := h.stdout.String()
	for _, want := range []string{"#1 Buy milk", item.ID, "full fat"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if h.api.Calls("GetTodo") != 1 {
		t.Error("GetTodo not called")
	}
}

func TestRemove(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.AddTodo("Buy milk", "")
	h.api.AddTodo("Call mom", "")

	if code := h.run("n\n", "rm", "1"); code != exitcode.UserError {
		t.Errorf("declined: exit %d, want %d", code, exitcode.UserError)
	}
	if !strings.Contains(h.stderr.String(), "Want delete Buy milk [y/N]") {
		t.Errorf("prompt = %q", h.stderr.String())
	}
	if n := h.api.Calls("DeleteTodo"); n != 0 {
		t.Fatalf("DeleteTodo calls = %d after decline", n)
	}

	h.mustRun("y\n", "rm", "1")
	if todos := h.api.Todos(); len(todos) != 1 || todos[0].Title != "Call mom" {
		t.Errorf("stored = %+v", todos)
	}

	h.mustRun("", "rm", "-y", "mom")
	if len(h.api.Todos()) != 0 {
		t.Errorf("stored = %+v", h.api.Todos())
	}
}

func TestRemoveNotFound(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.AddTodo("Buy milk", "")
	h.api.DeleteErr = &api.StatusError{Code: 404, Message: "gone"}

	if code := h.run("", "rm", "-y", "1"); code != exitcode.UserError {
		t.Errorf("exit = %d, want %d", code, exitcode.UserError)
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mustRun("", "logout")
	if _, err := os.Stat(filepath.Join(h.dir, config.CredentialsFile)); !os.IsNotExist(err) {
		t.Errorf("credentials still present: %v", err)
	}
	if code := h.run("", "ls"); code != exitcode.AuthError {
		t.Errorf("ls after logout: exit %d", code)
	}
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	if code := h.run("", "status"); code != exitcode.AuthError {
		t.Errorf("exit = %d, want %d", code, exitcode.AuthError)
	}
	if !strings.Contains(h.stdout.String(), "not logged in") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	h.login()
	h.mustRun("", "status")
	out := h.stdout.String()
	for _, want := range []string{"logged in", "Source   file", h.dir} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWhoami(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.mustRun("", "whoami")
	if !strings.Contains(h.stdout.String(), "opaque") {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "42",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New(session.NewFileStore(filepath.Join(h.dir, config.CredentialsFile)))
	if err := sess.Save(token); err != nil {
		t.Fatal(err)
	}

	h.mustRun("", "whoami")
	out := h.stdout.String()
	for _, want := range []string{"Subject  42", "username alice", "Expires"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUIIsDefault(t *testing.T) {
	h := newHarness(t)
	h.mustRun("")
	if h.ui == nil {
		t.Fatal("UI not started")
	}
	if h.ui.Theme != "classic" || h.ui.Session.LoggedIn() {
		t.Errorf("deps = %+v", h.ui)
	}

	h.uiErr = errors.New("no tty")
	if code := h.run("", "ui"); code != exitcode.BackendError {
		t.Errorf("exit = %d, want %d", code, exitcode.BackendError)
	}
}

func TestDispatch(t *testing.T) {
	h := newHarness(t)

	if code := h.run("", "frobnicate"); code != exitcode.UserError {
		t.Errorf("unknown: exit %d", code)
	}
	if !strings.Contains(h.stderr.String(), "unknown subcommand: frobnicate") {
		t.Errorf("stderr = %q", h.stderr.String())
	}

	h.mustRun("", "help")
	if !strings.Contains(h.stdout.String(), "Usage:") {
		t.Errorf("help = %q", h.stdout.String())
	}

	h.mustRun("", "version")
	if strings.TrimSpace(h.stdout.String()) != "todo test" {
		t.Errorf("version = %q", h.stdout.String())
	}

	h.r.Stdin, h.r.Stdout, h.r.Stderr = strings.NewReader(""), &h.stdout, &h.stderr
	if code := h.r.Run(context.Background(), []string{"ls"}, Options{ConfigDir: h.dir, Theme: "pink"}); code != exitcode.UserError {
		t.Errorf("bad theme: exit %d", code)
	}
}

func TestResolveRef(t *testing.T) {
	rows := model.Number([]model.Todo{
		{ID: "a1", Title: "Buy milk"},
		{ID: "b2", Title: "Call mom"},
		{ID: "c3", Title: "Buy bread"},
		{ID: "d4", Title: "Milk"},
		{ID: "e5", Title: "milk"},
		{ID: "f6", Title: "Taxes 2024"},
	})

	tests := []struct {
		ref    string
		wantID string
	}{
		{"2", "b2"},
		{"c3", "c3"},
		{"CALL MOM", "b2"},
		{"mom", "b2"},
		{"bred", "c3"},
		{"6", "f6"},
		{"taxes 2024", "f6"},
		{"2024", "f6"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveRef(rows, tt.ref)
			if err != nil {
				t.Fatalf("resolveRef(%q): %v", tt.ref, err)
			}
			if got.ID != tt.wantID {
				t.Errorf("resolveRef(%q) = %s, want %s", tt.ref, got.ID, tt.wantID)
			}
		})
	}

	for _, ref := range []string{"", "-1", "9", "milk", "zzz"} {
		_, err := resolveRef(rows, ref)
		var ue *exitcode.UsageError
		if !errors.As(err, &ue) {
			t.Errorf("resolveRef(%q) err = %v, want usage error", ref, err)
		}
	}
}

func TestParseArgsInterspersed(t *testing.T) {
	fs := newFlagSet("t")
	d := fs.String("d", "", "")
	pos, err := parseArgs(fs, []string{"a", "-d", "x", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if *d != "x" || len(pos) != 2 || pos[0] != "a" || pos[1] != "b" {
		t.Errorf("pos = %v, d = %q", pos, *d)
	}
	if _, err := parseArgs(newFlagSet("t"), []string{"-z"}); exitcode.For(err) != exitcode.UserError {
		t.Errorf("unknown flag err = %v", err)
	}
}
