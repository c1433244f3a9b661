package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devhell/todo/internal/session"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestHeaders_WithToken(t *testing.T) {
	s := session.New(session.NewMemoryStore())
	if err := s.Save("abc123"); err != nil {
		t.Fatal(err)
	}

	h := s.Headers()
	if got := h.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected json content type, got %q", got)
	}
	if got := h.Get("Authorization"); got != "Bearer abc123" {
		t.Errorf("expected bearer header, got %q", got)
	}
}

func TestHeaders_WithoutToken(t *testing.T) {
	s := session.New(session.NewMemoryStore())

	h := s.Headers()
	if got := h.Get("Authorization"); got != "Bearer " {
		t.Errorf("expected empty bearer credential, got %q", got)
	}
	if got := h.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected json content type, got %q", got)
	}
}

func TestClear(t *testing.T) {
	s := session.New(session.NewMemoryStore())
	if err := s.Save("abc123"); err != nil {
		t.Fatal(err)
	}
	if !s.LoggedIn() {
		t.Fatal("expected logged in after save")
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if s.LoggedIn() {
		t.Error("expected logged out after clear")
	}
	if _, err := s.Info(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
	if got := s.Headers().Get("Authorization"); got != "Bearer " {
		t.Errorf("expected no credential after clear, got %q", got)
	}
}

func TestSave_Empty(t *testing.T) {
	s := session.New(session.NewMemoryStore())
	if err := s.Save("   "); !errors.Is(err, session.ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
	for _, tok := range []string{"Bearer ", "Bearer", "  bearer  "} {
		if err := s.Save(tok); !errors.Is(err, session.ErrEmptyToken) {
			t.Errorf("Save(%q): expected ErrEmptyToken for bare prefix, got %v", tok, err)
		}
	}
	if s.LoggedIn() {
		t.Error("bare prefix left a token behind")
	}
}

func TestSave_StripsBearer(t *testing.T) {
	s := session.New(session.NewMemoryStore())
	if err := s.Save("Bearer xyz"); err != nil {
		t.Fatal(err)
	}
	info, err := s.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Token != "xyz" {
		t.Errorf("expected stripped token, got %q", info.Token)
	}
}

func TestSave_RecordsJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.RegisteredClaims{Subject: "bob", ExpiresAt: jwt.NewNumericDate(exp)})

	s := session.New(session.NewMemoryStore())
	if err := s.Save(tok); err != nil {
		t.Fatal(err)
	}
	info, err := s.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
	}

	ot, err := s.Token()
	if err != nil {
		t.Fatal(err)
	}
	if !ot.Expiry.Equal(exp) {
		t.Errorf("expected oauth2 token expiry %v, got %v", exp, ot.Expiry)
	}
}

func TestClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"sub": "bob", "role": "user"})

	claims, err := session.Claims(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims["sub"] != "bob" || claims["role"] != "user" {
		t.Errorf("unexpected claims %v", claims)
	}

	if _, err := session.Claims("opaque-token"); !errors.Is(err, session.ErrNotJWT) {
		t.Errorf("expected ErrNotJWT, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	t.Setenv(session.EnvToken, "")
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := session.New(session.NewFileStore(path))

	if s.LoggedIn() {
		t.Fatal("expected no token in empty store")
	}
	if err := s.Save("file-token"); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", fi.Mode().Perm())
	}

	// A fresh store over the same file sees the token.
	info, err := session.New(session.NewFileStore(path)).Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Token != "file-token" || info.Source != session.SourceFile {
		t.Errorf("unexpected info %+v", info)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected credentials file removed, got %v", err)
	}
}

func TestFileStore_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := session.New(session.NewFileStore(path))
	if err := s.Save("file-token"); err != nil {
		t.Fatal(err)
	}

	t.Setenv(session.EnvToken, "Bearer env-token")
	info, err := s.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Token != "env-token" || info.Source != session.SourceEnv {
		t.Errorf("expected env token, got %+v", info)
	}
	if got := s.Headers().Get("Authorization"); got != "Bearer env-token" {
		t.Errorf("unexpected header %q", got)
	}
}

func TestFileStore_EnvBarePrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := session.New(session.NewFileStore(path))

	t.Setenv(session.EnvToken, "Bearer")
	if s.LoggedIn() {
		t.Fatal("bare env prefix counted as a token")
	}
	if got := s.Headers().Get("Authorization"); got != "Bearer " {
		t.Errorf("unexpected header %q", got)
	}

	if err := s.Save("file-token"); err != nil {
		t.Fatal(err)
	}
	info, err := s.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.Token != "file-token" || info.Source != session.SourceFile {
		t.Errorf("expected file token, got %+v", info)
	}
}
