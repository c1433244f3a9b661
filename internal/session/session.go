// Package session holds the bearer token of the signed-in user and
// turns it into request headers.
//
// A Session is created once and handed to everything that issues
// authenticated calls. It never fails to produce headers: without a
// token the Authorization value carries an empty credential and the
// server decides.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	// ErrNoToken is returned by Info when nobody is signed in.
	ErrNoToken = errors.New("not logged in")

	// ErrEmptyToken is returned when saving a blank token.
	ErrEmptyToken = errors.New("empty token")

	// ErrNotJWT is returned by Claims for opaque tokens.
	ErrNotJWT = errors.New("token is not a JWT")
)

// Session wraps a token Store.
type Session struct {
	store Store
	now   func() time.Time
}

// New returns a Session over store.
func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Info returns the stored token record or ErrNoToken.
func (s *Session) Info() (*Info, error) {
	info, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if info == nil || info.Token == "" {
		return nil, ErrNoToken
	}
	return info, nil
}

// LoggedIn reports whether a token is stored.
func (s *Session) LoggedIn() bool {
	_, err := s.Info()
	return err == nil
}

// Token implements oauth2.TokenSource. A missing token yields a token
// with an empty AccessToken rather than an error.
func (s *Session) Token() (*oauth2.Token, error) {
	info, err := s.Info()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return &oauth2.Token{TokenType: "Bearer"}, nil
		}
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: info.Token, TokenType: "Bearer"}
	if info.ExpiresAt != nil {
		tok.Expiry = *info.ExpiresAt
	}
	return tok, nil
}

// Headers returns the headers every authenticated call carries:
// Content-Type: application/json and Authorization: Bearer <token>.
func (s *Session) Headers() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")

	tok, err := s.Token()
	if err != nil {
		tok = &oauth2.Token{TokenType: "Bearer"}
	}
	// SetAuthHeader only touches the request header.
	req := &http.Request{Header: h}
	tok.SetAuthHeader(req)
	return h
}

// Save persists token. A JWT exp claim, read without verification,
// is recorded for display only.
func (s *Session) Save(token string) error {
	token = stripBearer(token)
	if token == "" {
		return ErrEmptyToken
	}
	info := Info{Token: token, CreatedAt: s.now()}
	if exp := expiry(token); exp != nil {
		info.ExpiresAt = exp
	}
	return s.store.Save(info)
}

// Clear forgets the stored token.
func (s *Session) Clear() error {
	if err := s.store.Delete(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Claims decodes the payload of a JWT without verifying its signature.
func Claims(token string) (jwt.MapClaims, error) {
	token = stripBearer(token)
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	return claims, nil
}

func expiry(token string) *time.Time {
	claims, err := Claims(token)
	if err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
