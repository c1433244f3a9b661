package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devhell/todo/internal/model"
)

// Login exchanges credentials for a token.
type Login struct {
	api    API
	tokens Tokens
	nav    Navigator
	log    *slog.Logger
}

func NewLogin(api API, tokens Tokens, nav Navigator, log *slog.Logger) *Login {
	return &Login{api: api, tokens: tokens, nav: nav, log: log}
}

// Prepare checks the form locally. An empty field never reaches the network.
func (l *Login) Prepare(username, password string) (model.Credentials, error) {
	creds := model.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		l.log.Debug("login rejected locally", "error", err)
		return creds, err
	}
	return creds, nil
}

// Request performs the auth call.
func (l *Login) Request(ctx context.Context, creds model.Credentials) (string, error) {
	return l.api.Authenticate(ctx, creds)
}

// ApplyToken stores token and moves to home. On err, or an empty token,
// nothing is stored and the view is left alone.
func (l *Login) ApplyToken(token string, err error) error {
	if err == nil && token == "" {
		err = errors.New("auth response carried no token")
	}
	if err != nil {
		l.log.Error("login failed", "error", err)
		return err
	}
	if err := l.tokens.Save(token); err != nil {
		l.log.Error("store token", "error", err)
		return fmt.Errorf("store token: %w", err)
	}
	l.log.Info("logged in")
	l.nav.Navigate(model.ViewHome)
	return nil
}

// Authenticate runs the whole login: validate, call, store, navigate.
func (l *Login) Authenticate(ctx context.Context, username, password string) error {
	creds, err := l.Prepare(username, password)
	if err != nil {
		return err
	}
	token, err := l.Request(ctx, creds)
	return l.ApplyToken(token, err)
}
