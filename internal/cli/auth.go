package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devhell/todo/internal/exitcode"
	"github.com/devhell/todo/internal/session"
	"github.com/devhell/todo/internal/ui"
)

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("login")
	user := fs.String("u", "", "")
	pass := fs.String("p", "", "")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return exitcode.Usage("usage: todo login [-u user] [-p pass]")
	}

	if *user == "" {
		if *user, err = e.ask("Username: "); err != nil {
			return err
		}
	}
	if *pass == "" {
		fmt.Fprint(e.Stderr, "Password: ")
		if *pass, err = e.in.Password(e.Stderr); err != nil {
			return err
		}
	}

	if err := e.login.Authenticate(ctx, *user, *pass); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	ui.OK(e.Stdout, "logged in as "+*user)
	return nil
}

func cmdLogout(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return exitcode.Usage("usage: todo logout")
	}
	if err := e.home.Logout(); err != nil {
		return err
	}
	ui.OK(e.Stdout, "logged out")
	if info, err := e.sess.Info(); err == nil && info.Source == session.SourceEnv {
		ui.Hint(e.Stdout, "Note: "+session.EnvToken+" is still set and keeps you signed in.")
	}
	return nil
}

func cmdStatus(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return exitcode.Usage("usage: todo status")
	}
	t := ui.Current()
	lines := []string{
		ui.Cw(e.Stdout, t.Title, "Session"),
		"",
		"API      " + e.cfg.APIURL,
		"Config   " + e.cfg.Dir,
	}

	info, err := e.sess.Info()
	if errors.Is(err, session.ErrNoToken) {
		lines = append(lines, "Status   "+ui.Cw(e.Stdout, t.Warn, "not logged in"))
		ui.Panel(e.Stdout, lines)
		return err
	}
	if err != nil {
		return err
	}

	lines = append(lines,
		"Status   "+ui.Cw(e.Stdout, t.Success, "logged in"),
		"Source   "+info.Source,
	)
	if !info.CreatedAt.IsZero() {
		lines = append(lines, "Since    "+info.CreatedAt.Local().Format(time.DateTime))
	}
	if info.ExpiresAt != nil {
		lines = append(lines, "Expires  "+expiryText(*info.ExpiresAt, time.Now()))
	}
	ui.Panel(e.Stdout, lines)
	return nil
}

func cmdWhoami(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return exitcode.Usage("usage: todo whoami")
	}
	info, err := e.sess.Info()
	if err != nil {
		return err
	}
	claims, err := session.Claims(info.Token)
	if errors.Is(err, session.ErrNotJWT) {
		ui.Hint(e.Stdout, "The stored token is opaque; nothing to decode.")
		return nil
	}
	if err != nil {
		return err
	}

	var lines []string
	if sub, _ := claims.GetSubject(); sub != "" {
		lines = append(lines, "Subject  "+sub)
	}
	for _, k := range []string{"username", "email", "name"} {
		if v, ok := claims[k].(string); ok && v != "" {
			lines = append(lines, fmt.Sprintf("%-8s %s", k, v))
		}
	}
	if iat, _ := claims.GetIssuedAt(); iat != nil {
		lines = append(lines, "Issued   "+iat.Local().Format(time.DateTime))
	}
	if exp, _ := claims.GetExpirationTime(); exp != nil {
		lines = append(lines, "Expires  "+expiryText(exp.Time, time.Now()))
	}
	if len(lines) == 0 {
		lines = append(lines, "(no known claims)")
	}
	ui.Panel(e.Stdout, lines)
	return nil
}

// expiryText formats t with how far it is from now.
func expiryText(t, now time.Time) string {
	s := t.Local().Format(time.DateTime)
	d := t.Sub(now).Round(time.Minute)
	if d <= 0 {
		return s + " (expired)"
	}
	return s + " (in " + d.String() + ")"
}
