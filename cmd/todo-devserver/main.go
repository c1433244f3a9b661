// Command todo-devserver runs a local copy of the todo API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/devhell/todo/internal/devserver"
	todolog "github.com/devhell/todo/internal/log"
)

type user struct{ name, password string }

func main() {
	var users []user
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	storeKind := flag.String("store", "memory", "todo store: memory or sqlite")
	dbPath := flag.String("db", "todo-dev.db", "sqlite file for -store sqlite")
	secret := flag.String("secret", "", "HMAC secret for tokens (default: random per run)")
	debug := flag.Bool("debug", false, "log at debug level")
	flag.Func("user", "add a user as name:password (repeatable)", func(v string) error {
		name, pw, ok := strings.Cut(v, ":")
		if !ok || name == "" || pw == "" {
			return errors.New("want name:password")
		}
		users = append(users, user{name, pw})
		return nil
	})
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger, closeLog, err := todolog.New(todolog.Options{Console: os.Stderr, Level: level})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(logger, *addr, *storeKind, *dbPath, *secret, users); err != nil {
		logger.Error("devserver stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, storeKind, dbPath, secret string, users []user) error {
	var store devserver.Store
	switch storeKind {
	case "memory":
		store = devserver.NewMemoryStore()
	case "sqlite":
		s, err := devserver.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	default:
		return fmt.Errorf("unknown store %q", storeKind)
	}

	opts := []devserver.Option{devserver.WithLogger(logger)}
	if secret != "" {
		opts = append(opts, devserver.WithSecret([]byte(secret)))
	} else {
		opts = append(opts, devserver.WithRandomSecret())
	}
	srv := devserver.New(store, opts...)

	if len(users) == 0 {
		users = []user{{"demo", "demo"}}
		logger.Warn("no -user given, using demo:demo")
	}
	for _, u := range users {
		if err := srv.AddUser(u.name, u.password); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "store", storeKind)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return hs.Shutdown(shutdownCtx)
}
