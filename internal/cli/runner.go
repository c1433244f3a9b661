package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/config"
	"github.com/devhell/todo/internal/exitcode"
	"github.com/devhell/todo/internal/flow"
	todolog "github.com/devhell/todo/internal/log"
	"github.com/devhell/todo/internal/model"
	"github.com/devhell/todo/internal/session"
	"github.com/devhell/todo/internal/tui"
	"github.com/devhell/todo/internal/ui"
)

// Options are the root flags. Zero values defer to env, config file and defaults.
type Options struct {
	APIURL    string
	ConfigDir string
	Timeout   time.Duration
	Theme     string
	Debug     bool
}

// Runner dispatches subcommands. The factory fields are the seams tests
// replace; NewRunner fills them with the real implementations.
type Runner struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Version string

	NewAPI   func(cfg *config.Config, headers api.HeaderSource, log *slog.Logger) flow.API
	NewStore func(cfg *config.Config) session.Store
	RunUI    func(ctx context.Context, deps tui.Deps) error
}

// NewRunner returns a Runner on the process stdio.
func NewRunner(version string) *Runner {
	return &Runner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Version: version,
		NewAPI: func(cfg *config.Config, headers api.HeaderSource, log *slog.Logger) flow.API {
			return api.NewClient(headers,
				api.WithBaseURL(cfg.APIURL),
				api.WithTimeout(cfg.Timeout),
				api.WithLogger(log),
			)
		},
		NewStore: func(cfg *config.Config) session.Store {
			return session.NewFileStore(cfg.CredentialsPath())
		},
		RunUI: tui.Run,
	}
}

// env is what every subcommand works with.
type env struct {
	*Runner
	cfg   *config.Config
	log   *slog.Logger
	sess  *session.Session
	api   flow.API
	nav   *flow.Nav
	login *flow.Login
	home  *flow.Home
	in    *lineReader
}

// Run dispatches args and returns an exit code.
func (r *Runner) Run(ctx context.Context, args []string, opt Options) int {
	cmd := "ui"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp(r.Stdout)
		return exitcode.Success
	case "version":
		fmt.Fprintln(r.Stdout, "todo", r.Version)
		return exitcode.Success
	}

	run, ok := subcommands[cmd]
	if !ok {
		ui.Fail(r.Stderr, "unknown subcommand: "+cmd)
		ui.Hint(r.Stderr, "Run `todo help` for usage.")
		return exitcode.UserError
	}

	e, cleanup, err := r.setup(opt)
	if err != nil {
		ui.Fail(r.Stderr, err.Error())
		return exitcode.UserError
	}
	defer cleanup()

	err = run(ctx, e, args)
	code := exitcode.For(err)
	if err != nil {
		ui.Fail(r.Stderr, err.Error())
		switch {
		case code == exitcode.AuthError:
			ui.Hint(r.Stderr, "Hint: run `todo login` to sign in")
		case errors.As(err, new(*exitcode.UsageError)):
			ui.Hint(r.Stderr, "Run `todo help` for usage.")
		}
	}
	return code
}

func (r *Runner) setup(opt Options) (*env, func(), error) {
	cfg, err := config.Load(opt.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	cfg.Override(opt.APIURL, opt.Timeout, opt.Theme)
	cfg.Debug = opt.Debug
	if !ui.ValidTheme(cfg.Theme) {
		return nil, nil, fmt.Errorf("unknown theme %q (want %s)", cfg.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	ui.SetTheme(cfg.Theme)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger, closeLog, err := todolog.New(todolog.Options{Path: cfg.LogPath(), Level: level})
	if err != nil {
		// Diagnostics are optional; carry on without them.
		fmt.Fprintln(r.Stderr, ui.Cw(r.Stderr, ui.Current().Muted, "log disabled: "+err.Error()))
		logger, closeLog = todolog.Discard(), func() error { return nil }
	}

	sess := session.New(r.NewStore(cfg))
	client := r.NewAPI(cfg, sess, logger)
	start := model.ViewLogin
	if sess.LoggedIn() {
		start = model.ViewHome
	}
	nav := flow.NewNav(start)

	e := &env{
		Runner: r,
		cfg:    cfg,
		log:    logger,
		sess:   sess,
		api:    client,
		nav:    nav,
		login:  flow.NewLogin(client, sess, nav, logger),
		home:   flow.NewHome(client, sess, nav, logger),
		in:     newLineReader(r.Stdin),
	}
	return e, func() { closeLog() }, nil
}

type subcommand func(ctx context.Context, e *env, args []string) error

var subcommands map[string]subcommand

func init() {
	subcommands = map[string]subcommand{
		"ui":     cmdUI,
		"login":  cmdLogin,
		"logout": cmdLogout,
		"status": cmdStatus,
		"whoami": cmdWhoami,
		"ls":     cmdList,
		"show":   cmdShow,
		"add":    cmdAdd,
		"edit":   cmdEdit,
		"rm":     cmdRemove,
	}
}

func cmdUI(ctx context.Context, e *env, args []string) error {
	if len(args) > 0 {
		return exitcode.Usage("usage: todo ui")
	}
	return e.RunUI(ctx, tui.Deps{
		API:     e.api,
		Session: e.sess,
		Logger:  e.log,
		Theme:   e.cfg.Theme,
	})
}

// newFlagSet returns a quiet flag set; parse errors become usage errors.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses flags wherever they appear among args and returns
// the positional arguments in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, exitcode.Usage(fs.Name() + ": " + err.Error())
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

// setFlags reports which flags were given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (r *Runner) PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a client for the todo API

Usage:
  todo [global flags] <subcommand> [args]

Subcommands:
  ui                        Open the interactive UI (default)
  login [-u user] [-p pass] Sign in; prompts for what is missing
  logout                    Forget the stored token
  status                    Show where the token comes from and when it expires
  whoami                    Show the claims of the stored token
  ls                        List todos
  show <ref>                Show one todo
  add -t <title> [-d desc]  Create a todo (or: add <title...>)
  edit <ref> [-t title] [-d desc]
                            Change a todo; omitted fields are kept
  rm [-y] <ref>             Delete a todo after confirmation
  help, version

A <ref> is a number from ls, an id, or part of a title.

Global flags:
  -api <url>       API base URL (env TODO_API_URL)
  -config <dir>    Config directory (env TODO_CONFIG_DIR)
  -timeout <dur>   Per-request timeout, e.g. 10s (env TODO_TIMEOUT)
  -theme <name>    classic, neon or mono (env TODO_THEME)
  -debug           Debug logging to the log file

Examples:
  todo login -u alice
  todo add "Buy milk" -d "2 litres"
  todo edit 2 -t "Buy oat milk"
  todo rm -y 3
`)
}
