// Package tui is the interactive terminal client: a login screen and a
// home screen with the todo grid, the editor modal and the delete
// confirmation.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devhell/todo/internal/api"
	"github.com/devhell/todo/internal/flow"
	"github.com/devhell/todo/internal/model"
)

// Session is the token holder the UI needs. *session.Session implements it.
type Session interface {
	flow.Tokens
	LoggedIn() bool
}

// Deps wires the UI to the outside world.
type Deps struct {
	API     flow.API
	Session Session
	Logger  *slog.Logger
	// Clipboard copies text; nil uses the system clipboard.
	Clipboard func(string) error
	Theme     string
}

type editorFocus int

const (
	focusTitle editorFocus = iota
	focusDescription
)

type pendingDelete struct {
	id    string
	label string
}

// Model is the root Bubble Tea model. It shows exactly one of the login
// and home views, as the navigator says.
type Model struct {
	ctx  context.Context
	deps Deps
	log  *slog.Logger

	nav   *flow.Nav
	login *flow.Login
	home  *flow.Home

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	pending int

	// gen counts sign-outs; home results from an earlier gen are stale.
	gen       int
	signingIn bool

	width  int
	height int

	status    string
	statusErr bool

	// login view
	username   textinput.Model
	password   textinput.Model
	loginFocus int

	// home view
	table      table.Model
	title      textinput.Model
	desc       textarea.Model
	focus      editorFocus
	confirming *pendingDelete
}

// New builds the root model. It starts on home when a token is stored.
func New(ctx context.Context, deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	applyTheme(deps.Theme)

	start := model.ViewLogin
	if deps.Session.LoggedIn() {
		start = model.ViewHome
	}
	nav := flow.NewNav(start)

	m := Model{
		ctx:    ctx,
		deps:   deps,
		log:    deps.Logger,
		nav:    nav,
		login:  flow.NewLogin(deps.API, deps.Session, nav, deps.Logger),
		home:   flow.NewHome(deps.API, deps.Session, nav, deps.Logger),
		keys:   defaultKeys(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))

	m.username = textinput.New()
	m.username.Prompt = ""
	m.username.Placeholder = "username"
	m.username.CharLimit = 128
	m.password = textinput.New()
	m.password.Prompt = ""
	m.password.Placeholder = "password"
	m.password.EchoMode = textinput.EchoPassword
	m.password.EchoCharacter = '•'
	m.password.CharLimit = 128
	m.username.Focus()

	m.table = table.New(
		table.WithColumns(columns(m.width)),
		table.WithFocused(true),
		table.WithKeyMap(m.keys.home.KeyMap),
		table.WithStyles(tableStyles()),
		table.WithHeight(m.tableHeight()),
	)

	m.title = textinput.New()
	m.title.Prompt = ""
	m.title.Placeholder = "Title"
	m.title.CharLimit = 200
	m.desc = textarea.New()
	m.desc.Placeholder = "Description"
	m.desc.ShowLineNumbers = false
	m.desc.CharLimit = 2000
	m.desc.SetHeight(5)

	if start == model.ViewHome {
		m.pending = 1 // the list fetch issued by Init
	}
	return m
}

// Run starts the program on the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// CurrentView reports which screen is showing.
func (m Model) CurrentView() model.View { return m.nav.View() }

func (m Model) Init() tea.Cmd {
	if m.nav.View() == model.ViewHome {
		return tea.Batch(m.fetchCmd(), m.spinner.Tick)
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginMsg:
		m.done()
		m.signingIn = false
		return m.onLogin(msg)
	case listMsg:
		if m.stale(msg.gen, "list") {
			return m, nil
		}
		m.done()
		if err := m.home.ApplyList(msg.items, msg.err); err != nil {
			m.fail("Could not load todos", err)
		}
		m.syncTable()
		return m, nil
	case itemMsg:
		if m.stale(msg.gen, "item") {
			return m, nil
		}
		m.done()
		return m.onItem(msg)
	case submitMsg:
		if m.stale(msg.gen, "submit") {
			return m, nil
		}
		m.done()
		return m.onSubmit(msg)
	case deleteMsg:
		if m.stale(msg.gen, "delete") {
			return m, nil
		}
		m.done()
		if err := m.home.ApplyRemove(msg.id, msg.err); err != nil {
			m.fail("Delete failed", err)
			return m, nil
		}
		m.setStatus("Deleted")
		return m, m.fetchList()
	case copiedMsg:
		if msg.err != nil {
			m.fail("Copy failed", msg.err)
		} else {
			m.setStatus("Copied " + msg.id)
		}
		return m, nil

	case tea.KeyMsg:
		if m.nav.View() == model.ViewLogin {
			return m.updateLogin(msg)
		}
		switch {
		case m.confirming != nil:
			return m.updateConfirm(msg)
		case m.home.ModalOpen():
			return m.updateEditor(msg)
		default:
			return m.updateHome(msg)
		}
	}

	return m.forward(msg)
}

// forward hands other messages (cursor blinks and the like) to the
// focused widgets.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.nav.View() == model.ViewLogin {
		m.username, cmd = m.username.Update(msg)
		cmds = append(cmds, cmd)
		m.password, cmd = m.password.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	if m.home.ModalOpen() {
		m.title, cmd = m.title.Update(msg)
		cmds = append(cmds, cmd)
		m.desc, cmd = m.desc.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var body string
	if m.nav.View() == model.ViewLogin {
		body = m.viewLogin()
	} else {
		body = m.viewHome()
	}
	return body
}

// call runs fn off the update loop and starts the spinner.
func (m *Model) call(fn tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(fn, m.spinner.Tick)
	}
	return fn
}

// stale reports whether a result was issued before the last sign-out.
// Such calls were already dropped from pending.
func (m Model) stale(gen int, what string) bool {
	if gen == m.gen {
		return false
	}
	m.log.Debug("stale result dropped", "call", what, "gen", gen)
	return true
}

// resetSession forgets every home call in flight.
func (m *Model) resetSession() {
	m.gen++
	m.pending = 0
	m.confirming = nil
}

func (m *Model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m *Model) fetchList() tea.Cmd {
	return m.call(m.fetchCmd())
}

func (m Model) fetchCmd() tea.Cmd {
	ctx, h, gen := m.ctx, m.home, m.gen
	return func() tea.Msg {
		items, err := h.Fetch(ctx)
		return listMsg{gen: gen, items: items, err: err}
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

// fail shows a one-line error. The flow has already logged err.
func (m *Model) fail(what string, err error) {
	msg := what + ": " + errText(err)
	if errors.Is(err, api.ErrUnauthorized) && m.nav.View() == model.ViewHome {
		msg += " (press L to sign in again)"
	}
	m.status, m.statusErr = msg, true
}

func errText(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	s := err.Error()
	if i := strings.LastIndex(s, ": "); i >= 0 && i+2 < len(s) {
		return s[i+2:]
	}
	return s
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func (m Model) busy() string {
	if m.pending == 0 {
		return ""
	}
	return m.spinner.View()
}
