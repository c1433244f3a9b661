package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys.login
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Next, k.Prev):
		// two fields: next and previous are the same move
		return m, m.focusLogin(m.loginFocus + 1)
	case key.Matches(msg, k.Submit):
		return m.submitLogin()
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// focusLogin moves focus to field i (mod 2).
func (m *Model) focusLogin(i int) tea.Cmd {
	m.loginFocus = i % 2
	if m.loginFocus == 0 {
		m.password.Blur()
		return m.username.Focus()
	}
	m.username.Blur()
	return m.password.Focus()
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.signingIn {
		return m, nil
	}
	creds, err := m.login.Prepare(m.username.Value(), m.password.Value())
	if err != nil {
		m.fail("Sign in", err)
		return m, nil
	}
	m.setStatus("")
	m.signingIn = true
	ctx, l := m.ctx, m.login
	return m, m.call(func() tea.Msg {
		token, err := l.Request(ctx, creds)
		return loginMsg{token: token, err: err}
	})
}

func (m Model) onLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	if err := m.login.ApplyToken(msg.token, msg.err); err != nil {
		m.fail("Sign in failed", err)
		return m, nil
	}
	m.password.SetValue("")
	m.username.Blur()
	m.password.Blur()
	m.setStatus("Signed in as " + strings.TrimSpace(m.username.Value()))
	m.table.SetCursor(0)
	return m, m.fetchList()
}

func (m Model) viewLogin() string {
	field := func(label string, in string, focused bool) string {
		l := labelStyle.Render(label)
		if focused {
			l = accentStyle.Render(label)
		}
		return l + "\n" + in
	}

	lines := []string{
		titleStyle.Render("Sign in"),
		"",
		field("Username", m.username.View(), m.loginFocus == 0),
		"",
		field("Password", m.password.View(), m.loginFocus == 1),
	}
	if m.signingIn {
		lines = append(lines, "", m.spinner.View()+" signing in…")
	} else if st := m.statusLine(); st != "" {
		lines = append(lines, "", st)
	}

	box := lipgloss.NewStyle().
		Width(min(48, max(m.width-4, 20))).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modalBorder).
		Render(strings.Join(lines, "\n"))

	helpView := mutedStyle.Render(m.help.View(m.keys.login))
	page := lipgloss.JoinVertical(lipgloss.Center, box, "", helpView)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, page)
}
