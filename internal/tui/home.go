package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devhell/todo/internal/flow"
	"github.com/devhell/todo/internal/model"
)

const dateLayout = "2006-01-02 15:04"

// columns sizes the grid for a screen w cells wide. Title and
// description share what the fixed columns leave.
func columns(w int) []table.Column {
	const no, date = 4, len(dateLayout)
	// frame border + padding, and the cell padding of five columns
	rest := max(w-4-5*2-no-2*date, 20)
	title := rest * 2 / 5
	return []table.Column{
		{Title: "No.", Width: no},
		{Title: "Title", Width: title},
		{Title: "Description", Width: rest - title},
		{Title: "Created Date", Width: date},
		{Title: "Updated Date", Width: date},
	}
}

func (m Model) tableHeight() int {
	// header line, status line, help line, frame and table header
	return max(m.height-8, 3)
}

func (m *Model) resize() {
	m.table.SetColumns(columns(m.width))
	m.table.SetHeight(m.tableHeight())
	w := renderWidth(m.width)
	m.title.Width = w
	m.desc.SetWidth(w)
}

// renderWidth is the inner width of the editor modal.
func renderWidth(screen int) int {
	return max(min(max(screen-12, 30), 72)-6, 10)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateLayout)
}

// syncTable copies the flow rows into the grid.
func (m *Model) syncTable() {
	rows := m.home.Rows()
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{
			strconv.Itoa(r.No),
			oneLine(r.Title),
			oneLine(r.Description),
			formatDate(r.CreatedAt),
			formatDate(r.UpdatedAt),
		}
	}
	m.table.SetRows(out)
	if c := m.table.Cursor(); c >= len(out) {
		m.table.SetCursor(max(len(out)-1, 0))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// selected returns the row under the cursor.
func (m Model) selected() (model.Row, bool) {
	rows := m.home.Rows()
	c := m.table.Cursor()
	if c < 0 || c >= len(rows) {
		return model.Row{}, false
	}
	return rows[c], true
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys.home
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, k.Refresh):
		return m, m.fetchList()
	case key.Matches(msg, k.Create):
		m.home.OpenCreate()
		return m, m.openEditor()
	case key.Matches(msg, k.Edit):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.home.BeginEdit(row.ID)
		cmd := m.openEditor()
		ctx, h, id, gen := m.ctx, m.home, row.ID, m.gen
		return m, tea.Batch(cmd, m.call(func() tea.Msg {
			item, err := h.FetchItem(ctx, id)
			return itemMsg{gen: gen, id: id, item: item, err: err}
		}))
	case key.Matches(msg, k.Delete):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirming = &pendingDelete{id: row.ID, label: row.Title}
		return m, nil
	case key.Matches(msg, k.Copy):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		copyFn, id := m.deps.Clipboard, row.ID
		return m, func() tea.Msg {
			return copiedMsg{id: id, err: copyFn(id)}
		}
	case key.Matches(msg, k.Logout):
		m.resetSession()
		if err := m.home.Logout(); err != nil {
			m.fail("Logout", err)
		} else {
			m.setStatus("Signed out")
		}
		m.syncTable()
		m.password.SetValue("")
		return m, m.focusLogin(0)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys.confirm
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, k.Yes):
		target := *m.confirming
		m.confirming = nil
		ctx, h, gen := m.ctx, m.home, m.gen
		return m, m.call(func() tea.Msg {
			return deleteMsg{gen: gen, id: target.id, err: h.Delete(ctx, target.id)}
		})
	case key.Matches(msg, k.No):
		m.log.Debug("delete declined", "id", m.confirming.id)
		m.confirming = nil
	}
	return m, nil
}

func (m Model) viewHome() string {
	header := titleStyle.Render("Todos") + " " + mutedStyle.Render(fmt.Sprintf("(%d)", len(m.home.Rows())))
	if s := m.busy(); s != "" {
		header += "  " + s
	}

	var body string
	if len(m.home.Rows()) == 0 && m.pending == 0 {
		body = mutedStyle.Render("No todos yet. Press c to create one.")
	} else {
		body = m.table.View()
	}

	var helpView string
	switch {
	case m.confirming != nil:
		helpView = m.help.View(m.keys.confirm)
	case m.home.ModalOpen():
		helpView = m.help.View(m.keys.editor)
	default:
		helpView = m.help.View(m.keys.home)
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		header,
		frame(body),
		m.statusLine(),
		helpView,
	)

	switch {
	case m.confirming != nil:
		fg := renderModalBox(m.width, "Delete", flow.ConfirmPrompt(m.confirming.label)+"?")
		return overlayCenter(dimBackground(main), fg, m.width, m.height)
	case m.home.ModalOpen():
		return overlayCenter(dimBackground(main), m.viewEditor(), m.width, m.height)
	}
	return main
}
