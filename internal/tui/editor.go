package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/devhell/todo/internal/model"
)

// openEditor loads the flow draft into the inputs and focuses the title.
func (m *Model) openEditor() tea.Cmd {
	d := m.home.Draft()
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.desc.SetValue(d.Description)
	m.setStatus("")
	return m.focusEditor(focusTitle)
}

func (m *Model) focusEditor(f editorFocus) tea.Cmd {
	m.focus = f
	if f == focusTitle {
		m.desc.Blur()
		return m.title.Focus()
	}
	m.title.Blur()
	return m.desc.Focus()
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys.editor
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		m.home.Close()
		m.title.Blur()
		m.desc.Blur()
		return m, nil
	case key.Matches(msg, k.Next):
		return m, m.focusEditor(1 - m.focus)
	case key.Matches(msg, k.Submit):
		return m.submitEditor()
	case m.focus == focusTitle && msg.Type == tea.KeyEnter:
		return m, m.focusEditor(focusDescription)
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	m.home.SetDraft(m.title.Value(), m.desc.Value())
	return m, cmd
}

func (m Model) submitEditor() (tea.Model, tea.Cmd) {
	m.home.SetDraft(m.title.Value(), m.desc.Value())
	d := m.home.Submission()
	ctx, h, gen := m.ctx, m.home, m.gen
	return m, m.call(func() tea.Msg {
		item, err := h.Send(ctx, d)
		return submitMsg{gen: gen, draft: d, item: item, err: err}
	})
}

func (m Model) onItem(msg itemMsg) (tea.Model, tea.Cmd) {
	if err := m.home.ApplyEdit(msg.id, msg.item, msg.err); err != nil {
		m.fail("Could not load todo", err)
		return m, nil
	}
	if d := m.home.Draft(); m.home.ModalOpen() && d.ID == msg.id {
		m.title.SetValue(d.Title)
		m.title.CursorEnd()
		m.desc.SetValue(d.Description)
	}
	return m, nil
}

func (m Model) onSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	if err := m.home.ApplySubmit(msg.draft, msg.item, msg.err); err != nil {
		m.fail("Save failed", err)
		return m, nil
	}
	if !m.home.ModalOpen() {
		m.title.Blur()
		m.desc.Blur()
	}
	if msg.draft.Mode == model.ModeEdit {
		m.setStatus("Updated")
	} else {
		m.setStatus("Created")
	}
	return m, m.fetchList()
}

func (m Model) viewEditor() string {
	d := m.home.Draft()
	action := "Create"
	if d.Mode == model.ModeEdit {
		action = "Update"
	}

	titleLabel, descLabel := labelStyle.Render("Title"), labelStyle.Render("Description")
	if m.focus == focusTitle {
		titleLabel = accentStyle.Render("Title")
	} else {
		descLabel = accentStyle.Render("Description")
	}

	body := titleLabel + "\n" + m.title.View() + "\n\n" +
		descLabel + "\n" + m.desc.View() + "\n\n" +
		mutedStyle.Render("ctrl+s "+action+" · esc Cancel")
	if m.statusErr {
		body += "\n" + m.statusLine()
	}
	return renderModalBox(m.width, action, body)
}
