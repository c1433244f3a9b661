package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devhell/todo/internal/model"
)

// Home owns the todo list and the editor modal.
type Home struct {
	api    API
	tokens Tokens
	nav    Navigator
	log    *slog.Logger

	rows      []model.Row
	draft     model.Draft
	modalOpen bool
}

func NewHome(api API, tokens Tokens, nav Navigator, log *slog.Logger) *Home {
	return &Home{api: api, tokens: tokens, nav: nav, log: log}
}

// Rows returns the last fetched list.
func (h *Home) Rows() []model.Row { return h.rows }

func (h *Home) Draft() model.Draft { return h.draft }

func (h *Home) ModalOpen() bool { return h.modalOpen }

// SetDraft records what the user typed. Mode and target are unchanged.
func (h *Home) SetDraft(title, description string) {
	h.draft.Title = title
	h.draft.Description = description
}

// Fetch performs the list call.
func (h *Home) Fetch(ctx context.Context) ([]model.Todo, error) {
	return h.api.ListTodos(ctx)
}

// ApplyList replaces the list wholesale. On err the old list is kept.
func (h *Home) ApplyList(items []model.Todo, err error) error {
	if err != nil {
		h.log.Error("list todos", "error", err)
		return err
	}
	h.rows = model.Number(items)
	h.log.Debug("list refreshed", "count", len(h.rows))
	return nil
}

// List fetches and applies the list.
func (h *Home) List(ctx context.Context) error {
	items, err := h.Fetch(ctx)
	return h.ApplyList(items, err)
}

// OpenCreate opens the modal with an empty create draft.
func (h *Home) OpenCreate() {
	h.draft = model.Draft{Mode: model.ModeCreate}
	h.modalOpen = true
}

// BeginEdit opens the modal in edit mode for id. The fields stay empty
// until ApplyEdit fills them.
func (h *Home) BeginEdit(id string) {
	h.draft = model.Draft{Mode: model.ModeEdit, ID: id}
	h.modalOpen = true
}

// FetchItem performs the get-by-id call.
func (h *Home) FetchItem(ctx context.Context, id string) (model.Todo, error) {
	return h.api.GetTodo(ctx, id)
}

// ApplyEdit fills the draft from item. A response for a modal that has
// since closed or moved to another item is dropped.
func (h *Home) ApplyEdit(id string, item model.Todo, err error) error {
	if err != nil {
		h.log.Error("get todo", "id", id, "error", err)
		return err
	}
	if !h.modalOpen || h.draft.Mode != model.ModeEdit || h.draft.ID != id {
		h.log.Debug("stale item response dropped", "id", id)
		return nil
	}
	h.draft.Title = item.Title
	h.draft.Description = item.Description
	return nil
}

// OpenEdit opens the modal for id and loads its fields.
func (h *Home) OpenEdit(ctx context.Context, id string) error {
	h.BeginEdit(id)
	item, err := h.FetchItem(ctx, id)
	return h.ApplyEdit(id, item, err)
}

// Submission is the draft as it will be sent.
func (h *Home) Submission() model.Draft { return h.draft }

// Send creates or updates according to d.Mode.
func (h *Home) Send(ctx context.Context, d model.Draft) (model.Todo, error) {
	if d.Mode == model.ModeEdit {
		return h.api.UpdateTodo(ctx, d.ID, d.Input())
	}
	return h.api.CreateTodo(ctx, d.Input())
}

// ApplySubmit closes the modal and clears the draft after a successful
// send of d. On err the modal stays open with the draft intact. The
// caller refreshes the list on success.
func (h *Home) ApplySubmit(d model.Draft, item model.Todo, err error) error {
	if err != nil {
		h.log.Error("submit todo", "mode", d.Mode, "id", d.ID, "error", err)
		return err
	}
	h.log.Info("submitted todo", "mode", d.Mode, "id", item.ID)
	if h.modalOpen && h.draft.Mode == d.Mode && h.draft.ID == d.ID {
		h.Close()
	}
	return nil
}

// Submit sends the draft, applies the result and refreshes the list.
// A failed refresh is logged but does not undo the submit.
func (h *Home) Submit(ctx context.Context) (model.Todo, error) {
	d := h.Submission()
	item, err := h.Send(ctx, d)
	if err := h.ApplySubmit(d, item, err); err != nil {
		return model.Todo{}, err
	}
	h.List(ctx)
	return item, nil
}

// Close closes the modal and discards the draft.
func (h *Home) Close() {
	h.modalOpen = false
	h.draft = model.Draft{}
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// ConfirmPrompt is the question asked before deleting label.
func ConfirmPrompt(label string) string {
	return "Want delete " + label
}

// Delete performs the delete call.
func (h *Home) Delete(ctx context.Context, id string) error {
	return h.api.DeleteTodo(ctx, id)
}

// ApplyRemove logs the outcome of a delete. The caller refreshes the
// list on success.
func (h *Home) ApplyRemove(id string, err error) error {
	if err != nil {
		h.log.Error("delete todo", "id", id, "error", err)
		return err
	}
	h.log.Info("deleted todo", "id", id)
	return nil
}

// Remove asks confirm, then deletes id and refreshes. It reports
// whether the delete was issued.
func (h *Home) Remove(ctx context.Context, id, label string, confirm Confirmer) (bool, error) {
	if !confirm(ConfirmPrompt(label)) {
		h.log.Debug("delete declined", "id", id)
		return false, nil
	}
	if err := h.ApplyRemove(id, h.Delete(ctx, id)); err != nil {
		return true, err
	}
	h.List(ctx)
	return true, nil
}

// Logout forgets the token and returns to the login view. The view
// changes even if clearing fails.
func (h *Home) Logout() error {
	h.Close()
	h.rows = nil
	h.nav.Navigate(model.ViewLogin)
	if err := h.tokens.Clear(); err != nil {
		h.log.Error("logout", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	h.log.Info("logged out")
	return nil
}
