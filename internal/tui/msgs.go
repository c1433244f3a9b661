package tui

import (
	"github.com/devhell/todo/internal/model"
)

// Results of network calls. Each carries what the matching Apply step
// of the flow needs. Home results carry the session generation they
// were issued in; a sign-out bumps it and later arrivals are dropped.
type (
	loginMsg struct {
		token string
		err   error
	}

	listMsg struct {
		gen   int
		items []model.Todo
		err   error
	}

	itemMsg struct {
		gen  int
		id   string
		item model.Todo
		err  error
	}

	submitMsg struct {
		gen   int
		draft model.Draft
		item  model.Todo
		err   error
	}

	deleteMsg struct {
		gen int
		id  string
		err error
	}

	copiedMsg struct {
		id  string
		err error
	}
)
