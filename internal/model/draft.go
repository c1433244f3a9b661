package model

// Mode selects what submitting the editor does.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Draft is the editable copy of an item while the editor modal is open.
// ID is empty in create mode.
type Draft struct {
	Mode        Mode
	ID          string
	Title       string
	Description string
}

// Input returns the request body for the draft.
func (d Draft) Input() TodoInput {
	return TodoInput{Title: d.Title, Description: d.Description}
}

// Empty reports whether the draft carries no user input.
func (d Draft) Empty() bool {
	return d.Title == "" && d.Description == ""
}

// View is one of the two screens of the client.
type View int

const (
	ViewLogin View = iota
	ViewHome
)

func (v View) String() string {
	if v == ViewHome {
		return "home"
	}
	return "login"
}
