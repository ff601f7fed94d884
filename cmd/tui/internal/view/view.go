package view

import tea "github.com/charmbracelet/bubbletea"

// View is a full-screen TUI view selectable from the main menu.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel holds state shared by all views.
type CommonModel struct {
	Width  int
	Height int
}

// BackMsg signals a return to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
