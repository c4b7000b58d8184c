package ui

// View represents the current active view
type View int

const (
	ViewList View = iota
	ViewHelp
)

// String returns the display name shown in the header
func (v View) String() string {
	if v == ViewHelp {
		return "Help"
	}
	return "List"
}

// Messages for inter-component communication

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
