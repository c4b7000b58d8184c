package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/nightlist/internal/app"
	"github.com/dori/nightlist/internal/store"
	"github.com/dori/nightlist/internal/ui/theme"
	"github.com/dori/nightlist/internal/ui/views"
)

const (
	headerHeight = 1
	footerHeight = 2 // message line + key hints
)

// RootModel is the main application model. It owns the header, the footer
// and the help overlay and hands everything else to the list view.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView View
	listView    views.ListView

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:         application,
		keys:        DefaultKeyMap(),
		help:        h,
		currentView: ViewList,
		listView: views.NewListView(application.Store).
			WithLogger(application.Log).
			WithPersistReporter(application.ReportPersist),
	}
}

// Init initializes the model and reports how the initial load went
func (m RootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listView.Init()}

	if err := m.app.LoadErr; err != nil {
		text := LoadWarning(err)
		cmds = append(cmds, func() tea.Msg {
			return ErrorMsg{Err: errors.New(text)}
		})
	} else if n := m.app.Store.Len(); n > 0 {
		cmds = append(cmds, func() tea.Msg {
			return StatusMsg{Message: fmt.Sprintf("Loaded %d task(s)", n)}
		})
	}

	return tea.Batch(cmds...)
}

// LoadWarning returns the message shown when the saved list could not be read
func LoadWarning(err error) string {
	if store.IsCorrupt(err) {
		return "Task file is corrupted. Starting with empty list."
	}
	return "Failed to load saved tasks."
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.listView = m.listView.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = ViewList
			} else {
				m.currentView = ViewHelp
			}
			return m, nil

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		}

		if m.currentView == ViewHelp {
			// esc closes help instead of quitting
			if key.Matches(msg, m.keys.Quit) {
				m.currentView = ViewList
			}
			return m, nil
		}

		// esc answers the delete prompt before it quits
		if key.Matches(msg, m.keys.Quit) && !m.listView.IsConfirming() {
			m.app.Log.Debug().Msg("quit requested")
			return m, tea.Quit
		}

	case tea.MouseMsg:
		if m.currentView == ViewHelp {
			return m, nil
		}
		msg.Y -= headerHeight
		newListView, cmd := m.listView.Update(msg)
		m.listView = newListView.(views.ListView)
		return m, cmd

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		m.app.Log.Info().Str("theme", msg.ThemeName).Msg("theme changed")
		return m, nil
	}

	// Delegate to the list view
	newListView, cmd := m.listView.Update(msg)
	m.listView = newListView.(views.ListView)
	return m, cmd
}

func (m RootModel) contentHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.contentHeight()
	var content string
	if m.currentView == ViewHelp {
		content = m.renderHelp()
	} else {
		content = m.listView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("nightlist")

	viewStyle := styles.Label.Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))
	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	rightSide := themeIndicator

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// message returns the line shown above the key hints. Warnings win over
// status and the root's own messages win over the view's.
func (m RootModel) message() (text string, warning bool) {
	viewStatus, viewWarning := m.listView.Notice()
	switch {
	case m.errorMsg != "":
		return m.errorMsg, true
	case viewWarning != "":
		return viewWarning, true
	case m.statusMsg != "":
		return m.statusMsg, false
	default:
		return viewStatus, false
	}
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	var statusLine string
	if text, warning := m.message(); text != "" {
		if warning {
			statusLine = styles.ErrorText.Render("⚠ " + text)
		} else {
			statusLine = styles.StatusText.Render(text)
		}
	}

	bindings := m.keys.ShortHelp()
	if m.listView.IsConfirming() {
		bindings = m.keys.ConfirmHelp()
	}
	hints := m.themedHelp().ShortHelpView(bindings)

	return styles.Footer.Render(statusLine) + "\n" + styles.Footer.Render(hints)
}

// themedHelp returns the key hint renderer colored by the active theme
func (m RootModel) themedHelp() help.Model {
	styles := theme.Current.Styles
	h := m.help
	h.Styles.ShortKey = styles.HelpKey
	h.Styles.ShortDesc = styles.HelpDesc
	h.Styles.ShortSeparator = styles.HelpSeparator
	h.Styles.Ellipsis = styles.HelpSeparator
	return h
}

// renderHelp renders the help overlay from the key map
func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles

	titleStyle := styles.Title.MarginBottom(1)
	sectionStyle := styles.Subtitle.MarginTop(1)
	keyStyle := styles.HelpKey.Width(12)
	descStyle := styles.HelpDesc

	var b strings.Builder

	b.WriteString(titleStyle.Render("Nightlist Help"))
	b.WriteString("\n")

	sections := []string{"Navigation", "Tasks", "General"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(descStyle.Render(h.Desc))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Type anywhere to add a task. Click a checkbox to toggle it, double-click a row to delete it."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press F1 or esc to close"))

	return b.String()
}

// cycleTheme switches to the next available theme
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	return func() tea.Msg {
		return ThemeChangedMsg{ThemeName: next.Name}
	}
}
