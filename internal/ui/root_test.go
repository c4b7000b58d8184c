package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/nightlist/internal/app"
	"github.com/dori/nightlist/internal/config"
	"github.com/dori/nightlist/internal/store"
	"github.com/dori/nightlist/internal/ui/theme"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Journal = false

	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func update(m RootModel, msg tea.Msg) (RootModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(RootModel), cmd
}

func sized(m RootModel) RootModel {
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestViewBeforeSize(t *testing.T) {
	m := NewRootModel(newTestApp(t))
	if m.View() != "Loading..." {
		t.Errorf("View() = %q before the first size message", m.View())
	}
}

func TestTypingAddsThroughRoot(t *testing.T) {
	a := newTestApp(t)
	m := sized(NewRootModel(a))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("feed the cat")})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})

	if a.Store.Len() != 1 {
		t.Fatalf("store has %d tasks", a.Store.Len())
	}
	out := m.View()
	if !strings.Contains(out, "feed the cat") || !strings.Contains(out, "1 total • 1 pending • 0 done") {
		t.Errorf("view missing task or counter:\n%s", out)
	}
}

func TestEscQuits(t *testing.T) {
	m := sized(NewRootModel(newTestApp(t)))

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !isQuit(cmd) {
		t.Error("esc should quit")
	}

	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
}

func TestEscCancelsPromptInsteadOfQuitting(t *testing.T) {
	a := newTestApp(t)
	a.Store.Add("task")
	m := sized(NewRootModel(a))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDelete})
	if !strings.Contains(m.View(), "Delete this task? (y/n)") {
		t.Fatal("prompt not shown")
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil && isQuit(cmd) {
		t.Fatal("esc quit while the prompt was open")
	}
	if strings.Contains(m.View(), "Delete this task?") {
		t.Error("prompt still open")
	}
	if a.Store.Len() != 1 {
		t.Error("task deleted without y")
	}
}

func TestHelpToggle(t *testing.T) {
	m := sized(NewRootModel(newTestApp(t)))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF1})
	if m.currentView != ViewHelp || !strings.Contains(m.View(), "Nightlist Help") {
		t.Fatal("F1 should open help")
	}

	// Typing while help is open does not reach the input
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	if m.listView.InputValue() != "" {
		t.Error("help overlay leaked keys to the input")
	}

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if isQuit(cmd) || m.currentView != ViewList {
		t.Error("esc should close help, not quit")
	}
}

func TestThemeCycle(t *testing.T) {
	defer theme.SetTheme(theme.Midnight)
	theme.SetTheme(theme.Midnight)

	m := sized(NewRootModel(newTestApp(t)))

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if theme.Current.Theme.Name != "nord" {
		t.Fatalf("theme = %q after one cycle", theme.Current.Theme.Name)
	}
	m, _ = update(m, cmd())

	if !strings.Contains(m.View(), "Theme: nord") {
		t.Error("theme change not reported")
	}
}

func TestLoadErrorShownAtStartup(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Journal = false
	if err := os.WriteFile(cfg.TasksPath(cfg.DataDir), []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}
	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	defer a.Close()

	m := sized(NewRootModel(a))
	if _, ok := m.Init()().(tea.BatchMsg); !ok {
		t.Fatal("Init should batch the blink and the warning")
	}

	// Deliver the warning directly
	m, _ = update(m, ErrorMsg{Err: errors.New(LoadWarning(a.LoadErr))})
	if !strings.Contains(m.View(), "Task file is corrupted. Starting with empty list.") {
		t.Errorf("load warning missing:\n%s", m.View())
	}
}

func TestLoadWarning(t *testing.T) {
	corrupt := &store.LoadError{Location: "x", Err: fmt.Errorf("%w: bad", store.ErrCorrupt)}
	if got := LoadWarning(corrupt); got != "Task file is corrupted. Starting with empty list." {
		t.Errorf("corrupt: %q", got)
	}
	other := &store.LoadError{Location: "x", Err: os.ErrPermission}
	if got := LoadWarning(other); got != "Failed to load saved tasks." {
		t.Errorf("other: %q", got)
	}
}

func TestMouseOffsetByHeader(t *testing.T) {
	a := newTestApp(t)
	a.Store.Add("click me")
	m := sized(NewRootModel(a))

	// header + input box + counter puts the first row on screen line 5
	m, _ = update(m, tea.MouseMsg{X: 2, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	task, _ := a.Store.Task(0)
	if !task.Completed {
		t.Error("click on the first checkbox should toggle it")
	}
}

func TestKeyHintsFollowTheme(t *testing.T) {
	defer theme.SetTheme(theme.Midnight)
	m := sized(NewRootModel(newTestApp(t)))

	theme.SetTheme(theme.Gruvbox)
	styles := m.themedHelp().Styles
	if styles.ShortKey.GetForeground() != theme.Gruvbox.Primary {
		t.Errorf("key hint color = %v, want %v", styles.ShortKey.GetForeground(), theme.Gruvbox.Primary)
	}
	if styles.ShortDesc.GetForeground() != theme.Gruvbox.Subtle {
		t.Errorf("hint description color = %v, want %v", styles.ShortDesc.GetForeground(), theme.Gruvbox.Subtle)
	}
	if styles.ShortSeparator.GetForeground() != theme.Gruvbox.Border {
		t.Errorf("separator color = %v, want %v", styles.ShortSeparator.GetForeground(), theme.Gruvbox.Border)
	}
}

func TestHeaderNamesView(t *testing.T) {
	m := sized(NewRootModel(newTestApp(t)))
	if !strings.Contains(m.renderHeader(), "[List]") {
		t.Errorf("header = %q", m.renderHeader())
	}

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyF1})
	if !strings.Contains(m.renderHeader(), "[Help]") {
		t.Errorf("header in help = %q", m.renderHeader())
	}
}
