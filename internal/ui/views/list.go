package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/nightlist/internal/logging"
	"github.com/dori/nightlist/internal/model"
	"github.com/dori/nightlist/internal/store"
	"github.com/dori/nightlist/internal/ui/theme"
	"github.com/rs/zerolog"
)

const (
	defaultPlaceholder = "Enter new task..."
	emptyPlaceholder   = "Please enter a task first!"

	saveFailedText = "Failed to save tasks. Changes may be lost."
)

// Layout of the rows above the first task
const (
	inputHeight   = 3 // rounded border around one line
	counterHeight = 1

	// checkboxEnd is the last column that counts as a click on "[ ]"
	checkboxEnd = 4
)

// DoubleClickInterval is the longest gap between two clicks on the same row
// that still opens the delete prompt
const DoubleClickInterval = 400 * time.Millisecond

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeConfirmDelete
)

// clipboardMsg reports the result of a copy
type clipboardMsg struct {
	text string
	err  error
}

// ListView displays the task list under an always focused input.
// It renders the store and never keeps its own copy of the tasks.
type ListView struct {
	store *store.Store
	log   zerolog.Logger

	reportPersist func(error)
	copyText      func(string) error
	now           func() time.Time

	width  int
	height int

	cursor       int
	scrollOffset int

	mode        ListMode
	deleteIndex int
	input       textinput.Model

	statusMsg string
	errorMsg  string

	lastClickRow int
	lastClickAt  time.Time
}

// NewListView creates a new list view bound to s
func NewListView(s *store.Store) ListView {
	ti := textinput.New()
	ti.Placeholder = defaultPlaceholder
	ti.CharLimit = 256
	ti.Focus()

	return ListView{
		store:         s,
		log:           zerolog.Nop(),
		reportPersist: func(error) {},
		copyText:      clipboard.WriteAll,
		now:           time.Now,
		input:         ti,
		lastClickRow:  -1,
	}
}

// WithLogger returns the view logging to l
func (v ListView) WithLogger(l zerolog.Logger) ListView {
	v.log = logging.Component(l, "ui")
	return v
}

// WithPersistReporter sets the hook called after a failed save
func (v ListView) WithPersistReporter(fn func(error)) ListView {
	if fn != nil {
		v.reportPersist = fn
	}
	return v
}

// themedInput returns the input with the placeholder colored by the active theme
func (v ListView) themedInput() textinput.Model {
	in := v.input
	in.PlaceholderStyle = theme.Current.Styles.Placeholder
	return in
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return textinput.Blink
}

// IsConfirming reports whether the delete prompt is open
func (v ListView) IsConfirming() bool {
	return v.mode == ListModeConfirmDelete
}

// Cursor returns the index of the highlighted task
func (v ListView) Cursor() int {
	return v.cursor
}

// InputValue returns the text typed so far
func (v ListView) InputValue() string {
	return v.input.Value()
}

// Placeholder returns the hint shown in the empty input
func (v ListView) Placeholder() string {
	return v.input.Placeholder
}

// Notice returns the pending status and warning lines
func (v ListView) Notice() (status, warning string) {
	return v.statusMsg, v.errorMsg
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	v.ensureCursorVisible()
	return v
}

// visibleTaskCount returns how many tasks can fit in the viewport
func (v ListView) visibleTaskCount() int {
	// Input, counter, both scroll indicators and the prompt line
	available := v.height - inputHeight - counterHeight - 3
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible clamps the cursor and adjusts scrollOffset to keep it in view
func (v *ListView) ensureCursorVisible() {
	n := v.store.Len()
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}

	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := n - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

func (v *ListView) moveCursor(delta int) {
	v.cursor += delta
	v.ensureCursorVisible()
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clipboardMsg:
		if msg.err != nil {
			v.log.Warn().Err(msg.err).Msg("clipboard write failed")
			v.errorMsg = "Failed to copy: " + msg.err.Error()
		} else {
			v.statusMsg = "Copied: " + msg.text
		}
		return v, nil

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case tea.KeyMsg:
		v.statusMsg = ""
		v.errorMsg = ""

		if v.mode == ListModeConfirmDelete {
			return v.handleDeleteConfirm(msg)
		}
		return v.handleNormalMode(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleNormalMode handles keypresses while the input has focus
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.guard("Failed to create task item.", v.addTask)
		return v, nil

	case "up":
		v.moveCursor(-1)
		return v, nil

	case "down":
		v.moveCursor(1)
		return v, nil

	case "pgup":
		v.moveCursor(-v.visibleTaskCount())
		return v, nil

	case "pgdown":
		v.moveCursor(v.visibleTaskCount())
		return v, nil

	case "home":
		v.cursor = 0
		v.ensureCursorVisible()
		return v, nil

	case "end":
		v.cursor = v.store.Len() - 1
		v.ensureCursorVisible()
		return v, nil

	case "tab":
		v.guard("Failed to update task.", func() { v.toggleAt(v.cursor) })
		return v, nil

	case "delete", "ctrl+d":
		v.openDeletePrompt(v.cursor)
		return v, nil

	case "ctrl+x":
		v.guard("Failed to clear completed tasks.", v.clearCompleted)
		return v, nil

	case "ctrl+y":
		return v, v.copySelected()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleDeleteConfirm handles the y/n prompt
func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.closeDeletePrompt()
		v.guard("Failed to delete task.", func() { v.deleteAt(v.deleteIndex) })
		return v, textinput.Blink
	case "n", "N", "esc":
		v.closeDeletePrompt()
		return v, textinput.Blink
	}
	return v, nil
}

// handleMouse toggles on a checkbox click and asks to delete on a double click
func (v ListView) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if v.mode == ListModeConfirmDelete {
		return v, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		v.moveCursor(-1)
		return v, nil
	case tea.MouseButtonWheelDown:
		v.moveCursor(1)
		return v, nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return v, nil
	}

	idx, ok := v.taskAt(msg.Y)
	if !ok {
		return v, nil
	}

	v.statusMsg = ""
	v.errorMsg = ""
	v.cursor = idx

	if msg.X <= checkboxEnd {
		v.lastClickRow = -1
		v.guard("Failed to update task.", func() { v.toggleAt(idx) })
		return v, nil
	}

	now := v.now()
	if idx == v.lastClickRow && now.Sub(v.lastClickAt) <= DoubleClickInterval {
		v.lastClickRow = -1
		v.openDeletePrompt(idx)
		return v, nil
	}
	v.lastClickRow = idx
	v.lastClickAt = now
	return v, nil
}

// taskAt maps a view-relative row to a task index
func (v ListView) taskAt(y int) (int, bool) {
	top := inputHeight + counterHeight
	if v.scrollOffset > 0 {
		top++ // "more above" indicator
	}

	row := y - top
	if row < 0 || row >= v.visibleTaskCount() {
		return 0, false
	}
	idx := v.scrollOffset + row
	if idx >= v.store.Len() {
		return 0, false
	}
	return idx, true
}

// guard runs an action and turns a panic into a warning
func (v *ListView) guard(failure string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Error().Interface("panic", r).Msg(failure)
			v.errorMsg = failure
		}
	}()
	fn()
}

func (v *ListView) addTask() {
	_, err := v.store.Add(v.input.Value())
	switch {
	case errors.Is(err, model.ErrEmptyText):
		v.input.Reset()
		v.input.Placeholder = emptyPlaceholder
		return
	case errors.Is(err, model.ErrTextTooLong):
		v.errorMsg = fmt.Sprintf("Please keep tasks under %d characters.", model.MaxTextLength)
		return
	}

	v.input.Reset()
	v.input.Placeholder = defaultPlaceholder
	v.cursor = v.store.Len() - 1
	v.ensureCursorVisible()
	v.handleStoreError(err)
}

func (v *ListView) toggleAt(index int) {
	if v.store.Len() == 0 {
		return
	}
	_, err := v.store.Toggle(index)
	v.handleStoreError(err)
}

func (v *ListView) openDeletePrompt(index int) {
	if index < 0 || index >= v.store.Len() {
		return
	}
	v.mode = ListModeConfirmDelete
	v.deleteIndex = index
	v.cursor = index
	v.ensureCursorVisible()
	v.input.Blur()
}

func (v *ListView) closeDeletePrompt() {
	v.mode = ListModeNormal
	v.input.Focus()
}

func (v *ListView) deleteAt(index int) {
	_, err := v.store.Delete(index, func(model.Task) bool { return true })
	v.ensureCursorVisible()
	v.handleStoreError(err)
}

func (v *ListView) clearCompleted() {
	n, err := v.store.ClearCompleted()
	if n == 0 && err == nil {
		v.statusMsg = "No completed tasks to clear!"
		return
	}
	v.statusMsg = fmt.Sprintf("Cleared %d completed task(s)!", n)
	v.ensureCursorVisible()
	v.handleStoreError(err)
}

// copySelected copies the highlighted task text to the system clipboard
func (v ListView) copySelected() tea.Cmd {
	task, err := v.store.Task(v.cursor)
	if err != nil {
		return nil
	}
	copyText := v.copyText
	return func() tea.Msg {
		return clipboardMsg{text: task.Text, err: copyText(task.Text)}
	}
}

// handleStoreError shows a failed mutation in the warning line
func (v *ListView) handleStoreError(err error) {
	if err == nil {
		return
	}

	var perr *store.PersistError
	if errors.As(err, &perr) {
		v.errorMsg = saveFailedText
		v.reportPersist(err)
		return
	}
	if errors.Is(err, store.ErrIndexOutOfRange) {
		v.log.Debug().Err(err).Msg("stale cursor")
		return
	}
	v.log.Error().Err(err).Msg("store operation failed")
	v.errorMsg = "Something went wrong: " + err.Error()
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	// Input field
	inputStyle := styles.InputFocused
	if v.mode == ListModeConfirmDelete {
		inputStyle = styles.Input
	}
	if v.width > 2 {
		inputStyle = inputStyle.Width(v.width - 2)
	}
	b.WriteString(inputStyle.Render(v.themedInput().View()))
	b.WriteString("\n")

	// Counter
	b.WriteString(styles.Counter.Render(v.store.Counts().String()))
	b.WriteString("\n")

	tasks := v.store.Tasks()
	if len(tasks) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 1)
		b.WriteString(emptyStyle.Render("No tasks yet. Type one above and press enter."))
		return b.String()
	}

	visible := v.visibleTaskCount()
	endIdx := v.scrollOffset + visible
	if endIdx > len(tasks) {
		endIdx = len(tasks)
	}

	scrollStyle := lipgloss.NewStyle().Foreground(t.Subtle)
	if v.scrollOffset > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderTask(tasks[i], i == v.cursor))
		b.WriteString("\n")
	}

	if remaining := len(tasks) - endIdx; remaining > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	// Delete confirmation
	if v.mode == ListModeConfirmDelete {
		b.WriteString(styles.Confirm.Render("Delete this task? (y/n)"))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// rowStyles picks the checkbox and text styles for a row. The cursor row
// takes TaskSelected and keeps the strikethrough of a done task.
func rowStyles(task model.Task, isCursor bool) (box, text lipgloss.Style) {
	styles := theme.Current.Styles

	box = styles.Checkbox.PaddingLeft(1)
	text = styles.TaskNormal
	if task.Completed {
		box = styles.CheckboxDone.PaddingLeft(1)
		text = styles.TaskDone
	}
	if isCursor {
		box = box.Background(styles.TaskSelected.GetBackground())
		text = styles.TaskSelected.Inherit(text)
	}
	return box, text
}

// renderTask renders one row: checkbox and text truncated to the view width
func (v ListView) renderTask(task model.Task, isCursor bool) string {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	boxStyle, textStyle := rowStyles(task, isCursor)

	text := task.Text
	if v.width > 0 {
		// 3 for the box plus padding on both sides of the text
		text = truncateString(text, v.width-checkboxEnd-3)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(box), textStyle.Render(text))
}
