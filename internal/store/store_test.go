package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dori/nightlist/internal/model"
)

// memBackend keeps tasks in memory and can be told to fail
type memBackend struct {
	tasks   []model.Task
	saves   int
	saveErr error
	loadErr error
}

func (m *memBackend) Load() ([]model.Task, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]model.Task(nil), m.tasks...), nil
}

func (m *memBackend) Save(tasks []model.Task) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = append([]model.Task(nil), tasks...)
	return nil
}

func (m *memBackend) Location() string { return "memory" }

type recordedEvent struct {
	kind model.EventKind
	text string
}

type fakeJournal struct {
	events []recordedEvent
}

func (j *fakeJournal) Record(kind model.EventKind, text string) error {
	j.events = append(j.events, recordedEvent{kind, text})
	return nil
}

func yes(model.Task) bool { return true }
func no(model.Task) bool  { return false }

func newStore(t *testing.T, texts ...string) (*Store, *memBackend) {
	t.Helper()
	b := &memBackend{}
	s := New(b)
	for _, text := range texts {
		if _, err := s.Add(text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	b.saves = 0
	return s, b
}

func texts(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestAdd(t *testing.T) {
	s, b := newStore(t)

	task, err := s.Add("  buy milk  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.Text != "buy milk" || task.Completed {
		t.Errorf("Add returned %+v", task)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if b.saves != 1 || len(b.tasks) != 1 {
		t.Errorf("expected one save of one task, got saves=%d tasks=%d", b.saves, len(b.tasks))
	}
}

func TestAddRejectsInvalidText(t *testing.T) {
	s, b := newStore(t, "existing")

	for _, input := range []string{"", " ", "\t\n", strings.Repeat("x", model.MaxTextLength+1)} {
		if _, err := s.Add(input); err == nil {
			t.Errorf("Add(%q) should fail", input)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if b.saves != 0 {
		t.Errorf("rejected adds should not persist, got %d saves", b.saves)
	}

	_, err := s.Add(strings.Repeat("x", model.MaxTextLength+1))
	if !errors.Is(err, model.ErrTextTooLong) {
		t.Errorf("expected ErrTextTooLong, got %v", err)
	}
	_, err = s.Add(" ")
	if !errors.Is(err, model.ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s, b := newStore(t, "a", "b")

	task, err := s.Toggle(1)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !task.Completed {
		t.Fatal("expected task to be completed after first toggle")
	}
	if _, err := s.Toggle(1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	got, _ := s.Task(1)
	if got.Completed {
		t.Error("toggling twice should restore completed=false")
	}
	if b.saves != 2 {
		t.Errorf("expected 2 saves, got %d", b.saves)
	}
}

func TestToggleOutOfRange(t *testing.T) {
	s, b := newStore(t, "a")

	for _, i := range []int{-1, 1, 5} {
		if _, err := s.Toggle(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Toggle(%d) error = %v, want ErrIndexOutOfRange", i, err)
		}
	}
	if b.saves != 0 {
		t.Errorf("expected no saves, got %d", b.saves)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s, b := newStore(t, "a", "b", "c")

	deleted, err := s.Delete(1, no)
	if err != nil || deleted {
		t.Fatalf("Delete declined = (%v, %v), want (false, nil)", deleted, err)
	}
	deleted, err = s.Delete(1, nil)
	if err != nil || deleted {
		t.Fatalf("Delete with nil confirm = (%v, %v), want (false, nil)", deleted, err)
	}
	if got := texts(s.Tasks()); strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("store changed without confirmation: %v", got)
	}
	if b.saves != 0 {
		t.Errorf("declined delete persisted %d times", b.saves)
	}

	var asked model.Task
	deleted, err = s.Delete(1, func(task model.Task) bool {
		asked = task
		return true
	})
	if err != nil || !deleted {
		t.Fatalf("Delete confirmed = (%v, %v), want (true, nil)", deleted, err)
	}
	if asked.Text != "b" {
		t.Errorf("confirm was asked about %q, want \"b\"", asked.Text)
	}
	if got := texts(s.Tasks()); strings.Join(got, ",") != "a,c" {
		t.Errorf("after delete got %v, want [a c]", got)
	}
	// the task after the removed one shifts down
	if task, _ := s.Task(1); task.Text != "c" {
		t.Errorf("index 1 = %q, want \"c\"", task.Text)
	}
	if b.saves != 1 {
		t.Errorf("expected 1 save, got %d", b.saves)
	}
}

func TestClearCompleted(t *testing.T) {
	s, b := newStore(t, "a", "b", "c", "d", "e")
	for _, i := range []int{0, 2, 3} {
		if _, err := s.Toggle(i); err != nil {
			t.Fatalf("Toggle(%d): %v", i, err)
		}
	}
	b.saves = 0

	n, err := s.ClearCompleted()
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared %d, want 3", n)
	}
	if got := texts(s.Tasks()); strings.Join(got, ",") != "b,e" {
		t.Errorf("remaining %v, want [b e]", got)
	}
	if b.saves != 1 {
		t.Errorf("expected 1 save, got %d", b.saves)
	}

	n, err = s.ClearCompleted()
	if err != nil || n != 0 {
		t.Fatalf("second ClearCompleted = (%d, %v), want (0, nil)", n, err)
	}
	if b.saves != 1 {
		t.Errorf("clearing nothing should not persist, saves=%d", b.saves)
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	s, b := newStore(t, "a")
	b.saveErr = errors.New("disk full")

	_, err := s.Add("b")
	var perr *PersistError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistError, got %v", err)
	}
	if !strings.Contains(perr.Error(), "disk full") {
		t.Errorf("error %q should mention cause", perr.Error())
	}
	if s.Len() != 2 {
		t.Errorf("in-memory state lost: Len = %d, want 2", s.Len())
	}
}

func TestLoadFailureEmptiesStore(t *testing.T) {
	s, b := newStore(t, "a", "b")
	b.loadErr = errors.New("permission denied")

	err := s.Load()
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if IsCorrupt(err) {
		t.Error("read failure should not be reported as corrupt")
	}
	if s.Len() != 0 {
		t.Errorf("store should be empty after failed load, Len = %d", s.Len())
	}
}

func TestLoadSkipsEmptyText(t *testing.T) {
	b := &memBackend{tasks: []model.Task{{Text: " a "}, {Text: "  "}, {Text: "b", Completed: true}}}
	s := New(b)

	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := s.Tasks()
	if len(got) != 2 || got[0].Text != "a" || got[1] != (model.Task{Text: "b", Completed: true}) {
		t.Errorf("Load = %+v", got)
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	s, _ := newStore(t, "a")
	tasks := s.Tasks()
	tasks[0].Text = "changed"

	if got, _ := s.Task(0); got.Text != "a" {
		t.Errorf("store was modified through Tasks(): %q", got.Text)
	}
}

func TestJournalRecordsMutations(t *testing.T) {
	s, _ := newStore(t)
	j := &fakeJournal{}
	s.SetJournal(j)

	mustAdd := func(text string) {
		if _, err := s.Add(text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	mustAdd("a")
	mustAdd("b")
	if _, err := s.Add(""); err == nil {
		t.Fatal("expected validation error")
	}
	s.Toggle(0)
	s.Toggle(0)
	s.Toggle(1)
	s.Delete(0, no)
	s.Delete(0, yes)
	s.ClearCompleted()

	want := []recordedEvent{
		{model.EventAdd, "a"},
		{model.EventAdd, "b"},
		{model.EventComplete, "a"},
		{model.EventReopen, "a"},
		{model.EventComplete, "b"},
		{model.EventDelete, "a"},
		{model.EventClear, "b"},
	}
	if len(j.events) != len(want) {
		t.Fatalf("recorded %d events %+v, want %d", len(j.events), j.events, len(want))
	}
	for i := range want {
		if j.events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, j.events[i], want[i])
		}
	}
}

func TestJournalSkipsFailedSaves(t *testing.T) {
	s, b := newStore(t, "a", "b")
	s.Toggle(1)
	j := &fakeJournal{}
	s.SetJournal(j)
	b.saveErr = errors.New("disk full")

	s.Add("c")
	s.Toggle(0)
	s.Delete(0, yes)
	s.ClearCompleted()

	if len(j.events) != 0 {
		t.Errorf("journal recorded unsaved changes: %+v", j.events)
	}

	b.saveErr = nil
	if _, err := s.Add("d"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(j.events) != 1 || j.events[0] != (recordedEvent{model.EventAdd, "d"}) {
		t.Errorf("events after recovery = %+v", j.events)
	}
}

func TestRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	s := New(NewFileBackend(path))
	for _, text := range []string{"buy milk", "walk dog", "ünïcödé ✓", "a & b <c>"} {
		if _, err := s.Add(text); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := s.Toggle(1); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	fresh := New(NewFileBackend(path))
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := s.Tasks()
	got := fresh.Tasks()
	if len(got) != len(want) {
		t.Fatalf("loaded %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
