// Package store holds the ordered task list and its load, persist and
// mutation operations.
package store

import (
	"fmt"
	"strings"

	"github.com/dori/nightlist/internal/model"
	"github.com/rs/zerolog"
)

// Confirmer gates a deletion. It is called with the task about to be
// removed; returning false leaves the store untouched.
type Confirmer func(task model.Task) bool

// Journal records mutations that reached the backend. A change whose save
// failed is not recorded.
type Journal interface {
	Record(kind model.EventKind, text string) error
}

// Store is the in-memory ordered task list.
// Every mutation rewrites the backend in full. A Store is not safe for
// concurrent use.
type Store struct {
	backend Backend
	journal Journal
	log     zerolog.Logger
	tasks   []model.Task
}

// New creates an empty store over backend. Call Load to read saved tasks.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		log:     zerolog.Nop(),
	}
}

// SetJournal attaches an activity journal
func (s *Store) SetJournal(j Journal) {
	s.journal = j
}

// SetLogger sets the logger used for non-returned failures
func (s *Store) SetLogger(l zerolog.Logger) {
	s.log = l.With().Str("component", "store").Logger()
}

// Location describes where the backend keeps tasks
func (s *Store) Location() string {
	return s.backend.Location()
}

// Len returns the number of tasks
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the ordered task list
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the task at index
func (s *Store) Task(index int) (model.Task, error) {
	if err := s.checkIndex(index); err != nil {
		return model.Task{}, err
	}
	return s.tasks[index], nil
}

// Counts returns total, pending and done tallies
func (s *Store) Counts() model.Counts {
	return model.CountTasks(s.tasks)
}

// Add validates text and appends a pending task.
// Validation failures return model.ErrEmptyText or model.ErrTextTooLong and
// leave the store unchanged. A *PersistError means the task was added in
// memory but not written.
func (s *Store) Add(text string) (model.Task, error) {
	task, err := model.NewTask(text)
	if err != nil {
		return model.Task{}, err
	}

	s.tasks = append(s.tasks, task)
	s.log.Debug().Str("text", task.Text).Int("count", len(s.tasks)).Msg("task added")

	if err := s.Persist(); err != nil {
		return task, err
	}
	s.record(model.EventAdd, task.Text)
	return task, nil
}

// Toggle flips the completed flag of the task at index and returns it
func (s *Store) Toggle(index int) (model.Task, error) {
	if err := s.checkIndex(index); err != nil {
		return model.Task{}, err
	}

	s.tasks[index] = s.tasks[index].Toggled()
	task := s.tasks[index]

	s.log.Debug().Int("index", index).Bool("completed", task.Completed).Msg("task toggled")

	if err := s.Persist(); err != nil {
		return task, err
	}
	kind := model.EventReopen
	if task.Completed {
		kind = model.EventComplete
	}
	s.record(kind, task.Text)
	return task, nil
}

// Delete removes the task at index once confirm approves it.
// A nil confirm declines. It reports whether the task was removed.
func (s *Store) Delete(index int, confirm Confirmer) (bool, error) {
	if err := s.checkIndex(index); err != nil {
		return false, err
	}

	task := s.tasks[index]
	if confirm == nil || !confirm(task) {
		s.log.Debug().Int("index", index).Msg("delete declined")
		return false, nil
	}

	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.log.Debug().Int("index", index).Str("text", task.Text).Msg("task deleted")

	if err := s.Persist(); err != nil {
		return true, err
	}
	s.record(model.EventDelete, task.Text)
	return true, nil
}

// ClearCompleted removes every completed task, keeping the order of the rest,
// and returns how many were removed. Nothing is written when none were.
func (s *Store) ClearCompleted() (int, error) {
	kept := s.tasks[:0]
	var cleared []string
	for _, t := range s.tasks {
		if t.Completed {
			cleared = append(cleared, t.Text)
			continue
		}
		kept = append(kept, t)
	}
	// zero the tail so removed tasks are not retained by the backing array
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = model.Task{}
	}
	s.tasks = kept

	if len(cleared) == 0 {
		return 0, nil
	}

	s.log.Debug().Int("cleared", len(cleared)).Msg("completed tasks cleared")

	if err := s.Persist(); err != nil {
		return len(cleared), err
	}
	s.record(model.EventClear, strings.Join(cleared, ", "))
	return len(cleared), nil
}

// Load replaces the in-memory list with what the backend holds.
// On failure the store is left empty and a *LoadError is returned;
// errors.Is(err, ErrCorrupt) tells a damaged file from an unreadable one.
func (s *Store) Load() error {
	tasks, err := s.backend.Load()
	if err != nil {
		s.tasks = nil
		s.log.Error().Err(err).Str("location", s.backend.Location()).Msg("load failed")
		return &LoadError{Location: s.backend.Location(), Err: err}
	}

	s.tasks = s.tasks[:0]
	for _, t := range tasks {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" {
			continue
		}
		s.tasks = append(s.tasks, t)
	}
	s.log.Debug().Int("count", len(s.tasks)).Str("location", s.backend.Location()).Msg("tasks loaded")
	return nil
}

// Persist writes the full list to the backend. A failure is returned as a
// *PersistError and leaves in-memory state as it was.
func (s *Store) Persist() error {
	if err := s.backend.Save(s.Tasks()); err != nil {
		s.log.Error().Err(err).Str("location", s.backend.Location()).Msg("persist failed")
		return &PersistError{Location: s.backend.Location(), Err: err}
	}
	return nil
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.tasks) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.tasks))
	}
	return nil
}

func (s *Store) record(kind model.EventKind, text string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(kind, text); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("journal record failed")
	}
}
