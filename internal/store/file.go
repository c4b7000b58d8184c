package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dori/nightlist/internal/model"
)

// DefaultFileName is the tasks file created inside the data directory
const DefaultFileName = "nightlist_tasks.json"

// Backend loads and saves the full ordered task list
type Backend interface {
	// Load returns the persisted tasks, or nil when nothing has been saved yet
	Load() ([]model.Task, error)
	// Save replaces everything persisted with tasks
	Save(tasks []model.Task) error
	// Location describes where tasks are kept, for messages and logs
	Location() string
}

// FileBackend keeps tasks in a JSON file
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the JSON file at path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Location returns the file path
func (b *FileBackend) Location() string {
	return b.path
}

// Load reads and decodes the file. A missing file is not an error.
// Parse failures wrap ErrCorrupt.
func (b *FileBackend) Load() ([]model.Task, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	tasks, err := model.DecodeTasks(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return tasks, nil
}

// Save rewrites the whole file, creating its directory if needed
func (b *FileBackend) Save(tasks []model.Task) error {
	data, err := model.EncodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create task directory: %w", err)
	}

	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	return nil
}
