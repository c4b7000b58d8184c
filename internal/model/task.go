package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest task text accepted, in characters
const MaxTextLength = 100

var (
	// ErrEmptyText is returned when a task's trimmed text is empty
	ErrEmptyText = errors.New("task text is empty")

	// ErrTextTooLong is returned when a task's trimmed text exceeds MaxTextLength
	ErrTextTooLong = fmt.Errorf("task text is longer than %d characters", MaxTextLength)
)

// Task represents a todo item
type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewTask trims text and validates it, returning a pending task
func NewTask(text string) (Task, error) {
	text, err := NormalizeText(text)
	if err != nil {
		return Task{}, err
	}
	return Task{Text: text}, nil
}

// NormalizeText trims surrounding whitespace and checks the length rules
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", ErrTextTooLong
	}
	return text, nil
}

// Toggled returns a copy of the task with Completed flipped
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// UnmarshalJSON accepts both the object form and the legacy bare string form.
// A legacy string decodes as a pending task.
func (t *Task) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*t = Task{Text: text}
		return nil
	}

	// Alias drops the method set so this does not recurse
	type alias Task
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Task(a)
	return nil
}
