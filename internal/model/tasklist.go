package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Counts summarizes a task list
type Counts struct {
	Total   int
	Pending int
	Done    int
}

// String renders the counter line shown under the list
func (c Counts) String() string {
	if c.Total == 0 {
		return "0 tasks total"
	}
	return fmt.Sprintf("%d total • %d pending • %d done", c.Total, c.Pending, c.Done)
}

// CountTasks tallies pending and done tasks
func CountTasks(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Done++
		}
	}
	c.Pending = c.Total - c.Done
	return c
}

// ErrNotArray is returned when a document decodes but is not a JSON array
var ErrNotArray = errors.New("task document is not an array")

// DecodeTasks parses a persisted task array.
// Elements may be objects or legacy strings; entries with empty trimmed text
// and elements of any other JSON kind are skipped. Any syntax error, a
// non-array document (null included) or an object element that fails to
// decode is an error and no tasks are returned.
func DecodeTasks(data []byte) ([]Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	// null unmarshals into a nil slice without error; [] gives an empty one
	if raw == nil {
		return nil, ErrNotArray
	}

	tasks := make([]Task, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || (elem[0] != '"' && elem[0] != '{') {
			continue
		}

		var t Task
		if err := json.Unmarshal(elem, &t); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// EncodeTasks renders tasks as an indented JSON array.
// Non-ASCII text and HTML characters are written verbatim.
func EncodeTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
