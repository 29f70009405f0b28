// Package tasks loads and validates the ordered task list a track is built
// from.
package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Task is one timed activity. Order in a list is playback order.
type Task struct {
	Name            string `json:"name" yaml:"name"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return fmt.Sprintf("%s (%d min)", t.Name, t.DurationMinutes)
}

// ErrEmpty is returned for a task list with no tasks.
var ErrEmpty = errors.New("task list is empty")

// ValidationError describes the first invalid task in a list.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("task %d: %s %s", e.Index+1, e.Field, e.Reason)
}

// Validate checks that the list is non-empty, every name has visible text
// and every duration is positive.
func Validate(list []Task) error {
	if len(list) == 0 {
		return ErrEmpty
	}
	for i, t := range list {
		if strings.TrimSpace(t.Name) == "" {
			return &ValidationError{Index: i, Field: "name", Reason: "must not be empty"}
		}
		if t.DurationMinutes <= 0 {
			return &ValidationError{Index: i, Field: "duration_minutes", Reason: fmt.Sprintf("must be positive, got %d", t.DurationMinutes)}
		}
	}
	return nil
}

// TotalMinutes sums the task durations.
func TotalMinutes(list []Task) int {
	total := 0
	for _, t := range list {
		total += t.DurationMinutes
	}
	return total
}

// Format is a task file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Unknown extensions
// are treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a task list.
func Parse(data []byte, format Format) ([]Task, error) {
	var list []Task
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse yaml tasks: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse json tasks: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown task format %q", format)
	}
	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Load reads a task file, choosing the format from its extension.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	list, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}
