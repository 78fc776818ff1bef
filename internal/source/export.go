// Package source reads labeling task exports and resolves the images they
// reference.
package source

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ironsheep/annotation-audit/internal/annotation"
)

//go:embed schema.json
var taskSchema string

// TaskRecord is one task of an export.
type TaskRecord struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"created_at"`
	Params    Params    `json:"params"`
	Response  *Response `json:"response"`

	// Invalid is set when the record could not be decoded. Such records
	// carry at most their task id and are skipped by the runner.
	Invalid error `json:"-"`
}

// Params holds the task inputs.
type Params struct {
	Attachment string `json:"attachment"`
}

// Response holds the labeler's output. A nil Annotations slice means the
// export carried none; an empty one means the labeler drew no boxes.
type Response struct {
	Annotations []annotation.Record `json:"annotations"`
}

// Records returns the task's annotation records and whether any were
// exported at all.
func (t TaskRecord) Records() ([]annotation.Record, bool) {
	if t.Response == nil || t.Response.Annotations == nil {
		return nil, false
	}
	return t.Response.Annotations, true
}

// SchemaError lists the schema violations of one task record.
type SchemaError struct {
	Index  int
	Errors []FieldError
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fmt.Sprintf("task %d does not match schema: %s", e.Index, strings.Join(parts, "; "))
}

// ParseExport decodes an export, a JSON array of tasks.
//
// Each task is validated against the task schema on its own. A task that
// fails is returned with Invalid set instead of failing the whole export;
// only data that is not a JSON array is an error.
func ParseExport(data []byte) ([]TaskRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(taskSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to load task schema: %w", err)
	}

	tasks := make([]TaskRecord, 0, len(items))
	for i, item := range items {
		tasks = append(tasks, parseTask(schema, i, item))
	}
	return tasks, nil
}

func parseTask(schema *gojsonschema.Schema, index int, item json.RawMessage) TaskRecord {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(item))
	if err != nil {
		return TaskRecord{TaskID: taskIDOf(item), Invalid: fmt.Errorf("task %d: %w", index, err)}
	}

	if !result.Valid() {
		schemaErr := &SchemaError{Index: index, Errors: make([]FieldError, 0, len(result.Errors()))}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			schemaErr.Errors = append(schemaErr.Errors, FieldError{
				Field:   field,
				Message: desc.Description(),
			})
		}
		return TaskRecord{TaskID: taskIDOf(item), Invalid: schemaErr}
	}

	var t TaskRecord
	if err := json.Unmarshal(item, &t); err != nil {
		return TaskRecord{TaskID: taskIDOf(item), Invalid: fmt.Errorf("task %d: %w", index, err)}
	}
	return t
}

// taskIDOf recovers the task id of a record that failed validation, if it
// has a usable one.
func taskIDOf(item json.RawMessage) string {
	var head struct {
		TaskID interface{} `json:"task_id"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return ""
	}
	id, _ := head.TaskID.(string)
	return id
}

// LoadExport reads and parses an export file.
func LoadExport(path string) ([]TaskRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}
	return ParseExport(data)
}

// Filter returns the tasks created in [after, before). Tasks without a
// created_at value are kept. Tasks whose value cannot be parsed are kept
// with Invalid set, so the runner reports them instead of losing them.
func Filter(tasks []TaskRecord, after, before time.Time) []TaskRecord {
	kept := make([]TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		if t.Invalid != nil || t.CreatedAt == "" {
			kept = append(kept, t)
			continue
		}
		created, err := parseTimestamp(t.CreatedAt)
		if err != nil {
			t.Invalid = fmt.Errorf("invalid created_at %q: %w", t.CreatedAt, err)
			kept = append(kept, t)
			continue
		}
		if created.Before(after) || !created.Before(before) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}
