package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `[
	{
		"task_id": "task-1",
		"status": "completed",
		"created_at": "2023-05-02T10:00:00.000Z",
		"params": {"attachment": "images/one.png"},
		"response": {
			"annotations": [
				{
					"uuid": "a1",
					"label": "policy_sign",
					"attributes": {"occlusion": "0%", "truncation": "0%", "background_color": "white"},
					"left": 10, "top": 20, "width": 30, "height": 40
				},
				{
					"uuid": "a2",
					"label": "policy_sign",
					"attributes": {"occlusion": "0%", "truncation": "0%", "background_color": "white"},
					"left": 5, "top": null
				}
			]
		}
	},
	{
		"task_id": "task-2",
		"status": "pending",
		"created_at": "2023-07-01T00:00:00Z",
		"params": {"attachment": "https://example.com/two.jpg"}
	},
	{
		"task_id": "task-3",
		"status": "completed",
		"params": {"attachment": "three.png"},
		"response": {"annotations": []}
	}
]`

func TestParseExport(t *testing.T) {
	tasks, err := ParseExport([]byte(sampleExport))
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	first := tasks[0]
	assert.Equal(t, "task-1", first.TaskID)
	assert.Equal(t, "completed", first.Status)
	assert.Equal(t, "images/one.png", first.Params.Attachment)

	records, ok := first.Records()
	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Equal(t, "a1", records[0].UUID)
	assert.Equal(t, "white", records[0].Attributes.BackgroundColor)
	require.NotNil(t, records[0].Width)
	assert.Equal(t, 30.0, *records[0].Width)

	// Null and absent box fields both decode as missing
	assert.NotNil(t, records[1].Left)
	assert.Nil(t, records[1].Top)
	assert.Nil(t, records[1].Width)
}

func TestTaskRecord_Records(t *testing.T) {
	tasks, err := ParseExport([]byte(sampleExport))
	require.NoError(t, err)

	_, ok := tasks[1].Records()
	assert.False(t, ok, "task without a response has no records")

	records, ok := tasks[2].Records()
	assert.True(t, ok, "an empty annotation list is still a list")
	assert.Empty(t, records)
}

func TestParseExport_InvalidTaskDoesNotAbort(t *testing.T) {
	data := `[
		{"task_id": "good", "status": "completed",
		 "response": {"annotations": [{"uuid": "a", "left": 1, "top": 2, "width": 3, "height": 4}]}},
		{"task_id": "bad", "status": "completed",
		 "response": {"annotations": [{"uuid": "b", "left": 1, "top": 2, "width": "10", "height": 4}]}}
	]`

	tasks, err := ParseExport([]byte(data))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "good", tasks[0].TaskID)
	assert.NoError(t, tasks[0].Invalid)
	records, ok := tasks[0].Records()
	require.True(t, ok)
	assert.Len(t, records, 1)

	assert.Equal(t, "bad", tasks[1].TaskID)
	require.Error(t, tasks[1].Invalid)
	var schemaErr *SchemaError
	require.True(t, errors.As(tasks[1].Invalid, &schemaErr))
	assert.Equal(t, 1, schemaErr.Index)
	require.Len(t, schemaErr.Errors, 1)
	assert.Contains(t, schemaErr.Errors[0].Field, "width")
	assert.Contains(t, tasks[1].Invalid.Error(), "task 1 does not match schema")
}

func TestParseExport_SchemaViolation(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		wantID string
	}{
		{"string box field", `[{"task_id": "x", "response": {"annotations": [{"left": "10"}]}}]`, "x"},
		{"attributes not an object", `[{"task_id": "y", "response": {"annotations": [{"attributes": "white"}]}}]`, "y"},
		{"numeric task id", `[{"task_id": 7}]`, ""},
		{"annotations object", `[{"response": {"annotations": {}}}]`, ""},
		{"task not an object", `[42]`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := ParseExport([]byte(tt.data))
			require.NoError(t, err)
			require.Len(t, tasks, 1)

			assert.Equal(t, tt.wantID, tasks[0].TaskID)
			var schemaErr *SchemaError
			require.True(t, errors.As(tasks[0].Invalid, &schemaErr))
			assert.NotEmpty(t, schemaErr.Errors)
		})
	}
}

func TestParseExport_NotAnArray(t *testing.T) {
	for _, data := range []string{`{"task_id": "x"}`, `[{`, `"tasks"`} {
		_, err := ParseExport([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestLoadExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0644))

	tasks, err := LoadExport(path)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	_, err = LoadExport(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	tasks := []TaskRecord{
		{TaskID: "before", CreatedAt: "2023-04-30T23:59:59Z"},
		{TaskID: "start", CreatedAt: "2023-05-01T00:00:00Z"},
		{TaskID: "inside", CreatedAt: "2023-05-15T12:00:00.123Z"},
		{TaskID: "end", CreatedAt: "2023-06-01T00:00:00Z"},
		{TaskID: "date-only", CreatedAt: "2023-05-20"},
		{TaskID: "undated"},
		{TaskID: "garbage", CreatedAt: "yesterday"},
		{TaskID: "broken", Invalid: errors.New("bad record")},
	}

	after := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	kept := Filter(tasks, after, before)

	var ids []string
	for _, task := range kept {
		ids = append(ids, task.TaskID)
	}
	assert.Equal(t, []string{"start", "inside", "date-only", "undated", "garbage", "broken"}, ids)

	// Unparseable timestamps are marked, not dropped
	assert.NoError(t, kept[0].Invalid)
	require.Error(t, kept[4].Invalid)
	assert.Contains(t, kept[4].Invalid.Error(), `invalid created_at "yesterday"`)
	assert.NoError(t, tasks[6].Invalid, "input slice is not modified")
}
