package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValidate(t *testing.T) {
	valid := Task{ID: "t1", UserID: "alice", XPct: 50, YPct: 50}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing id", func(t *Task) { t.ID = "" }},
		{"missing user id", func(t *Task) { t.UserID = "" }},
		{"x below range", func(t *Task) { t.XPct = -1 }},
		{"x above range", func(t *Task) { t.XPct = 100.5 }},
		{"y above range", func(t *Task) { t.YPct = 101 }},
		{"item without id", func(t *Task) {
			t.Checklist = []ChecklistItem{{Text: "x", Status: StatusDone}}
		}},
		{"duplicate item ids", func(t *Task) {
			t.Checklist = []ChecklistItem{
				{ID: "i1", Status: StatusDone},
				{ID: "i1", Status: StatusDone},
			}
		}},
		{"unknown status", func(t *Task) {
			t.Checklist = []ChecklistItem{{ID: "i1", Status: "paused"}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := valid
			tc.mutate(&task)
			assert.Error(t, task.Validate())
		})
	}
}

func TestTouchIsStrictlyMonotonic(t *testing.T) {
	task := Task{}

	task.Touch(1000)
	assert.Equal(t, int64(1000), task.UpdatedAt)

	// A stalled clock still advances the stored value.
	task.Touch(1000)
	assert.Equal(t, int64(1001), task.UpdatedAt)

	task.Touch(500)
	assert.Equal(t, int64(1002), task.UpdatedAt)

	task.Touch(5000)
	assert.Equal(t, int64(5000), task.UpdatedAt)
}

func TestItemLookup(t *testing.T) {
	task := Task{Checklist: []ChecklistItem{
		{ID: "i1", Text: "a", Status: StatusNotStarted},
		{ID: "i2", Text: "b", Status: StatusDone},
	}}

	item := task.Item("i2")
	require.NotNil(t, item)
	assert.Equal(t, "b", item.Text)

	// The pointer aliases the slice entry, so status edits stick.
	item.Status = StatusBlocked
	assert.Equal(t, StatusBlocked, task.Checklist[1].Status)

	assert.Nil(t, task.Item("missing"))
}

func TestChecklistStatusValid(t *testing.T) {
	for _, s := range []ChecklistStatus{StatusNotStarted, StatusInProgress, StatusBlocked, StatusFinalCheck, StatusDone} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, ChecklistStatus("paused").Valid())
	assert.False(t, ChecklistStatus("").Valid())
}

func TestTaskJSONFieldNames(t *testing.T) {
	task := Task{ID: "t1", UserID: "alice", Title: "x", XPct: 1, YPct: 2, UpdatedAt: 3}
	raw, err := json.Marshal(&task)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	// Persisted document format: camelCase keys.
	for _, key := range []string{"id", "userId", "title", "xPct", "yPct", "checklist", "updatedAt"} {
		assert.Contains(t, doc, key)
	}
}
