package domain

// ChecklistStatus enumerates the workflow states of a checklist item.
// Transitions are unrestricted: any status may follow any other.
type ChecklistStatus string

const (
	StatusNotStarted ChecklistStatus = "not-started"
	StatusInProgress ChecklistStatus = "in-progress"
	StatusBlocked    ChecklistStatus = "blocked"
	StatusFinalCheck ChecklistStatus = "final-check"
	StatusDone       ChecklistStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s ChecklistStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusFinalCheck, StatusDone:
		return true
	}
	return false
}

// ChecklistItem is a single entry embedded in a task's checklist. Items keep
// their insertion order, are never deleted individually, and their text is
// immutable after creation.
type ChecklistItem struct {
	ID     string          `json:"id"`
	Text   string          `json:"text"`
	Status ChecklistStatus `json:"status"`
}

// DefaultTitle is assigned to tasks created without an explicit title.
const DefaultTitle = "New task"

// maxKeyLength caps primary keys and partition keys in the persisted schema.
const maxKeyLength = 100

// Task is a positional marker anchored on the plan image. XPct and YPct are
// percentages of the rendered image bounds, which keeps markers in place
// across window resizes. The JSON field names are the persisted document
// format and must not change.
type Task struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	XPct      float64         `json:"xPct"`
	YPct      float64         `json:"yPct"`
	Checklist []ChecklistItem `json:"checklist"`
	UpdatedAt int64           `json:"updatedAt"` // epoch milliseconds
}

// Validate enforces the task document schema. Writes that fail validation
// must be rejected, never coerced.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.ID == "" || len(t.ID) > maxKeyLength {
		return NewError(ErrCodeInvalid, "task id missing or too long")
	}
	if t.UserID == "" || len(t.UserID) > maxKeyLength {
		return NewError(ErrCodeInvalid, "task userId missing or too long")
	}
	if t.XPct < 0 || t.XPct > 100 {
		return NewError(ErrCodeInvalid, "xPct out of range [0,100]")
	}
	if t.YPct < 0 || t.YPct > 100 {
		return NewError(ErrCodeInvalid, "yPct out of range [0,100]")
	}
	seen := make(map[string]struct{}, len(t.Checklist))
	for _, item := range t.Checklist {
		if item.ID == "" {
			return NewError(ErrCodeInvalid, "checklist item id missing")
		}
		if _, dup := seen[item.ID]; dup {
			return NewError(ErrCodeInvalid, "duplicate checklist item id")
		}
		seen[item.ID] = struct{}{}
		if !item.Status.Valid() {
			return NewError(ErrCodeInvalid, "unknown checklist status")
		}
	}
	return nil
}

// Item returns a pointer to the checklist item with the given id, or nil.
func (t *Task) Item(itemID string) *ChecklistItem {
	if t == nil {
		return nil
	}
	for i := range t.Checklist {
		if t.Checklist[i].ID == itemID {
			return &t.Checklist[i]
		}
	}
	return nil
}

// Touch refreshes UpdatedAt. The stored value is strictly monotonic per task
// even when the wall clock has not advanced past the previous mutation.
func (t *Task) Touch(nowMillis int64) {
	if t == nil {
		return
	}
	if nowMillis <= t.UpdatedAt {
		nowMillis = t.UpdatedAt + 1
	}
	t.UpdatedAt = nowMillis
}
