package transport

// LoginRequest carries the display name chosen at login.
type LoginRequest struct {
	Name string `json:"name"`
}

// CreateTaskRequest places a marker directly from percentage coordinates.
type CreateTaskRequest struct {
	Title     string                 `json:"title"`
	XPct      float64                `json:"x_pct"`
	YPct      float64                `json:"y_pct"`
	Checklist []ChecklistItemRequest `json:"checklist"`
}

type ChecklistItemRequest struct {
	Text string `json:"text"`
}

type PositionRequest struct {
	XPct float64 `json:"x_pct"`
	YPct float64 `json:"y_pct"`
}

type TitleRequest struct {
	Title string `json:"title"`
}

type ChecklistAddRequest struct {
	Text string `json:"text"`
}

type ChecklistStatusRequest struct {
	Status string `json:"status"`
}

// BoundsPayload is the rendered plan image rectangle in screen pixels, sent
// with pointer events so the server can translate pixels to percentages.
type BoundsPayload struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PointerEventRequest is one pointer transition on the plan image.
type PointerEventRequest struct {
	Kind         string        `json:"kind"` // press | move | release
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	TargetTaskID string        `json:"target_task_id"`
	Modifier     bool          `json:"modifier"`
	Bounds       BoundsPayload `json:"bounds"`
}

// SelectionRequest sets the selected task from the sidebar. An empty id
// clears the selection.
type SelectionRequest struct {
	TaskID string `json:"task_id"`
}
