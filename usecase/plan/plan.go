// Package plan turns raw pointer events on the plan image into task
// operations. A per-session gesture tracker disambiguates clicks from drags:
// a click on empty plan places a marker, a click on a marker toggles its
// selection, a drag end repositions the marker without touching selection.
// Selection is exclusive, shared between markers and the sidebar.
package plan

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/pkg/geometry"
	"github.com/planpin/backend/pkg/gesture"
	taskUC "github.com/planpin/backend/usecase/task"
)

// Pointer event kinds accepted by HandlePointer.
const (
	EventPress   = "press"
	EventMove    = "move"
	EventRelease = "release"
)

// PointerEvent is one step of a press/move/release cycle on the plan image.
type PointerEvent struct {
	Kind         string
	X, Y         float64
	TargetTaskID string // marker under the pointer at press time, if any
	Modifier     bool   // held modifier key, reserved for a contextual action
	Bounds       geometry.Bounds
}

// ActionKind classifies what a pointer event resolved to.
type ActionKind string

const (
	ActionNone            ActionKind = "none"
	ActionTaskCreated     ActionKind = "task_created"
	ActionSelectionChange ActionKind = "selection_changed"
	ActionPositionUpdated ActionKind = "position_updated"
)

// Action is the resolved outcome of a pointer event.
type Action struct {
	Kind     ActionKind   `json:"kind"`
	Task     *domain.Task `json:"task,omitempty"`
	Selected string       `json:"selected,omitempty"`
}

type sessionState struct {
	tracker  *gesture.Tracker
	selected string
	target   string // marker targeted by the in-flight gesture
}

type UseCase struct {
	tasks     *taskUC.UseCase
	threshold float64
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

func New(tasks *taskUC.UseCase, dragThreshold float64, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		threshold: dragThreshold,
		logger:    logger,
		sessions:  make(map[string]*sessionState),
	}
}

// defaultChecklist seeds a freshly placed marker.
func defaultChecklist() []domain.ChecklistItem {
	return []domain.ChecklistItem{
		{ID: uuid.NewString(), Text: "Measure area", Status: domain.StatusNotStarted},
		{ID: uuid.NewString(), Text: "Gather materials", Status: domain.StatusNotStarted},
	}
}

func (uc *UseCase) state(sessionID string) *sessionState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	st, ok := uc.sessions[sessionID]
	if !ok {
		st = &sessionState{tracker: gesture.NewTracker(uc.threshold)}
		uc.sessions[sessionID] = st
	}
	return st
}

// HandlePointer feeds one pointer event into the session's gesture tracker
// and executes whatever the release resolves to. Press and move never
// produce an action.
func (uc *UseCase) HandlePointer(ctx context.Context, sessionID, userID string, ev PointerEvent) (*Action, error) {
	st := uc.state(sessionID)

	switch ev.Kind {
	case EventPress:
		st.tracker.Press(ev.X, ev.Y)
		st.target = ev.TargetTaskID
		return &Action{Kind: ActionNone}, nil

	case EventMove:
		st.tracker.Move(ev.X, ev.Y)
		return &Action{Kind: ActionNone}, nil

	case EventRelease:
		outcome := st.tracker.Release(ev.X, ev.Y)
		target := st.target
		st.target = ""

		switch outcome.Kind {
		case gesture.OutcomeDragEnd:
			return uc.dragEnd(ctx, userID, target, outcome, ev.Bounds)
		case gesture.OutcomeClick:
			return uc.click(ctx, sessionID, userID, target, outcome, ev)
		default:
			// A release without a matching press: the trailing click some
			// UI layers emit right after a drag stops. Never place a
			// marker for it.
			return &Action{Kind: ActionNone}, nil
		}

	default:
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown pointer event kind")
	}
}

func (uc *UseCase) dragEnd(ctx context.Context, userID, target string, outcome gesture.Outcome, bounds geometry.Bounds) (*Action, error) {
	if target == "" {
		// Drag on the bare plan pans the view; nothing to persist.
		return &Action{Kind: ActionNone}, nil
	}
	xPct, yPct, err := geometry.ToPercent(outcome.X, outcome.Y, bounds)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid plan bounds", err)
	}
	updated, err := uc.tasks.UpdatePosition(ctx, userID, target, geometry.Clamp(xPct), geometry.Clamp(yPct))
	if err != nil {
		return nil, err
	}
	// A genuine drag never toggles the marker's selection.
	return &Action{Kind: ActionPositionUpdated, Task: updated}, nil
}

func (uc *UseCase) click(ctx context.Context, sessionID, userID, target string, outcome gesture.Outcome, ev PointerEvent) (*Action, error) {
	if target != "" {
		selected := uc.toggle(sessionID, target)
		return &Action{Kind: ActionSelectionChange, Selected: selected}, nil
	}

	// Modifier-held clicks are reserved for a future contextual action and
	// must not place a marker.
	if ev.Modifier {
		return &Action{Kind: ActionNone}, nil
	}

	xPct, yPct, err := geometry.ToPercent(outcome.X, outcome.Y, ev.Bounds)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid plan bounds", err)
	}
	created, err := uc.tasks.Create(ctx, &domain.Task{
		UserID:    userID,
		Title:     domain.DefaultTitle,
		XPct:      geometry.Clamp(xPct),
		YPct:      geometry.Clamp(yPct),
		Checklist: defaultChecklist(),
	})
	if err != nil {
		return nil, err
	}
	return &Action{Kind: ActionTaskCreated, Task: created}, nil
}

// toggle flips the selection for taskID. Selecting one marker deselects any
// other, so at most one popover is ever open.
func (uc *UseCase) toggle(sessionID, taskID string) string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	st, ok := uc.sessions[sessionID]
	if !ok {
		return ""
	}
	if st.selected == taskID {
		st.selected = ""
	} else {
		st.selected = taskID
	}
	return st.selected
}

// Select sets the selection directly, the sidebar path. An empty id clears
// it. Marker and sidebar share this state, so both views stay in sync.
func (uc *UseCase) Select(sessionID, taskID string) string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	st, ok := uc.sessions[sessionID]
	if !ok {
		st = &sessionState{tracker: gesture.NewTracker(uc.threshold)}
		uc.sessions[sessionID] = st
	}
	st.selected = taskID
	return st.selected
}

// Selection returns the currently selected task id, or empty.
func (uc *UseCase) Selection(sessionID string) string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if st, ok := uc.sessions[sessionID]; ok {
		return st.selected
	}
	return ""
}

// DeleteTask removes the task and clears the selection when it pointed at
// the deleted task.
func (uc *UseCase) DeleteTask(ctx context.Context, sessionID, userID, taskID string) error {
	if err := uc.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if st, ok := uc.sessions[sessionID]; ok && st.selected == taskID {
		st.selected = ""
	}
	return nil
}

// EndSession drops the per-session interaction state after logout.
func (uc *UseCase) EndSession(sessionID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.sessions, sessionID)
}
