// Package gesture disambiguates clicks from drags on the plan image. It is
// an explicit state machine (idle -> pressed -> dragging) instead of a
// mutable was-dragging flag: a release resolves to exactly one of Click or
// DragEnd, never both, and a release without a matching press is ignored.
package gesture

// State is the tracker's current interaction phase.
type State int

const (
	StateIdle State = iota
	StatePressed
	StateDragging
)

// OutcomeKind classifies what a pointer release resolved to.
type OutcomeKind int

const (
	// OutcomeNone means the release had no matching press, for example the
	// trailing click some UI layers emit right after a drag stops.
	OutcomeNone OutcomeKind = iota
	OutcomeClick
	OutcomeDragEnd
)

// Outcome is the resolved result of a pointer release.
type Outcome struct {
	Kind OutcomeKind
	X, Y float64
}

// DefaultThreshold is the movement, in pixels, past which a press becomes a
// drag. Jitter below it still counts as a click.
const DefaultThreshold = 3.0

// Tracker follows one pointer through a press/move/release cycle. It is not
// safe for concurrent use; callers hold one tracker per interactive session.
type Tracker struct {
	threshold      float64
	state          State
	pressX, pressY float64
}

// NewTracker builds a tracker. A non-positive threshold selects the default.
func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold}
}

// State returns the current phase.
func (t *Tracker) State() State {
	return t.state
}

// Press records the pointer going down.
func (t *Tracker) Press(x, y float64) {
	t.state = StatePressed
	t.pressX, t.pressY = x, y
}

// Move records pointer movement. The press escalates to a drag only once
// the movement exceeds the threshold; after that it stays a drag even if
// the pointer returns to the press point.
func (t *Tracker) Move(x, y float64) {
	if t.state != StatePressed {
		return
	}
	dx := x - t.pressX
	dy := y - t.pressY
	if dx*dx+dy*dy > t.threshold*t.threshold {
		t.state = StateDragging
	}
}

// Release resolves the cycle and returns the tracker to idle.
func (t *Tracker) Release(x, y float64) Outcome {
	state := t.state
	t.state = StateIdle
	switch state {
	case StatePressed:
		return Outcome{Kind: OutcomeClick, X: x, Y: y}
	case StateDragging:
		return Outcome{Kind: OutcomeDragEnd, X: x, Y: y}
	default:
		return Outcome{Kind: OutcomeNone}
	}
}

// Reset abandons any in-flight interaction.
func (t *Tracker) Reset() {
	t.state = StateIdle
}
