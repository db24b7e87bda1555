package reconcile

import (
	"errors"

	"kanban-cli/internal/model"
)

var ErrDragInProgress = errors.New("a drag gesture is already active")

type gestureState int

const (
	stateIdle gestureState = iota
	stateDragging
)

// Gesture tracks one drag at a time: Idle -> Dragging on pick-up, back to
// Idle on drop or cancel. A new pick-up is only possible from Idle.
type Gesture struct {
	state  gestureState
	active string
}

// Begin starts a drag for the given identifier.
func (g *Gesture) Begin(activeID string) error {
	if g.state != stateIdle {
		return ErrDragInProgress
	}
	if _, ok := ParseRef(activeID); !ok {
		return errors.New("unrecognized drag identifier: " + activeID)
	}
	g.state = stateDragging
	g.active = activeID
	return nil
}

// Active returns the identifier being dragged, if any.
func (g *Gesture) Active() (string, bool) {
	return g.active, g.state == stateDragging
}

// Drop ends the gesture and reconciles it against the board snapshot.
// Dropping with no target (overID == "") resolves to no edit.
func (g *Gesture) Drop(overID string, board *model.Board) Edit {
	if g.state != stateDragging {
		return Edit{}
	}
	active := g.active
	g.state = stateIdle
	g.active = ""
	return Reconcile(active, overID, board)
}

// Cancel abandons the gesture without reconciling.
func (g *Gesture) Cancel() {
	g.state = stateIdle
	g.active = ""
}
