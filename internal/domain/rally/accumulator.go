// Package rally turns a sequence of operator taps into rally sub-actions and
// concluded points.
package rally

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/courtside/internal/domain/model"
)

// State is the observable state of an Accumulator.
type State int

const (
	// Idle has no selection and no rally in progress.
	Idle State = iota
	// ActionSelected waits for the tap of the selected action.
	ActionSelected
	// RallyBuilding holds neutral sub-actions and waits for a selection.
	RallyBuilding
	// DirectionPending holds an origin tap and waits for the endpoint.
	DirectionPending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ActionSelected:
		return "action_selected"
	case RallyBuilding:
		return "rally_building"
	case DirectionPending:
		return "direction_pending"
	default:
		return "unknown"
	}
}

// Selection is the armed action waiting for a tap.
type Selection struct {
	Team   model.Team
	Type   model.PointType
	Action model.Action
	Meta   model.ActionMeta
}

// Kind classifies the result of a tap.
type Kind int

const (
	// Ignored taps had nothing to act on.
	Ignored Kind = iota
	// Extended appended a neutral sub-action to the rally.
	Extended
	// DirectionArmed stored an origin and waits for the endpoint tap.
	DirectionArmed
	// Concluded emitted a point.
	Concluded
)

// Outcome is the result of Record or Resolve.
type Outcome struct {
	Kind   Kind
	Point  model.Point
	Action model.RallyAction
}

type origin struct {
	x, y float64
	sel  Selection
}

// Accumulator is the tap state machine of one match. It is not safe for
// concurrent use.
type Accumulator struct {
	performance bool
	direction   bool
	newID       func() string

	selection *Selection
	origin    *origin
	actions   []model.RallyAction
}

// New creates an accumulator.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{newID: uuid.NewString}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Configure switches performance and direction modes. Direction mode only
// applies in performance mode.
func (a *Accumulator) Configure(performance, direction bool) {
	a.performance = performance
	a.direction = performance && direction
}

// State reports the current state.
func (a *Accumulator) State() State {
	switch {
	case a.origin != nil:
		return DirectionPending
	case a.selection != nil:
		return ActionSelected
	case len(a.actions) > 0:
		return RallyBuilding
	default:
		return Idle
	}
}

// Select arms sel, replacing any previous selection or pending origin.
func (a *Accumulator) Select(sel Selection) {
	a.origin = nil
	a.selection = &sel
}

// Cancel clears the selection and any pending origin. The rally in progress
// is kept. It reports whether anything was cleared.
func (a *Accumulator) Cancel() bool {
	if a.selection == nil && a.origin == nil {
		return false
	}
	a.selection = nil
	a.origin = nil
	return true
}

// Selected returns the armed selection, including the one held by a pending
// origin.
func (a *Accumulator) Selected() (Selection, bool) {
	if a.origin != nil {
		return a.origin.sel, true
	}
	if a.selection != nil {
		return *a.selection, true
	}
	return Selection{}, false
}

// Record handles a validated court tap.
func (a *Accumulator) Record(x, y float64, ts time.Time) Outcome {
	if a.origin != nil {
		o := a.origin
		a.origin = nil
		act := a.action(o.sel, x, y, ts)
		sx, sy, ex, ey := o.x, o.y, x, y
		act.StartX, act.StartY, act.EndX, act.EndY = &sx, &sy, &ex, &ey
		return a.apply(o.sel, act)
	}
	if a.selection == nil {
		return Outcome{Kind: Ignored}
	}
	sel := *a.selection
	if a.direction {
		a.selection = nil
		a.origin = &origin{x: x, y: y, sel: sel}
		return Outcome{Kind: DirectionArmed}
	}
	return a.apply(sel, a.action(sel, x, y, ts))
}

// Resolve applies the armed selection at the sentinel coordinate, bypassing
// any direction handling.
func (a *Accumulator) Resolve(ts time.Time) Outcome {
	sel, ok := a.Selected()
	if !ok {
		return Outcome{Kind: Ignored}
	}
	a.origin = nil
	return a.apply(sel, a.action(sel, model.NoCourtX, model.NoCourtY, ts))
}

func (a *Accumulator) action(sel Selection, x, y float64, ts time.Time) model.RallyAction {
	return model.RallyAction{
		ID:        a.newID(),
		Team:      sel.Team,
		Type:      sel.Type,
		Action:    sel.Action,
		X:         x,
		Y:         y,
		Timestamp: ts,
		PlayerID:  sel.Meta.PlayerID,
		Label:     sel.Meta.Label,
	}
}

func (a *Accumulator) apply(sel Selection, act model.RallyAction) Outcome {
	if a.performance && sel.Type == model.TypeNeutral {
		a.actions = append(a.actions, act)
		a.selection = &sel
		return Outcome{Kind: Extended, Action: act}
	}

	p := model.Point{
		ID:          a.newID(),
		Team:        sel.Team,
		Type:        sel.Type,
		Action:      sel.Action,
		X:           act.X,
		Y:           act.Y,
		Timestamp:   act.Timestamp,
		PlayerID:    sel.Meta.PlayerID,
		PointValue:  sel.Meta.PointValue,
		Label:       sel.Meta.Label,
		Sigil:       sel.Meta.Sigil,
		ShowOnCourt: sel.Meta.ShowOnCourt,
	}
	if a.performance {
		p.RallyActions = append(a.actions, act)
	}
	a.actions = nil
	a.selection = nil
	return Outcome{Kind: Concluded, Point: p, Action: act}
}

// InProgress returns a copy of the uncommitted sub-actions.
func (a *Accumulator) InProgress() []model.RallyAction {
	if len(a.actions) == 0 {
		return nil
	}
	out := make([]model.RallyAction, len(a.actions))
	copy(out, a.actions)
	return out
}

// HasPendingOrigin reports whether an origin tap waits for its endpoint.
func (a *Accumulator) HasPendingOrigin() bool { return a.origin != nil }

// DropOrigin discards a pending origin tap, keeping its selection armed.
func (a *Accumulator) DropOrigin() bool {
	if a.origin == nil {
		return false
	}
	sel := a.origin.sel
	a.origin = nil
	a.selection = &sel
	return true
}

// PopAction removes the most recent uncommitted sub-action.
func (a *Accumulator) PopAction() bool {
	if len(a.actions) == 0 {
		return false
	}
	a.actions = a.actions[:len(a.actions)-1]
	if len(a.actions) == 0 {
		a.actions = nil
	}
	return true
}

// Reopen puts all but the concluding sub-action of p back in progress. The
// selection is cleared so the operator picks the new conclusion.
func (a *Accumulator) Reopen(p model.Point) {
	a.selection = nil
	a.origin = nil
	a.actions = nil
	if n := len(p.RallyActions); n > 1 {
		a.actions = make([]model.RallyAction, n-1)
		copy(a.actions, p.RallyActions[:n-1])
	}
}

// Restore replaces the rally in progress, as when loading a snapshot.
func (a *Accumulator) Restore(actions []model.RallyAction) {
	a.selection = nil
	a.origin = nil
	a.actions = nil
	if len(actions) > 0 {
		a.actions = make([]model.RallyAction, len(actions))
		copy(a.actions, actions)
	}
}

// Discard drops the selection and the rally in progress.
func (a *Accumulator) Discard() {
	a.selection = nil
	a.origin = nil
	a.actions = nil
}
