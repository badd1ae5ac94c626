// Package sport binds the per-sport variants of zones, vocabulary and score
// folds behind one Rules value selected when a match is created.
package sport

import (
	"errors"
	"fmt"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/internal/domain/zone"
)

// ErrUnknownSport is returned for a sport without rules.
var ErrUnknownSport = errors.New("unknown sport")

// ActionDef describes one action of a sport's vocabulary.
type ActionDef struct {
	Action model.Action    `json:"action"`
	Type   model.PointType `json:"type"`
	Label  string          `json:"label"`
	Sigil  string          `json:"sigil"`
	// Value is the point value of a scored action; zero means 1.
	Value int `json:"value,omitempty"`
	// AutoResolve actions never take a court tap and resolve at the
	// sentinel coordinate.
	AutoResolve bool `json:"auto_resolve,omitempty"`
}

// Rules is the closed set of behaviors that vary by sport.
type Rules interface {
	Sport() model.Sport
	Zones() zone.Model
	Actions() []ActionDef
	// Score returns the period tally used for display and set winners.
	Score(points []model.Point, meta model.Metadata) model.Score
	// GameState returns the game-set view for sports that have one.
	GameState(points []model.Point, meta model.Metadata) (scoring.GameState, bool)
	PeriodLabel() string
	// Spatial reports whether a point belongs on heatmaps and zone stats.
	Spatial(p model.Point) bool
}

// For returns the rules of sport.
func For(s model.Sport) (Rules, error) {
	switch s {
	case model.SportVolleyball:
		return volleyball, nil
	case model.SportBasketball:
		return basketball, nil
	case model.SportTennis:
		return tennis, nil
	case model.SportPadel:
		return padel, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSport, s)
	}
}

// Lookup returns the definition of action a in r's vocabulary.
func Lookup(r Rules, a model.Action) (ActionDef, bool) {
	for _, d := range r.Actions() {
		if d.Action == a {
			return d, true
		}
	}
	return ActionDef{}, false
}

// AutoResolve reports whether a bypasses the court tap.
func AutoResolve(r Rules, a model.Action) bool {
	d, ok := Lookup(r, a)
	return ok && d.AutoResolve
}

// PointValue returns the value of a scored action, defaulting to 1.
func PointValue(r Rules, a model.Action) int {
	if d, ok := Lookup(r, a); ok && d.Value > 0 {
		return d.Value
	}
	return 1
}

// Known reports whether the action belongs to the vocabulary with the given
// type.
func Known(r Rules, a model.Action, t model.PointType) bool {
	d, ok := Lookup(r, a)
	return ok && d.Type == t
}

type rules struct {
	sport   model.Sport
	zones   zone.Model
	actions []ActionDef
	period  string
	scorer  scoring.ScorerFunc
	games   bool
}

func (r *rules) Sport() model.Sport   { return r.sport }
func (r *rules) Zones() zone.Model    { return r.zones }
func (r *rules) Actions() []ActionDef { return r.actions }
func (r *rules) PeriodLabel() string  { return r.period }

func (r *rules) Score(points []model.Point, meta model.Metadata) model.Score {
	if r.games {
		st := scoring.ComputeGameState(points, scoring.ConfigFrom(meta), initialServer(meta))
		return st.Games
	}
	return r.scorer(points)
}

func (r *rules) GameState(points []model.Point, meta model.Metadata) (scoring.GameState, bool) {
	if !r.games {
		return scoring.GameState{}, false
	}
	return scoring.ComputeGameState(points, scoring.ConfigFrom(meta), initialServer(meta)), true
}

// Spatial excludes sentinel coordinates and serve faults everywhere, and
// fault points altogether for racket sports where the tap marks the error
// rather than a shot.
func (r *rules) Spatial(p model.Point) bool {
	if !p.HasPosition() {
		return false
	}
	switch p.Action {
	case model.ActionServiceMiss, model.ActionDoubleFault, model.ActionPadelDoubleFault:
		return false
	}
	if r.games && p.Type == model.TypeFault {
		return false
	}
	return true
}

func initialServer(meta model.Metadata) model.Team {
	if meta.InitialServer.Valid() {
		return meta.InitialServer
	}
	return model.TeamBlue
}
