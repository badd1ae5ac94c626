// Package model contains domain models passed between layers.
package model

import "time"

// Team identifies one of the two sides of a match.
type Team string

const (
	TeamBlue Team = "blue"
	TeamRed  Team = "red"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// Valid reports whether t is blue or red.
func (t Team) Valid() bool { return t == TeamBlue || t == TeamRed }

// PointType classifies how a point or rally action affects the score.
type PointType string

const (
	// TypeScored is a point won by the team's own action.
	TypeScored PointType = "scored"
	// TypeFault is a point won because the opponent erred. The point's
	// team is the benefiting team.
	TypeFault PointType = "fault"
	// TypeNeutral never changes the score.
	TypeNeutral PointType = "neutral"
)

// Valid reports whether p is one of the known point types.
func (p PointType) Valid() bool {
	return p == TypeScored || p == TypeFault || p == TypeNeutral
}

// Action is a sport-specific action tag such as "attack" or "tennis_ace".
type Action string

// Sentinel coordinate used for actions that carry no court position.
const (
	NoCourtX = -1.0
	NoCourtY = -1.0
)

// Point is an immutable entry of the match log.
type Point struct {
	ID           string        `json:"id"`
	Team         Team          `json:"team"`
	Type         PointType     `json:"type"`
	Action       Action        `json:"action"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Timestamp    time.Time     `json:"timestamp"`
	PlayerID     string        `json:"player_id,omitempty"`
	RallyActions []RallyAction `json:"rally_actions,omitempty"`
	PointValue   int           `json:"point_value,omitempty"`
	Label        string        `json:"label,omitempty"`
	Sigil        string        `json:"sigil,omitempty"`
	ShowOnCourt  *bool         `json:"show_on_court,omitempty"`
}

// HasPosition reports whether the point carries a real court coordinate.
func (p Point) HasPosition() bool {
	return p.X != NoCourtX || p.Y != NoCourtY
}

// Counts reports whether the point changes the score.
func (p Point) Counts() bool { return p.Type != TypeNeutral }

// RallyAction is one sub-action of a point recorded in performance mode.
type RallyAction struct {
	ID        string    `json:"id"`
	Team      Team      `json:"team"`
	Type      PointType `json:"type"`
	Action    Action    `json:"action"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  string    `json:"player_id,omitempty"`
	Label     string    `json:"label,omitempty"`
	StartX    *float64  `json:"start_x,omitempty"`
	StartY    *float64  `json:"start_y,omitempty"`
	EndX      *float64  `json:"end_x,omitempty"`
	EndY      *float64  `json:"end_y,omitempty"`
}

// HasDirection reports whether both direction endpoints were recorded.
func (r RallyAction) HasDirection() bool {
	return r.StartX != nil && r.StartY != nil && r.EndX != nil && r.EndY != nil
}

// ActionMeta carries optional metadata attached to a selection, typically
// for operator-defined custom actions.
type ActionMeta struct {
	Label       string `json:"label,omitempty"`
	Sigil       string `json:"sigil,omitempty"`
	PointValue  int    `json:"point_value,omitempty"`
	ShowOnCourt *bool  `json:"show_on_court,omitempty"`
	// AssignToPlayer set to false suppresses the player attribution prompt.
	AssignToPlayer *bool `json:"assign_to_player,omitempty"`
	// PlayerID pre-attributes the action to a roster player.
	PlayerID string `json:"player_id,omitempty"`
}

// Score is a pair of team tallies.
type Score struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

// Of returns the tally of the given team.
func (s Score) Of(t Team) int {
	if t == TeamBlue {
		return s.Blue
	}
	return s.Red
}

// Leader returns the team ahead, ties going to blue.
func (s Score) Leader() Team {
	if s.Blue >= s.Red {
		return TeamBlue
	}
	return TeamRed
}
