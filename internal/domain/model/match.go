package model

import "time"

// Sport selects the rule set of a match.
type Sport string

const (
	SportVolleyball Sport = "volleyball"
	SportTennis     Sport = "tennis"
	SportPadel      Sport = "padel"
	SportBasketball Sport = "basketball"
)

// Sports lists every supported sport.
func Sports() []Sport {
	return []Sport{SportVolleyball, SportTennis, SportPadel, SportBasketball}
}

// Side is a physical half of the court as drawn on screen.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// ServingSide is the half of the server's court the serve is played from.
type ServingSide string

const (
	ServingDeuce ServingSide = "deuce"
	ServingAd    ServingSide = "ad"
)

// SetData is a completed period of play.
type SetData struct {
	ID       string  `json:"id"`
	Number   int     `json:"number"`
	Points   []Point `json:"points"`
	Score    Score   `json:"score"`
	Winner   Team    `json:"winner"`
	Duration int64   `json:"duration_seconds"`
}

// Player is a roster entry of the home (blue) team.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number,omitempty"`
}

// TeamNames holds the display names of both teams.
type TeamNames struct {
	Blue string `json:"blue"`
	Red  string `json:"red"`
}

// Metadata configures per-match behavior.
type Metadata struct {
	HasCourt          bool `json:"has_court"`
	AdvantageRule     bool `json:"advantage_rule"`
	TiebreakEnabled   bool `json:"tiebreak_enabled"`
	PerformanceMode   bool `json:"performance_mode"`
	DirectionTracking bool `json:"direction_tracking"`
	InitialServer     Team `json:"initial_server"`
	AutoEndSet        bool `json:"auto_end_set"`
	AutoChangeover    bool `json:"auto_changeover"`
}

// DefaultMetadata returns the metadata used when a match is created without
// explicit settings.
func DefaultMetadata() Metadata {
	return Metadata{
		HasCourt:        true,
		AdvantageRule:   true,
		TiebreakEnabled: true,
		InitialServer:   TeamBlue,
	}
}

// DirectionMode reports whether taps are recorded as origin/endpoint pairs.
func (m Metadata) DirectionMode() bool {
	return m.PerformanceMode && m.DirectionTracking
}

// Snapshot is the serializable state of a match. Restoring a snapshot must
// reproduce scoring and undo behavior exactly.
type Snapshot struct {
	ID               string        `json:"id"`
	Sport            Sport         `json:"sport"`
	TeamNames        TeamNames     `json:"team_names"`
	CompletedSets    []SetData     `json:"completed_sets"`
	CurrentSetNumber int           `json:"current_set_number"`
	Points           []Point       `json:"points"`
	Rally            []RallyAction `json:"rally,omitempty"`
	SidesSwapped     bool          `json:"sides_swapped"`
	ServingSide      ServingSide   `json:"serving_side,omitempty"`
	ChronoSeconds    int64         `json:"chrono_seconds"`
	Players          []Player      `json:"players"`
	Metadata         Metadata      `json:"metadata"`
	Finished         bool          `json:"finished"`
	AwaitingNewSet   bool          `json:"awaiting_new_set"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Version          uint64        `json:"version"`
}
