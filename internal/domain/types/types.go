// Package types contains read models shared between the application layer
// and its adapters.
package types

import (
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/internal/domain/stats"
	"github.com/okian/courtside/internal/domain/zone"
)

// SelectionView is the armed action of a match.
type SelectionView struct {
	Team   model.Team       `json:"team"`
	Type   model.PointType  `json:"type"`
	Action model.Action     `json:"action"`
	Meta   model.ActionMeta `json:"meta"`
	// AwaitingEndpoint is set when an origin tap waits for its endpoint.
	AwaitingEndpoint bool `json:"awaiting_endpoint,omitempty"`
}

// SetSummary describes a completed period without its points.
type SetSummary struct {
	Number   int         `json:"number"`
	Score    model.Score `json:"score"`
	Winner   model.Team  `json:"winner"`
	Duration int64       `json:"duration_seconds"`
	Points   int         `json:"points"`
}

// MatchView is the full live state of a match as shown to operators.
type MatchView struct {
	ID                string               `json:"id"`
	Sport             model.Sport          `json:"sport"`
	TeamNames         model.TeamNames      `json:"team_names"`
	Metadata          model.Metadata       `json:"metadata"`
	PeriodLabel       string               `json:"period_label"`
	SetNumber         int                  `json:"set_number"`
	Score             model.Score          `json:"score"`
	SetsWon           model.Score          `json:"sets_won"`
	Game              *scoring.GameState   `json:"game,omitempty"`
	ServingTeam       model.Team           `json:"serving_team"`
	ServingSide       model.ServingSide    `json:"serving_side"`
	SidesSwapped      bool                 `json:"sides_swapped"`
	BlueSide          model.Side           `json:"blue_side"`
	RallyState        string               `json:"rally_state"`
	Selection         *SelectionView       `json:"selection,omitempty"`
	Rally             []model.RallyAction  `json:"rally,omitempty"`
	PendingAssignment *model.Point         `json:"pending_assignment,omitempty"`
	Points            []model.Point        `json:"points"`
	CompletedSets     []SetSummary         `json:"completed_sets"`
	Players           []model.Player       `json:"players"`
	ChronoSeconds     int64                `json:"chrono_seconds"`
	Finished          bool                 `json:"finished"`
	AwaitingNewSet    bool                 `json:"awaiting_new_set"`
	Version           uint64               `json:"version"`
	Highlights        []zone.Rect          `json:"highlights,omitempty"`
}

// ReplayView is the state of a period after its first Index points.
type ReplayView struct {
	SetNumber int                `json:"set_number"`
	Index     int                `json:"index"`
	Total     int                `json:"total"`
	Point     *model.Point       `json:"point,omitempty"`
	Score     model.Score        `json:"score"`
	Game      *scoring.GameState `json:"game,omitempty"`
}

// MatchSummary is a short listing entry.
type MatchSummary struct {
	ID        string          `json:"id"`
	Sport     model.Sport     `json:"sport"`
	TeamNames model.TeamNames `json:"team_names"`
	SetNumber int             `json:"set_number"`
	SetsWon   model.Score     `json:"sets_won"`
	Score     model.Score     `json:"score"`
	Finished  bool            `json:"finished"`
}

// StatsView aggregates team and player statistics. SetNumber 0 covers the
// whole match.
type StatsView struct {
	SetNumber int                 `json:"set_number"`
	Teams     stats.Summary       `json:"teams"`
	Players   []stats.PlayerStats `json:"players"`
}
