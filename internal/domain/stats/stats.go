// Package stats derives team and player statistics from point logs. All
// functions are read-only projections.
package stats

import (
	"sort"

	"github.com/okian/courtside/internal/domain/model"
)

// TeamStats aggregates the points of one team.
type TeamStats struct {
	Team   model.Team `json:"team"`
	Points int        `json:"points"`
	Scored int        `json:"scored"`
	// FaultWins counts points won through an opponent error.
	FaultWins int `json:"fault_wins"`
	// FaultsCommitted counts points lost through the team's own errors.
	FaultsCommitted int                  `json:"faults_committed"`
	ScoredBy        map[model.Action]int `json:"scored_by"`
	FaultsBy        map[model.Action]int `json:"faults_by"`
}

// Summary holds both teams' stats.
type Summary struct {
	Blue TeamStats `json:"blue"`
	Red  TeamStats `json:"red"`
}

// Teams aggregates points by team. A fault point credits its team and is
// booked as a fault committed by the opponent.
func Teams(points []model.Point) Summary {
	s := Summary{Blue: newTeam(model.TeamBlue), Red: newTeam(model.TeamRed)}
	for _, p := range points {
		if !p.Counts() {
			continue
		}
		own, opp := &s.Blue, &s.Red
		if p.Team == model.TeamRed {
			own, opp = opp, own
		}
		own.Points++
		switch p.Type {
		case model.TypeScored:
			own.Scored++
			own.ScoredBy[p.Action]++
		case model.TypeFault:
			own.FaultWins++
			opp.FaultsCommitted++
			opp.FaultsBy[p.Action]++
		}
	}
	return s
}

func newTeam(t model.Team) TeamStats {
	return TeamStats{Team: t, ScoredBy: map[model.Action]int{}, FaultsBy: map[model.Action]int{}}
}

// PlayerStats aggregates the points attributed to one home player.
type PlayerStats struct {
	Player model.Player `json:"player"`
	// Ghost is set for ids no longer on the roster.
	Ghost     bool                 `json:"ghost,omitempty"`
	Scored    int                  `json:"scored"`
	FaultWins int                  `json:"fault_wins"`
	Faults    int                  `json:"faults"`
	Neutral   int                  `json:"neutral"`
	Total     int                  `json:"total"`
	Actions   map[model.Action]int `json:"actions"`
	// Efficiency is the share of positive points in percent.
	Efficiency float64 `json:"efficiency"`
}

// Positive returns the points the player won for the home team.
func (s PlayerStats) Positive() int { return s.Scored + s.FaultWins }

// GhostName is the display name of a player missing from the roster.
const GhostName = "Former player"

// Players aggregates attributed points per player, including neutral rally
// sub-actions. Players without any involvement are omitted. Ids that are no
// longer on the roster are reported as ghost players so historical
// attribution is never lost. Results are sorted by positive points.
func Players(points []model.Point, roster []model.Player) []PlayerStats {
	byID := map[string]*PlayerStats{}
	order := []string{}
	get := func(id string) *PlayerStats {
		if s, ok := byID[id]; ok {
			return s
		}
		s := &PlayerStats{Player: model.Player{ID: id, Name: GhostName}, Ghost: true, Actions: map[model.Action]int{}}
		byID[id] = s
		order = append(order, id)
		return s
	}
	for _, pl := range roster {
		byID[pl.ID] = &PlayerStats{Player: pl, Actions: map[model.Action]int{}}
		order = append(order, pl.ID)
	}

	for _, p := range points {
		for _, ra := range p.RallyActions {
			if ra.PlayerID != "" && ra.Type == model.TypeNeutral {
				get(ra.PlayerID).Neutral++
			}
		}
		if p.PlayerID == "" {
			continue
		}
		s := get(p.PlayerID)
		switch {
		case p.Type == model.TypeNeutral:
			s.Neutral++
		case p.Team == model.TeamRed:
			s.Faults++
		case p.Type == model.TypeScored:
			s.Scored++
			s.Actions[p.Action]++
		default:
			s.FaultWins++
		}
	}

	out := make([]PlayerStats, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.Total = s.Scored + s.FaultWins + s.Faults
		if s.Total == 0 && s.Neutral == 0 {
			continue
		}
		if s.Total > 0 {
			s.Efficiency = float64(s.Positive()) / float64(s.Total) * 100
		}
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Positive() > out[j].Positive() })
	return out
}

// SetsWon counts completed sets per winner.
func SetsWon(sets []model.SetData) model.Score {
	var s model.Score
	for _, set := range sets {
		if set.Winner == model.TeamBlue {
			s.Blue++
		} else if set.Winner == model.TeamRed {
			s.Red++
		}
	}
	return s
}

// AllPoints concatenates completed sets and the current log in order.
func AllPoints(sets []model.SetData, current []model.Point) []model.Point {
	n := len(current)
	for _, s := range sets {
		n += len(s.Points)
	}
	out := make([]model.Point, 0, n)
	for _, s := range sets {
		out = append(out, s.Points...)
	}
	return append(out, current...)
}
