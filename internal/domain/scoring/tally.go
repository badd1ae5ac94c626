// Package scoring folds a point log into score state. Every function here is
// a pure fold over the log: callers recompute from scratch after each change
// so that undo never needs an inverse operation.
package scoring

import "github.com/okian/courtside/internal/domain/model"

// Scorer computes the team tallies of a period.
type Scorer interface {
	Score(points []model.Point) model.Score
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(points []model.Point) model.Score

// Score calls f.
func (f ScorerFunc) Score(points []model.Point) model.Score { return f(points) }

// Tally counts every non-neutral point for its team. Scored and fault points
// weigh the same: a fault point credits the team that benefited from it.
func Tally(points []model.Point) model.Score {
	var s model.Score
	for _, p := range points {
		if !p.Counts() {
			continue
		}
		if p.Team == model.TeamBlue {
			s.Blue++
		} else {
			s.Red++
		}
	}
	return s
}

// Weighted is Tally with per-point values for scored points. A scored point
// without a value counts as 1; fault points always count as 1.
func Weighted(points []model.Point) model.Score {
	var s model.Score
	for _, p := range points {
		if !p.Counts() {
			continue
		}
		v := 1
		if p.Type == model.TypeScored && p.PointValue > 0 {
			v = p.PointValue
		}
		if p.Team == model.TeamBlue {
			s.Blue += v
		} else {
			s.Red += v
		}
	}
	return s
}

// ServingTeam infers the server as the team that won the most recent
// non-neutral point, or initial when no such point exists.
func ServingTeam(points []model.Point, initial model.Team) model.Team {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Counts() {
			return points[i].Team
		}
	}
	return initial
}
