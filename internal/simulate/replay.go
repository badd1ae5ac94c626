package simulate

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
)

// PeriodLine is one row of a replayed match.
type PeriodLine struct {
	Number  int
	Score   model.Score
	Winner  model.Team
	Points  int
	Current bool
}

// Summary is a match rebuilt offline from its snapshot.
type Summary struct {
	ID          string
	Sport       model.Sport
	Names       model.TeamNames
	PeriodLabel string
	Periods     []PeriodLine
	SetsWon     model.Score
	Finished    bool
}

// ReadSnapshot decodes a snapshot as written by the file store or served
// by GET /matches/{id}/snapshot.
func ReadSnapshot(r io.Reader) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Replay folds every period of snap with the sport rules. A completed
// period whose recomputed score differs from the stored one is reported
// with ErrScoreDrift.
func Replay(snap model.Snapshot) (Summary, error) {
	rules, err := sport.For(snap.Sport)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		ID:          snap.ID,
		Sport:       snap.Sport,
		Names:       snap.TeamNames,
		PeriodLabel: rules.PeriodLabel(),
		SetsWon:     stats.SetsWon(snap.CompletedSets),
		Finished:    snap.Finished,
	}
	for _, set := range snap.CompletedSets {
		score := rules.Score(set.Points, snap.Metadata)
		if score != set.Score {
			return sum, fmt.Errorf("%w: %s %d stored %+v, recomputed %+v",
				ErrScoreDrift, rules.PeriodLabel(), set.Number, set.Score, score)
		}
		sum.Periods = append(sum.Periods, PeriodLine{
			Number: set.Number,
			Score:  score,
			Winner: set.Winner,
			Points: len(set.Points),
		})
	}
	if len(snap.Points) > 0 || !snap.Finished {
		sum.Periods = append(sum.Periods, PeriodLine{
			Number:  snap.CurrentSetNumber,
			Score:   rules.Score(snap.Points, snap.Metadata),
			Points:  len(snap.Points),
			Current: true,
		})
	}
	return sum, nil
}

// Print writes the summary as an aligned table.
func (s Summary) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s vs %s\n", s.ID, s.Sport, s.Names.Blue, s.Names.Red)
	fmt.Fprintf(tw, "%s\t%s\t%s\tWinner\tPoints\n", s.PeriodLabel, s.Names.Blue, s.Names.Red)
	for _, p := range s.Periods {
		winner := string(p.Winner)
		if p.Current {
			winner = "in progress"
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%d\n", p.Number, p.Score.Blue, p.Score.Red, winner, p.Points)
	}
	fmt.Fprintf(tw, "%ss won\t%d\t%d\t\t\n", s.PeriodLabel, s.SetsWon.Blue, s.SetsWon.Red)
	if s.Finished {
		fmt.Fprintln(tw, "finished")
	}
	return tw.Flush()
}
