// Package export renders matches into files operators take away: an Excel
// workbook with every set and the player statistics, a PNG heatmap of
// point positions, and roster import from a spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/sport"
	"github.com/okian/courtside/internal/domain/stats"
)

const summarySheet = "Summary"

var (
	setHeader    = []any{"#", "Time", "Team", "Type", "Action", "Player", "X", "Y", "Blue", "Red"}
	playerHeader = []any{"Number", "Name", "Scored", "Fault wins", "Faults", "Neutral", "Total", "Efficiency %"}
)

// WriteWorkbook writes the match as an xlsx workbook: a summary sheet with
// set scores, team and player statistics, then one sheet per period with
// its point log and running score.
func WriteWorkbook(w io.Writer, snap model.Snapshot) error {
	rules, err := sport.For(snap.Sport)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	b := &book{f: f, bold: bold}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	b.summary(snap, rules)

	for _, set := range snap.CompletedSets {
		b.period(fmt.Sprintf("%s %d", rules.PeriodLabel(), set.Number), set.Points, snap, rules)
	}
	if len(snap.Points) > 0 {
		b.period(fmt.Sprintf("%s %d", rules.PeriodLabel(), snap.CurrentSetNumber), snap.Points, snap, rules)
	}
	if b.err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, b.err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	return nil
}

// book keeps the first error so sheet builders read straight through.
type book struct {
	f    *excelize.File
	bold int
	err  error
}

func (b *book) row(sheet string, n int, values []any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetSheetRow(sheet, cell, &values)
}

func (b *book) header(sheet string, n int, values []any) {
	b.row(sheet, n, values)
	if b.err == nil {
		b.err = b.f.SetRowStyle(sheet, n, n, b.bold)
	}
}

func (b *book) summary(snap model.Snapshot, rules sport.Rules) {
	all := stats.AllPoints(snap.CompletedSets, snap.Points)
	won := stats.SetsWon(snap.CompletedSets)

	n := 1
	b.header(summarySheet, n, []any{"Match", snap.ID})
	n++
	b.row(summarySheet, n, []any{"Sport", string(snap.Sport)})
	n++
	b.row(summarySheet, n, []any{"Blue", snap.TeamNames.Blue, rules.PeriodLabel() + "s won", won.Blue})
	n++
	b.row(summarySheet, n, []any{"Red", snap.TeamNames.Red, rules.PeriodLabel() + "s won", won.Red})
	n += 2

	b.header(summarySheet, n, []any{rules.PeriodLabel(), "Blue", "Red", "Winner", "Duration", "Points"})
	for _, set := range snap.CompletedSets {
		n++
		b.row(summarySheet, n, []any{
			set.Number, set.Score.Blue, set.Score.Red, teamName(snap.TeamNames, set.Winner),
			clock(set.Duration), len(set.Points),
		})
	}
	if len(snap.Points) > 0 {
		score := rules.Score(snap.Points, snap.Metadata)
		n++
		b.row(summarySheet, n, []any{
			snap.CurrentSetNumber, score.Blue, score.Red, "in progress", clock(snap.ChronoSeconds), len(snap.Points),
		})
	}
	n += 2

	teams := stats.Teams(all)
	b.header(summarySheet, n, []any{"Team", "Points", "Scored", "Fault wins", "Faults committed"})
	for _, ts := range []stats.TeamStats{teams.Blue, teams.Red} {
		n++
		b.row(summarySheet, n, []any{teamName(snap.TeamNames, ts.Team), ts.Points, ts.Scored, ts.FaultWins, ts.FaultsCommitted})
	}
	n += 2

	players := stats.Players(all, snap.Players)
	if len(players) == 0 {
		return
	}
	b.header(summarySheet, n, playerHeader)
	for _, ps := range players {
		n++
		b.row(summarySheet, n, []any{
			ps.Player.Number, ps.Player.Name, ps.Scored, ps.FaultWins, ps.Faults, ps.Neutral, ps.Total,
			fmt.Sprintf("%.1f", ps.Efficiency),
		})
	}
	if b.err == nil {
		b.err = b.f.SetColWidth(summarySheet, "A", "H", 14)
	}
}

func (b *book) period(sheet string, points []model.Point, snap model.Snapshot, rules sport.Rules) {
	if b.err != nil {
		return
	}
	if _, err := b.f.NewSheet(sheet); err != nil {
		b.err = err
		return
	}
	names := playerNames(snap.Players)

	b.header(sheet, 1, setHeader)
	for i, p := range points {
		score := rules.Score(points[:i+1], snap.Metadata)
		x, y := any(""), any("")
		if p.HasPosition() {
			x, y = round(p.X), round(p.Y)
		}
		b.row(sheet, i+2, []any{
			i + 1,
			p.Timestamp.UTC().Format(time.TimeOnly),
			teamName(snap.TeamNames, p.Team),
			string(p.Type),
			actionLabel(rules, p),
			names.of(p.PlayerID),
			x, y,
			score.Blue, score.Red,
		})
	}
	if b.err == nil {
		b.err = b.f.SetColWidth(sheet, "A", "J", 12)
	}
}

type rosterNames map[string]string

func playerNames(players []model.Player) rosterNames {
	out := make(rosterNames, len(players))
	for _, p := range players {
		out[p.ID] = p.Name
	}
	return out
}

func (r rosterNames) of(id string) string {
	if id == "" {
		return ""
	}
	if name, ok := r[id]; ok {
		return name
	}
	return stats.GhostName
}

func actionLabel(rules sport.Rules, p model.Point) string {
	if p.Label != "" {
		return p.Label
	}
	if d, ok := sport.Lookup(rules, p.Action); ok {
		return d.Label
	}
	return string(p.Action)
}

func teamName(names model.TeamNames, t model.Team) string {
	switch t {
	case model.TeamBlue:
		return names.Blue
	case model.TeamRed:
		return names.Red
	default:
		return ""
	}
}

func clock(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func round(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
