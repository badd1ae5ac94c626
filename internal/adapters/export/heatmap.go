package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/courtside/internal/domain/model"
)

// Heatmap image size in pixels; the 3:2 ratio matches the court diagram.
const (
	heatmapWidth  = 900
	heatmapHeight = 600
)

var (
	blueColor  = drawing.ColorFromHex("1e88e5")
	redColor   = drawing.ColorFromHex("e53935")
	background = drawing.ColorFromHex("f5f5f5")
	textColor  = drawing.ColorFromHex("424242")
)

// WriteHeatmap renders the points kept by keep as a PNG scatter over the
// normalized court, one colored series per team. The y axis runs downward
// like the court diagram.
func WriteHeatmap(w io.Writer, points []model.Point, keep func(model.Point) bool, names model.TeamNames) error {
	var series []chart.Series
	for _, team := range []struct {
		team  model.Team
		name  string
		color drawing.Color
	}{
		{model.TeamBlue, names.Blue, blueColor},
		{model.TeamRed, names.Red, redColor},
	} {
		var xs, ys []float64
		for _, p := range points {
			if p.Team != team.team || !keep(p) {
				continue
			}
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s (%d)", team.name, len(xs)),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    6,
				DotColor:    team.color.WithAlpha(170),
			},
		})
	}
	if len(series) == 0 {
		return renderEmpty(w)
	}

	graph := chart.Chart{
		Width:      heatmapWidth,
		Height:     heatmapHeight,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: drawing.ColorWhite},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
			Style: chart.Style{FontColor: textColor},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1, Descending: true},
			Style: chart.Style{FontColor: textColor},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

func renderEmpty(w io.Writer) error {
	const msg = "No points with a court position"
	graph := chart.Chart{
		Width:      heatmapWidth / 2,
		Height:     heatmapHeight / 3,
		Background: chart.Style{FillColor: background},
		Canvas:     chart.Style{FillColor: background},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(textColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}
