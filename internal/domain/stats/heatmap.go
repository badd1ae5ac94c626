package stats

import "github.com/okian/courtside/internal/domain/model"

// Heatmap is a density grid of point positions per team. Cells are indexed
// [row][col] over the normalized court.
type Heatmap struct {
	Cols int     `json:"cols"`
	Rows int     `json:"rows"`
	Blue [][]int `json:"blue"`
	Red  [][]int `json:"red"`
}

// Spatial filters the points that carry a meaningful position.
func Spatial(points []model.Point, keep func(model.Point) bool) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Density bins the points kept by keep into a cols x rows grid.
func Density(points []model.Point, cols, rows int, keep func(model.Point) bool) Heatmap {
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	h := Heatmap{Cols: cols, Rows: rows, Blue: grid(cols, rows), Red: grid(cols, rows)}
	for _, p := range points {
		if !keep(p) || p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			continue
		}
		c := cell(p.X, cols)
		r := cell(p.Y, rows)
		if p.Team == model.TeamBlue {
			h.Blue[r][c]++
		} else {
			h.Red[r][c]++
		}
	}
	return h
}

func grid(cols, rows int) [][]int {
	g := make([][]int, rows)
	for i := range g {
		g[i] = make([]int, cols)
	}
	return g
}

func cell(v float64, n int) int {
	i := int(v * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
