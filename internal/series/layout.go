package series

import "math"

// Layout describes how stations are arranged in the figure.
type Layout struct {
	MultiPanel bool
	Rows       int
	Cols       int
	// StationColumn is used for panel titles.
	StationColumn string
}

// Grid returns the panel grid for n stations: ceil(sqrt(n)) rows and
// ceil(n/rows) columns. An empty figure still has one cell.
func Grid(n int) (rows, cols int) {
	if n <= 0 {
		return 1, 1
	}
	rows = int(math.Ceil(math.Sqrt(float64(n))))
	cols = (n + rows - 1) / rows
	return rows, cols
}

// NewLayout returns the layout for n stations. Single-plot layouts use one
// cell regardless of n.
func NewLayout(n int, multiPanel bool, stationColumn string) Layout {
	l := Layout{MultiPanel: multiPanel, Rows: 1, Cols: 1, StationColumn: stationColumn}
	if multiPanel {
		l.Rows, l.Cols = Grid(n)
	}
	return l
}

// Renderer draws grouped stations. Implementations decide the output medium.
type Renderer interface {
	Render(stations []Station, field string, layout Layout) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(stations []Station, field string, layout Layout) error

func (f RendererFunc) Render(stations []Station, field string, layout Layout) error {
	return f(stations, field, layout)
}
