// Package plot renders station time series and box statistics with
// gonum/plot. The output format follows the file extension.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/isws/wqrun/internal/series"
)

const (
	defaultWidth  = 10 * vg.Inch
	defaultHeight = 6 * vg.Inch
	markerRadius  = 2
	timeFormat    = "2006-01-02"
)

// Renderer writes figures to a file. It implements series.Renderer.
type Renderer struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer writing to path. Non-positive sizes fall
// back to a 10x6 inch figure.
func NewRenderer(path string, widthIn, heightIn float64) *Renderer {
	r := &Renderer{Path: path, Width: defaultWidth, Height: defaultHeight}
	if widthIn > 0 {
		r.Width = vg.Length(widthIn) * vg.Inch
	}
	if heightIn > 0 {
		r.Height = vg.Length(heightIn) * vg.Inch
	}
	return r
}

// Render draws the stations and writes the figure to r.Path.
func (r *Renderer) Render(stations []series.Station, field string, layout series.Layout) error {
	return r.writeFile(func(w io.Writer, format string) error {
		return r.RenderTo(w, format, stations, field, layout)
	})
}

// RenderTo draws the stations and writes the figure in the given format
// (png, svg, pdf, ...) to w.
func (r *Renderer) RenderTo(w io.Writer, format string, stations []series.Station, field string, layout series.Layout) error {
	c, err := draw.NewFormattedCanvas(r.Width, r.Height, format)
	if err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}
	dc := draw.New(c)

	if layout.MultiPanel {
		if err := drawPanels(dc, stations, field, layout); err != nil {
			return err
		}
	} else {
		p, err := singlePlot(stations, field)
		if err != nil {
			return err
		}
		p.Draw(dc)
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write figure: %w", err)
	}
	return nil
}

func (r *Renderer) writeFile(fn func(w io.Writer, format string) error) error {
	format := Format(r.Path)
	if format == "" {
		return fmt.Errorf("no image format for %q", r.Path)
	}

	if dir := filepath.Dir(r.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("create figure: %w", err)
	}

	if err := fn(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Format returns the image format implied by the file extension.
func Format(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func singlePlot(stations []series.Station, field string) (*plot.Plot, error) {
	p := newTimePlot(field)
	p.Legend.Top = true

	for i, s := range stations {
		line, points, err := stationLine(s, i)
		if err != nil {
			return nil, err
		}
		p.Add(line, points)
		p.Legend.Add(s.Label(), line, points)
	}
	return p, nil
}

func drawPanels(dc draw.Canvas, stations []series.Station, field string, layout series.Layout) error {
	rows, cols := layout.Rows, layout.Cols
	if rows*cols < len(stations) {
		rows, cols = series.Grid(len(stations))
	}

	plots := make([][]*plot.Plot, rows)
	used := make([][]bool, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
		used[i] = make([]bool, cols)
		for j := range plots[i] {
			plots[i][j] = plot.New()
		}
	}

	for k, s := range stations {
		i, j := k/cols, k%cols
		p := newTimePlot(field)
		p.Title.Text = s.Title(layout.StationColumn)

		line, points, err := stationLine(s, 0)
		if err != nil {
			return err
		}
		p.Add(line, points)

		plots[i][j] = p
		used[i][j] = true
	}

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if used[i][j] {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}
	return nil
}

func plotColor(i int) color.Color {
	return plotutil.Color(i)
}

func newTimePlot(field string) *plot.Plot {
	p := plot.New()
	p.Title.Text = field + " time series"
	p.X.Label.Text = "DateTime"
	p.Y.Label.Text = field
	p.X.Tick.Marker = plot.TimeTicks{Format: timeFormat}
	p.Add(plotter.NewGrid())
	return p
}

func stationLine(s series.Station, i int) (*plotter.Line, *plotter.Scatter, error) {
	xys := make(plotter.XYs, len(s.Points))
	for k, pt := range s.Points {
		xys[k].X = float64(pt.Time.Unix())
		xys[k].Y = pt.Value
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, nil, fmt.Errorf("station %s: %w", s.ID, err)
	}

	c := plotColor(i)
	line.Color = c
	points.Color = c
	points.Shape = draw.CircleGlyph{}
	points.Radius = vg.Points(markerRadius)

	return line, points, nil
}
