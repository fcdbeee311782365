package plot

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/isws/wqrun/internal/stats"
)

// RenderBoxes writes a box plot with one box per site to r.Path.
func (r *Renderer) RenderBoxes(boxes []stats.Box, param string) error {
	return r.writeFile(func(w io.Writer, format string) error {
		return r.RenderBoxesTo(w, format, boxes, param)
	})
}

// RenderBoxesTo writes a box plot in the given format to w.
func (r *Renderer) RenderBoxesTo(w io.Writer, format string, boxes []stats.Box, param string) error {
	c, err := draw.NewFormattedCanvas(r.Width, r.Height, format)
	if err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}

	p := plot.New()
	p.Title.Text = param + " by site"
	p.Y.Label.Text = param

	b := &boxPlot{
		boxes:     boxes,
		width:     vg.Points(20),
		LineStyle: draw.LineStyle{Color: plotColor(0), Width: vg.Points(1)},
		MeanStyle: draw.GlyphStyle{Color: plotColor(1), Radius: vg.Points(2.5), Shape: draw.CrossGlyph{}},
	}
	p.Add(b)

	names := make([]string, len(boxes))
	for i, bx := range boxes {
		names[i] = fmt.Sprintf("%s (n=%d)", bx.Site, bx.Count)
	}
	p.NominalX(names...)

	p.Draw(draw.New(c))

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write figure: %w", err)
	}
	return nil
}

// boxPlot draws precomputed box statistics: a Q1..Q3 box with a median
// bar, whiskers to min and max, and a glyph at the mean.
type boxPlot struct {
	boxes []stats.Box
	width vg.Length

	draw.LineStyle
	MeanStyle draw.GlyphStyle
}

func (b *boxPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := b.width / 2

	for i, bx := range b.boxes {
		x := trX(float64(i))
		if !c.ContainsX(x) {
			continue
		}
		q1, q3, med := trY(bx.Q1), trY(bx.Q3), trY(bx.Median)
		lo, hi := trY(bx.Min), trY(bx.Max)

		box := []vg.Point{
			{X: x - half, Y: q1},
			{X: x + half, Y: q1},
			{X: x + half, Y: q3},
			{X: x - half, Y: q3},
			{X: x - half, Y: q1},
		}
		c.StrokeLines(b.LineStyle, c.ClipLinesY(box)...)
		c.StrokeLines(b.LineStyle, c.ClipLinesY([]vg.Point{{X: x - half, Y: med}, {X: x + half, Y: med}})...)

		c.StrokeLines(b.LineStyle, c.ClipLinesY(
			[]vg.Point{{X: x, Y: q3}, {X: x, Y: hi}},
			[]vg.Point{{X: x, Y: q1}, {X: x, Y: lo}},
			[]vg.Point{{X: x - half/2, Y: hi}, {X: x + half/2, Y: hi}},
			[]vg.Point{{X: x - half/2, Y: lo}, {X: x + half/2, Y: lo}},
		)...)

		mean := vg.Point{X: x, Y: trY(bx.Mean)}
		if c.Contains(mean) {
			c.DrawGlyph(b.MeanStyle, mean)
		}
	}
}

func (b *boxPlot) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(b.boxes) == 0 {
		return 0, 1, 0, 1
	}
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, bx := range b.boxes {
		ymin = math.Min(ymin, bx.Min)
		ymax = math.Max(ymax, bx.Max)
	}
	return -0.5, float64(len(b.boxes)) - 0.5, ymin, ymax
}
