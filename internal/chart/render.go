package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/utils"
)

// Figure size of every chart.
const (
	Width  = 10 * vg.Inch
	Height = 6 * vg.Inch
)

// DefaultDPI is used when a Renderer has no DPI set.
const DefaultDPI = 100

var (
	markerColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	zeroColor   = color.Gray{Y: 64}
)

// Spec names the two measurements of one scatter chart and its labels.
type Spec struct {
	Title  string
	XLabel string
	YLabel string
	X      analysis.Field
	Y      analysis.Field
}

// Renderer draws relationship charts as PNG files.
type Renderer struct {
	DPI int
}

// Render plots spec.Y against spec.X as markers over a grid with dashed zero
// lines, and writes the PNG to path, replacing any previous file. It returns
// path on success.
func (r Renderer) Render(ds *analysis.Dataset, spec Spec, path string) (string, error) {
	fail := func(reason string, err error) (string, error) {
		return "", &RenderError{Chart: spec.Title, Path: path, Reason: reason, Err: err}
	}
	xs, ok := ds.Field(spec.X)
	if !ok || len(xs.Values) == 0 {
		return fail(fmt.Sprintf("column %s missing or empty", spec.X), nil)
	}
	ys, ok := ds.Field(spec.Y)
	if !ok || len(ys.Values) == 0 {
		return fail(fmt.Sprintf("column %s missing or empty", spec.Y), nil)
	}
	if len(xs.Values) != len(ys.Values) {
		return fail(fmt.Sprintf("columns %s and %s differ in length", spec.X, spec.Y), nil)
	}

	p, err := r.plot(xs.Values, ys.Values, spec)
	if err != nil {
		return fail("build plot", err)
	}
	// a stale image must never survive a failed render
	if err := utils.RemoveIfExists(path); err != nil {
		return fail("remove previous image", err)
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	err = utils.SafeWrite(path, func(w io.Writer) error {
		c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(dpi))
		p.Draw(draw.New(c))
		_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
		return err
	})
	if err != nil {
		return fail("save image", err)
	}
	return path, nil
}

func (r Renderer) plot(x, y []float64, spec Spec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}

	xlo, xhi := spanWithZero(x)
	ylo, yhi := spanWithZero(y)
	hz, err := zeroLine(plotter.XYs{{X: xlo, Y: 0}, {X: xhi, Y: 0}})
	if err != nil {
		return nil, err
	}
	vt, err := zeroLine(plotter.XYs{{X: 0, Y: ylo}, {X: 0, Y: yhi}})
	if err != nil {
		return nil, err
	}
	p.Add(hz, vt)

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = markerColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)

	p.Legend.Add(spec.Title, s)
	p.Legend.Top = true
	return p, nil
}

func zeroLine(pts plotter.XYs) (*plotter.Line, error) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = zeroColor
	l.LineStyle.Width = vg.Points(0.8)
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	return l, nil
}

// spanWithZero returns the data range widened to include zero.
func spanWithZero(vals []float64) (lo, hi float64) {
	lo, hi = 0, 0
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}
