package charts

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/csvscope/internal/dataset"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg"; empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q (want png or svg)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatSVG {
		return chart.SVG
	}
	return chart.PNG
}

// Options controls image size and encoding.
type Options struct {
	Width  int
	Height int
	Format Format
}

// DefaultOptions returns a 720x480 PNG.
func DefaultOptions() Options {
	return Options{Width: 720, Height: 480, Format: FormatPNG}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	return o
}

// Image is an encoded chart.
type Image struct {
	Kind    Kind
	Caption string
	Format  Format
	Data    []byte
}

// ContentType returns the MIME type of the image data.
func (img *Image) ContentType() string { return img.Format.ContentType() }

var (
	barFill    = drawing.ColorFromHex("4c72b0").WithAlpha(140)
	barStroke  = drawing.ColorFromHex("4c72b0")
	kdeStroke  = drawing.ColorFromHex("2a4d8f")
	pointColor = drawing.ColorFromHex("4c72b0").WithAlpha(200)
	boxPalette = []drawing.Color{
		drawing.ColorFromHex("4c72b0"),
		drawing.ColorFromHex("dd8452"),
		drawing.ColorFromHex("55a868"),
		drawing.ColorFromHex("c44e52"),
		drawing.ColorFromHex("8172b3"),
		drawing.ColorFromHex("937860"),
		drawing.ColorFromHex("da8bc3"),
		drawing.ColorFromHex("8c8c8c"),
		drawing.ColorFromHex("ccb974"),
		drawing.ColorFromHex("64b5cd"),
	}
)

// Draw encodes a figure as an image.
func Draw(fig *Figure, opt Options) (*Image, error) {
	if fig == nil {
		return nil, ErrNoData
	}
	opt = opt.normalized()
	var (
		buf bytes.Buffer
		err error
	)
	switch {
	case fig.Hist != nil:
		err = drawHistogram(fig.Hist, opt, &buf)
	case fig.Scatter != nil:
		err = drawScatter(fig.Scatter, opt, &buf)
	case fig.Box != nil:
		err = drawBox(fig.Box, opt, &buf)
	case fig.Heatmap != nil:
		err = drawHeatmap(fig.Heatmap, opt, &buf)
	default:
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", fig.Request.Kind, err)
	}
	return &Image{Kind: fig.Request.Kind, Caption: fig.Request.Caption(), Format: opt.Format, Data: buf.Bytes()}, nil
}

// Render builds and draws a chart. Nothing is cached between calls.
func Render(t *dataset.Table, req Request, opt Options) (*Image, error) {
	fig, err := Build(t, req)
	if err != nil {
		return nil, err
	}
	return Draw(fig, opt)
}

func baseChart(opt Options) chart.Chart {
	return chart.Chart{
		Width:      opt.Width,
		Height:     opt.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 20, Bottom: 16}},
	}
}

func drawHistogram(h *Histogram, opt Options, buf *bytes.Buffer) error {
	// Step outline of the bars, filled down to zero.
	xs := []float64{h.Edges[0]}
	ys := []float64{0}
	maxY := 0.0
	for i, c := range h.Counts {
		xs = append(xs, h.Edges[i], h.Edges[i+1])
		ys = append(ys, float64(c), float64(c))
		maxY = math.Max(maxY, float64(c))
	}
	xs = append(xs, h.Edges[len(h.Edges)-1])
	ys = append(ys, 0)

	series := []chart.Series{chart.ContinuousSeries{
		Name:    h.Column,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: barStroke, StrokeWidth: 1, FillColor: barFill},
	}}
	if len(h.KDEX) > 0 {
		for _, y := range h.KDEY {
			maxY = math.Max(maxY, y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "density",
			XValues: h.KDEX,
			YValues: h.KDEY,
			Style:   chart.Style{StrokeColor: kdeStroke, StrokeWidth: 2},
		})
	}
	c := baseChart(opt)
	c.XAxis = chart.XAxis{Name: h.Column, Range: &chart.ContinuousRange{Min: h.Edges[0], Max: h.Edges[len(h.Edges)-1]}}
	c.YAxis = chart.YAxis{Name: "Count", Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.05}}
	c.Series = series
	return c.Render(opt.Format.provider(), buf)
}

func drawScatter(s *Scatter, opt Options, buf *bytes.Buffer) error {
	c := baseChart(opt)
	c.XAxis = chart.XAxis{Name: s.XColumn, Range: paddedRange(s.X)}
	c.YAxis = chart.YAxis{Name: s.YColumn, Range: paddedRange(s.Y)}
	c.Series = []chart.Series{chart.ContinuousSeries{
		Name:    s.YColumn,
		XValues: s.X,
		YValues: s.Y,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: pointColor},
	}}
	return c.Render(opt.Format.provider(), buf)
}

// paddedRange widens the data extent by 5% each side, or by 0.5 for a single value.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func drawBox(b *BoxPlot, opt Options, buf *bytes.Buffer) error {
	const half = 0.35
	var (
		series []chart.Series
		vals   []float64
		ticks  []chart.Tick
	)
	k := len(b.Groups)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	line := func(col drawing.Color, xs, ys []float64) chart.Series {
		return chart.ContinuousSeries{XValues: xs, YValues: ys, Style: chart.Style{StrokeColor: col, StrokeWidth: 1.5}}
	}
	for i, g := range b.Groups {
		x := float64(i)
		ticks = append(ticks, chart.Tick{Value: x, Label: g.Label})
		if g.N == 0 {
			continue
		}
		col := boxPalette[i%len(boxPalette)]
		series = append(series,
			line(col, []float64{x - half, x + half, x + half, x - half, x - half}, []float64{g.Q1, g.Q1, g.Q3, g.Q3, g.Q1}),
			line(col, []float64{x - half, x + half}, []float64{g.Median, g.Median}),
			line(col, []float64{x, x}, []float64{g.WhiskerLow, g.Q1}),
			line(col, []float64{x, x}, []float64{g.Q3, g.WhiskerHigh}),
			line(col, []float64{x - half/2, x + half/2}, []float64{g.WhiskerLow, g.WhiskerLow}),
			line(col, []float64{x - half/2, x + half/2}, []float64{g.WhiskerHigh, g.WhiskerHigh}),
		)
		vals = append(vals, g.WhiskerLow, g.WhiskerHigh)
		if len(g.Outliers) > 0 {
			xs := make([]float64, len(g.Outliers))
			for j := range xs {
				xs[j] = x
			}
			series = append(series, chart.ContinuousSeries{
				XValues: xs,
				YValues: g.Outliers,
				Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: col},
			})
			vals = append(vals, g.Outliers...)
		}
	}
	ticks = append(ticks, chart.Tick{Value: float64(k) - 0.5})

	c := baseChart(opt)
	c.Background.Padding.Bottom = 48
	c.XAxis = chart.XAxis{
		Name:      b.XColumn,
		Ticks:     ticks,
		TickStyle: chart.Style{TextRotationDegrees: 45},
	}
	c.YAxis = chart.YAxis{Name: b.YColumn, Range: paddedRange(vals)}
	c.Series = series
	return c.Render(opt.Format.provider(), buf)
}
