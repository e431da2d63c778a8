package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// coolwarm anchors, evenly spaced over [-1, 1].
var coolwarm = []drawing.Color{
	{R: 59, G: 76, B: 192, A: 255},
	{R: 141, G: 176, B: 254, A: 255},
	{R: 221, G: 221, B: 221, A: 255},
	{R: 244, G: 152, B: 122, A: 255},
	{R: 180, G: 4, B: 38, A: 255},
}

// divergingColor maps v in [-1, 1] onto the coolwarm palette.
func divergingColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return chart.ColorWhite
	}
	t := (math.Max(-1, math.Min(1, v)) + 1) / 2 * float64(len(coolwarm)-1)
	i := int(math.Floor(t))
	if i >= len(coolwarm)-1 {
		return coolwarm[len(coolwarm)-1]
	}
	f := t - float64(i)
	a, b := coolwarm[i], coolwarm[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// textColorOn picks dark text on light cells and light text on dark cells.
func textColorOn(c drawing.Color) drawing.Color {
	lum := (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
	if lum > 0.408 {
		return drawing.Color{R: 38, G: 38, B: 38, A: 255}
	}
	return chart.ColorWhite
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, c drawing.Color) {
	r.SetFillColor(c)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}

// minHeatmapCell is the smallest cell edge in pixels before the canvas grows.
const minHeatmapCell = 8

func newHeatmapRenderer(f Format, width, height int, font *truetype.Font) (chart.Renderer, error) {
	r, err := f.provider()(width, height)
	if err != nil {
		return nil, err
	}
	r.SetFont(font)
	r.SetFontSize(10)
	r.SetFontColor(chart.ColorBlack)
	return r, nil
}

func drawHeatmap(h *Heatmap, opt Options, buf *bytes.Buffer) error {
	m := h.Matrix
	n := len(m.Columns)
	if n == 0 {
		return ErrNoData
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	width, height := opt.Width, opt.Height
	r, err := newHeatmapRenderer(opt.Format, width, height, font)
	if err != nil {
		return err
	}

	labelW := 0
	for _, name := range m.Columns {
		if w := r.MeasureText(name).Width(); w > labelW {
			labelW = w
		}
	}
	const pad, barW, barGap, barLabels = 16, 14, 14, 40
	left := pad + labelW + 8
	top := pad
	bottom := pad + labelW/2 + 24
	right := pad + barW + barGap + barLabels
	layout := func() int {
		grid := width - left - right
		if g := height - top - bottom; g < grid {
			grid = g
		}
		return grid / n
	}
	cell := layout()
	if cell < minHeatmapCell {
		// grow the canvas so every column keeps a visible cell
		if w := left + right + minHeatmapCell*n; w > width {
			width = w
		}
		if ht := top + bottom + minHeatmapCell*n; ht > height {
			height = ht
		}
		if r, err = newHeatmapRenderer(opt.Format, width, height, font); err != nil {
			return err
		}
		cell = layout()
	}
	grid := cell * n
	fillRect(r, 0, 0, width, height, chart.ColorWhite)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			x0 := left + j*cell
			y0 := top + i*cell
			bg := divergingColor(v)
			fillRect(r, x0, y0, x0+cell, y0+cell, bg)
			if label := h.Labels[i][j]; label != "" {
				tb := r.MeasureText(label)
				if tb.Width() > cell-2 || tb.Height() > cell-2 {
					continue
				}
				r.SetFontColor(textColorOn(bg))
				r.Text(label, x0+(cell-tb.Width())/2, y0+(cell+tb.Height())/2)
			}
		}
	}

	r.SetFontColor(chart.ColorBlack)
	if cell < 14 {
		r.SetFontSize(7)
	}
	for i, name := range m.Columns {
		tb := r.MeasureText(name)
		// row labels, right aligned
		r.Text(name, left-8-tb.Width(), top+i*cell+(cell+tb.Height())/2)
		// column labels, rotated under the grid
		cx := left + i*cell + cell/2
		r.SetTextRotation(chart.DegreesToRadians(45))
		r.Text(name, cx-tb.Height()/2, top+grid+10)
		r.ClearTextRotation()
	}

	// color bar
	r.SetFontSize(10)
	bx := left + grid + barGap
	steps := grid
	for k := 0; k < steps; k++ {
		v := 1 - 2*float64(k)/float64(steps-1)
		fillRect(r, bx, top+k, bx+barW, top+k+1, divergingColor(v))
	}
	for _, v := range []float64{1, 0.5, 0, -0.5, -1} {
		label := fmt.Sprintf("%.1f", v)
		tb := r.MeasureText(label)
		y := top + int(math.Round((1-v)/2*float64(steps-1)))
		r.Text(label, bx+barW+4, y+tb.Height()/2)
	}
	return r.Save(buf)
}
