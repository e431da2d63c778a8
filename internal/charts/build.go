package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/csvscope/internal/analysis"
	"github.com/KaramelBytes/csvscope/internal/dataset"
)

// Figure is the computed, renderer-independent content of a chart.
// Exactly one of the kind-specific fields is set.
type Figure struct {
	Request Request
	Hist    *Histogram
	Scatter *Scatter
	Box     *BoxPlot
	Heatmap *Heatmap
}

// Histogram holds bin edges, counts and an optional density curve scaled to counts.
type Histogram struct {
	Column string
	Edges  []float64 // len(Counts)+1
	Counts []int
	// KDEX/KDEY are empty when the density is undefined (fewer than two distinct values).
	KDEX []float64
	KDEY []float64
}

// Scatter holds the complete (x, y) pairs in row order.
type Scatter struct {
	XColumn, YColumn string
	X, Y             []float64
}

// BoxGroup is the five-number summary of one category.
type BoxGroup struct {
	Label       string
	N           int
	Q1          float64
	Median      float64
	Q3          float64
	WhiskerLow  float64
	WhiskerHigh float64
	Outliers    []float64
}

// BoxPlot holds one group per category in first-appearance order.
type BoxPlot struct {
	XColumn, YColumn string
	Groups           []BoxGroup
}

// Heatmap holds the correlation matrix and its cell annotations.
type Heatmap struct {
	Matrix *analysis.CorrMatrix
	// Labels[i][j] is the %.2f annotation, empty for undefined cells.
	Labels [][]string
}

// Build validates the request and computes the figure. It performs no rendering.
func Build(t *dataset.Table, req Request) (*Figure, error) {
	if t == nil {
		return nil, ErrNoData
	}
	cs := analysis.Classify(t)
	if err := req.Validate(cs); err != nil {
		return nil, err
	}
	fig := &Figure{Request: req}
	switch req.Kind {
	case KindHistogram:
		c, _ := t.Column(req.X)
		h, err := buildHistogram(c.Name, finiteOnly(c.Numbers()))
		if err != nil {
			return nil, err
		}
		fig.Hist = h
	case KindScatter:
		cx, _ := t.Column(req.X)
		cy, _ := t.Column(req.Y)
		s := &Scatter{XColumn: cx.Name, YColumn: cy.Name}
		for i := 0; i < t.Rows; i++ {
			if cx.Null[i] || cy.Null[i] || !finite(cx.Floats[i]) || !finite(cy.Floats[i]) {
				continue
			}
			s.X = append(s.X, cx.Floats[i])
			s.Y = append(s.Y, cy.Floats[i])
		}
		if len(s.X) == 0 {
			return nil, ErrNoData
		}
		fig.Scatter = s
	case KindBox:
		cx, _ := t.Column(req.X)
		cy, _ := t.Column(req.Y)
		b, err := buildBox(cx, cy, t.Rows)
		if err != nil {
			return nil, err
		}
		fig.Box = b
	case KindHeatmap:
		m, err := analysis.Correlate(t)
		if err != nil {
			return nil, &InsufficientColumnsError{Have: len(cs.Numeric)}
		}
		fig.Heatmap = &Heatmap{Matrix: m, Labels: annotate(m)}
	}
	return fig, nil
}

func annotate(m *analysis.CorrMatrix) [][]string {
	out := make([][]string, len(m.Values))
	for i, row := range m.Values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			out[i][j] = fmt.Sprintf("%.2f", v)
		}
	}
	return out
}

// finite reports whether v can be placed on an axis; inf and NaN cannot.
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteOnly(vals []float64) []float64 {
	out := vals[:0:0]
	for _, v := range vals {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}

const (
	maxBins   = 1000
	kdePoints = 200
)

func buildHistogram(name string, vals []float64) (*Histogram, error) {
	if len(vals) == 0 {
		return nil, ErrNoData
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	edges := autoBinEdges(sorted)
	counts := make([]int, len(edges)-1)
	for _, v := range sorted {
		counts[binIndex(edges, v)]++
	}
	h := &Histogram{Column: name, Edges: edges, Counts: counts}
	h.KDEX, h.KDEY = kde(sorted, edges[1]-edges[0])
	return h, nil
}

// autoBinEdges picks the larger bin count of the Sturges and Freedman-Diaconis
// rules over sorted values, capped at maxBins.
func autoBinEdges(sorted []float64) []float64 {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	span := hi - lo
	n := float64(len(sorted))
	width := span / (math.Log2(n) + 1)
	iqr := analysis.Quantile(sorted, 0.75) - analysis.Quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < width {
		width = fd
	}
	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	if bins > maxBins {
		bins = maxBins
	}
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + span*float64(i)/float64(bins)
	}
	edges[bins] = hi
	return edges
}

// binIndex returns the half-open bin holding v; the last bin is closed.
func binIndex(edges []float64, v float64) int {
	last := len(edges) - 2
	i := sort.SearchFloat64s(edges, v)
	// SearchFloat64s returns the first edge >= v.
	if i < len(edges) && edges[i] == v {
		if i > last {
			return last
		}
		return i
	}
	if i == 0 {
		return 0
	}
	if i-1 > last {
		return last
	}
	return i - 1
}

// kde evaluates a Gaussian kernel density estimate with Scott's bandwidth over
// the data range and scales it to histogram counts.
func kde(sorted []float64, binWidth float64) ([]float64, []float64) {
	n := len(sorted)
	std := analysis.SampleStd(sorted)
	if n < 2 || math.IsNaN(std) || std == 0 {
		return nil, nil
	}
	bw := std * math.Pow(float64(n), -0.2)
	lo, hi := sorted[0], sorted[n-1]
	xs := make([]float64, kdePoints)
	ys := make([]float64, kdePoints)
	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	scale := float64(n) * binWidth
	for i := range xs {
		x := lo + (hi-lo)*float64(i)/float64(kdePoints-1)
		var sum float64
		for _, v := range sorted {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		xs[i] = x
		ys[i] = sum * norm * scale
	}
	return xs, ys
}

func buildBox(cx, cy *dataset.Column, rows int) (*BoxPlot, error) {
	b := &BoxPlot{XColumn: cx.Name, YColumn: cy.Name}
	order := []string{}
	values := map[string][]float64{}
	for i := 0; i < rows; i++ {
		if cx.Null[i] {
			continue
		}
		key := cx.Values[i]
		if _, seen := values[key]; !seen {
			order = append(order, key)
			values[key] = nil
		}
		if cy.Null[i] || !finite(cy.Floats[i]) {
			continue
		}
		values[key] = append(values[key], cy.Floats[i])
	}
	for _, key := range order {
		vals := values[key]
		if len(vals) == 0 {
			b.Groups = append(b.Groups, BoxGroup{Label: key})
			continue
		}
		b.Groups = append(b.Groups, summarizeGroup(key, vals))
	}
	for _, g := range b.Groups {
		if g.N > 0 {
			return b, nil
		}
	}
	return nil, ErrNoData
}

func summarizeGroup(label string, vals []float64) BoxGroup {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	g := BoxGroup{
		Label:  label,
		N:      len(sorted),
		Q1:     analysis.Quantile(sorted, 0.25),
		Median: analysis.Quantile(sorted, 0.5),
		Q3:     analysis.Quantile(sorted, 0.75),
	}
	iqr := g.Q3 - g.Q1
	loFence, hiFence := g.Q1-1.5*iqr, g.Q3+1.5*iqr
	g.WhiskerLow, g.WhiskerHigh = g.Q1, g.Q3
	for _, v := range sorted {
		if v >= loFence {
			g.WhiskerLow = math.Min(v, g.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= hiFence {
			g.WhiskerHigh = math.Max(sorted[i], g.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < g.WhiskerLow || v > g.WhiskerHigh {
			g.Outliers = append(g.Outliers, v)
		}
	}
	return g
}
