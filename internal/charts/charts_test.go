package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvscope/internal/analysis"
	"github.com/KaramelBytes/csvscope/internal/dataset"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func table(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ParseCSV("t.csv", []byte(csv), dataset.Options{})
	require.NoError(t, err)
	return tbl
}

const salesCSV = "region,sales,units\neast,10,1\nwest,20,3\neast,30,2\nwest,25,5\neast,,4\n"

func TestHeatmapNeedsTwoNumericColumns(t *testing.T) {
	_, err := Build(table(t, "region,sales\neast,1\nwest,2\n"), Request{Kind: KindHeatmap})
	var ic *InsufficientColumnsError
	require.True(t, errors.As(err, &ic))
	assert.Equal(t, 1, ic.Have)
	assert.True(t, errors.Is(err, analysis.ErrInsufficientColumns))
	assert.Contains(t, err.Error(), "at least two numeric columns")
}

func TestHeatmapTwoColumns(t *testing.T) {
	fig, err := Build(table(t, "a,b\n1,2\n2,5\n3,4\n"), Request{Kind: KindHeatmap})
	require.NoError(t, err)
	h := fig.Heatmap
	require.NotNil(t, h)
	require.Len(t, h.Matrix.Values, 2)
	assert.Equal(t, "1.00", h.Labels[0][0])
	assert.Equal(t, "1.00", h.Labels[1][1])
	assert.Equal(t, h.Matrix.Values[0][1], h.Matrix.Values[1][0])
	assert.Equal(t, h.Labels[0][1], h.Labels[1][0])
}

func TestHistogramBins(t *testing.T) {
	fig, err := Build(table(t, "v\n1\n2\n2\n3\n3\n3\n4\n4\n5\n"), Request{Kind: KindHistogram, X: "v"})
	require.NoError(t, err)
	h := fig.Hist
	require.NotNil(t, h)
	assert.Len(t, h.Edges, len(h.Counts)+1)
	assert.Equal(t, 1.0, h.Edges[0])
	assert.Equal(t, 5.0, h.Edges[len(h.Edges)-1])
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 9, total)
	assert.Len(t, h.KDEX, kdePoints)
	assert.Equal(t, 1.0, h.KDEX[0])
	assert.Equal(t, 5.0, h.KDEX[kdePoints-1])
}

func TestHistogramSingleValue(t *testing.T) {
	fig, err := Build(table(t, "v\n7\n7\n"), Request{Kind: KindHistogram, X: "v"})
	require.NoError(t, err)
	assert.Equal(t, []float64{6.5, 7.5}, fig.Hist.Edges)
	assert.Equal(t, []int{2}, fig.Hist.Counts)
	assert.Empty(t, fig.Hist.KDEX)
}

func TestBinIndex(t *testing.T) {
	edges := []float64{0, 1, 2, 3}
	assert.Equal(t, 0, binIndex(edges, 0))
	assert.Equal(t, 0, binIndex(edges, 0.5))
	assert.Equal(t, 1, binIndex(edges, 1))
	assert.Equal(t, 2, binIndex(edges, 2.9))
	assert.Equal(t, 2, binIndex(edges, 3))
}

func TestScatterDropsIncompletePairs(t *testing.T) {
	fig, err := Build(table(t, salesCSV), Request{Kind: KindScatter, X: "sales", Y: "units"})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30, 25}, fig.Scatter.X)
	assert.Equal(t, []float64{1, 3, 2, 5}, fig.Scatter.Y)
}

func TestBoxGroupsInFirstAppearanceOrder(t *testing.T) {
	fig, err := Build(table(t, salesCSV), Request{Kind: KindBox, X: "region", Y: "sales"})
	require.NoError(t, err)
	require.Len(t, fig.Box.Groups, 2)
	assert.Equal(t, "east", fig.Box.Groups[0].Label)
	assert.Equal(t, "west", fig.Box.Groups[1].Label)
	assert.Equal(t, 2, fig.Box.Groups[0].N)
	assert.InDelta(t, 20, fig.Box.Groups[0].Median, 1e-12)
	assert.InDelta(t, 22.5, fig.Box.Groups[1].Median, 1e-12)
}

func TestBoxWhiskersAndOutliers(t *testing.T) {
	g := summarizeGroup("g", []float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	assert.InDelta(t, 3, g.Q1, 1e-12)
	assert.InDelta(t, 7, g.Q3, 1e-12)
	assert.Equal(t, 1.0, g.WhiskerLow)
	assert.Equal(t, 8.0, g.WhiskerHigh)
	assert.Equal(t, []float64{100}, g.Outliers)
}

func TestSelectionErrors(t *testing.T) {
	tbl := table(t, salesCSV)
	tests := []struct {
		name string
		req  Request
	}{
		{"histogram on categorical", Request{Kind: KindHistogram, X: "region"}},
		{"histogram unknown column", Request{Kind: KindHistogram, X: "nope"}},
		{"scatter missing y", Request{Kind: KindScatter, X: "sales"}},
		{"box numeric x", Request{Kind: KindBox, X: "sales", Y: "units"}},
		{"box categorical y", Request{Kind: KindBox, X: "region", Y: "region"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tbl, tc.req)
			var se *SelectionError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestNoData(t *testing.T) {
	_, err := Build(table(t, "a,b\n1,\n,2\n"), Request{Kind: KindScatter, X: "a", Y: "b"})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = Build(nil, Request{Kind: KindHistogram, X: "a"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDefaults(t *testing.T) {
	reqs := Defaults(analysis.Classify(table(t, salesCSV)))
	require.Len(t, reqs, 4)
	assert.Equal(t, Request{Kind: KindHistogram, X: "sales"}, reqs[0])
	assert.Equal(t, Request{Kind: KindBox, X: "region", Y: "sales"}, reqs[2])

	reqs = Defaults(analysis.Classify(table(t, "a\nx\n")))
	require.Len(t, reqs, 1)
	assert.Equal(t, KindHeatmap, reqs[0].Kind)
}

func TestCaptions(t *testing.T) {
	assert.Equal(t, "Plotting histogram for: sales", Request{Kind: KindHistogram, X: "sales"}.Caption())
	assert.Equal(t, "Plotting scatter plot: a vs. b", Request{Kind: KindScatter, X: "a", Y: "b"}.Caption())
	assert.Equal(t, "Plotting boxplot: sales by region", Request{Kind: KindBox, X: "region", Y: "sales"}.Caption())
}

func TestRenderPNG(t *testing.T) {
	tbl := table(t, salesCSV)
	for _, req := range Defaults(analysis.Classify(tbl)) {
		t.Run(string(req.Kind), func(t *testing.T) {
			img, err := Render(tbl, req, Options{Width: 400, Height: 300})
			require.NoError(t, err)
			assert.Equal(t, "image/png", img.ContentType())
			assert.True(t, bytes.HasPrefix(img.Data, pngMagic))
			assert.Equal(t, req.Caption(), img.Caption)
		})
	}
}

func TestRenderSVG(t *testing.T) {
	img, err := Render(table(t, salesCSV), Request{Kind: KindHeatmap}, Options{Format: FormatSVG})
	require.NoError(t, err)
	assert.Contains(t, string(img.Data), "<svg")
}

func TestHeatmapManyColumnsGrowsCanvas(t *testing.T) {
	const cols = 120
	var b strings.Builder
	for j := 0; j < cols; j++ {
		if j > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "c%d", j)
	}
	b.WriteByte('\n')
	for row := 0; row < 6; row++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", (row*(j+1))%7+row)
		}
		b.WriteByte('\n')
	}

	img, err := Render(table(t, b.String()), Request{Kind: KindHeatmap}, DefaultOptions())
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cfg.Width, cols*minHeatmapCell)
	assert.GreaterOrEqual(t, cfg.Height, cols*minHeatmapCell)
}

func TestNonFiniteValuesAreNotPlotted(t *testing.T) {
	tbl := table(t, "g,a,b\nx,1,2\ny,inf,3\nx,3,-Infinity\ny,4,5\n")

	fig, err := Build(tbl, Request{Kind: KindHistogram, X: "a"})
	require.NoError(t, err)
	total := 0
	for _, c := range fig.Hist.Counts {
		total += c
	}
	assert.Equal(t, 3, total)
	for _, e := range fig.Hist.Edges {
		assert.False(t, math.IsInf(e, 0) || math.IsNaN(e))
	}

	fig, err = Build(tbl, Request{Kind: KindScatter, X: "a", Y: "b"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4}, fig.Scatter.X)

	for _, req := range []Request{
		{Kind: KindHistogram, X: "a"},
		{Kind: KindScatter, X: "a", Y: "b"},
		{Kind: KindBox, X: "g", Y: "b"},
	} {
		_, err := Render(tbl, req, DefaultOptions())
		assert.NoError(t, err, req.Kind)
	}
}

func TestDivergingColor(t *testing.T) {
	assert.Equal(t, coolwarm[0], divergingColor(-1))
	assert.Equal(t, coolwarm[2], divergingColor(0))
	assert.Equal(t, coolwarm[4], divergingColor(1))
	assert.Equal(t, coolwarm[4], divergingColor(3))
	assert.False(t, divergingColor(math.NaN()).IsZero())
}

func TestParseKindAndFormat(t *testing.T) {
	k, err := ParseKind("BoxPlot")
	require.NoError(t, err)
	assert.Equal(t, KindBox, k)
	_, err = ParseKind("pie")
	assert.Error(t, err)
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
