package analysis

import (
	"errors"
	"math"
	"sort"

	"github.com/KaramelBytes/csvscope/internal/dataset"
)

// ErrInsufficientColumns is returned when fewer than two numeric columns exist.
var ErrInsufficientColumns = errors.New("correlation needs at least 2 numeric columns")

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is one off-diagonal entry.
type PairCorr struct {
	A, B string
	R    float64
}

// pairAcc accumulates centered co-moments (Welford), so large offsets such as
// epoch timestamps do not cancel out.
type pairAcc struct {
	n   float64
	mx  float64
	my  float64
	m2x float64
	m2y float64
	cxy float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	dx := x - pa.mx
	pa.mx += dx / pa.n
	dy := y - pa.my
	pa.my += dy / pa.n
	pa.m2x += dx * (x - pa.mx)
	pa.m2y += dy * (y - pa.my)
	pa.cxy += dx * (y - pa.my)
}

func (pa *pairAcc) r() float64 {
	if pa.n < 2 || pa.m2x <= 0 || pa.m2y <= 0 {
		return math.NaN()
	}
	r := pa.cxy / math.Sqrt(pa.m2x*pa.m2y)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Correlate computes Pearson correlations among all numeric columns using
// pairwise-complete observations. The diagonal is 1; undefined pairs are NaN.
func Correlate(t *dataset.Table) (*CorrMatrix, error) {
	var cols []*dataset.Column
	if t != nil {
		for _, c := range t.Columns {
			if c.Kind == dataset.KindNumeric {
				cols = append(cols, c)
			}
		}
	}
	if len(cols) < 2 {
		return nil, ErrInsufficientColumns
	}
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 1; a < n; a++ {
		for b := 0; b < a; b++ {
			var pa pairAcc
			ca, cb := cols[a], cols[b]
			for row := 0; row < t.Rows; row++ {
				if ca.Null[row] || cb.Null[row] {
					continue
				}
				pa.add(ca.Floats[row], cb.Floats[row])
			}
			r := pa.r()
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m, nil
}

// Pairs returns the upper-triangle entries ordered by |r| descending; NaN pairs sort last.
func (m *CorrMatrix) Pairs() []PairCorr {
	var out []PairCorr
	for i := 0; i < len(m.Columns); i++ {
		for j := i + 1; j < len(m.Columns); j++ {
			out = append(out, PairCorr{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].R), math.Abs(out[j].R)
		switch {
		case math.IsNaN(ai):
			return false
		case math.IsNaN(aj):
			return true
		}
		return ai > aj
	})
	return out
}
