package analysis

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvscope/internal/dataset"
)

func mustTable(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ParseCSV("t.csv", []byte(csv), dataset.Options{})
	require.NoError(t, err)
	return tbl
}

func TestRoundTripIntFloatString(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b,c\n")
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "%d,%.2f,item%d\n", i, float64(i)*0.5+0.25, i%7)
	}
	tbl := mustTable(t, b.String())
	require.Equal(t, 100, tbl.Rows)

	cs := Classify(tbl)
	assert.Equal(t, []string{"a", "b"}, cs.Numeric)
	assert.Equal(t, []string{"c"}, cs.Categorical)

	rep := Summarize(tbl)
	require.Len(t, rep.Stats, 2)
	assert.Equal(t, "a", rep.Stats[0].Column)
	assert.Equal(t, 100, rep.Stats[0].Count)
	assert.InDelta(t, 49.5, rep.Stats[0].Mean, 1e-9)
	assert.InDelta(t, 24.75, rep.Stats[0].Q25, 1e-9)
	assert.InDelta(t, 49.5, rep.Stats[0].Q50, 1e-9)
	assert.InDelta(t, 74.25, rep.Stats[0].Q75, 1e-9)
	assert.InDelta(t, 29.011492, rep.Stats[0].Std, 1e-6)

	require.Len(t, rep.Schema, 3)
	assert.Equal(t, "int64", rep.Schema[0].Dtype)
	assert.Equal(t, "float64", rep.Schema[1].Dtype)
	assert.Equal(t, "object", rep.Schema[2].Dtype)
	assert.Equal(t, 100, rep.Schema[2].NonNull)
}

func TestClassifyDisjointAndExhaustive(t *testing.T) {
	tbl := mustTable(t, "x,y,z,w\n1,a,,2.5\n2,b,,x\n")
	cs := Classify(tbl)
	all := append(append([]string{}, cs.Numeric...), cs.Categorical...)
	assert.ElementsMatch(t, tbl.Names(), all)
	for _, n := range cs.Numeric {
		assert.False(t, cs.IsCategorical(n))
	}
	assert.Equal(t, []string{"x"}, cs.Numeric)
	assert.True(t, cs.IsCategorical("z"), "all-null column is categorical")
}

func TestSummarizeNoNumericColumns(t *testing.T) {
	rep := Summarize(mustTable(t, "a,b\nx,y\n"))
	assert.Empty(t, rep.Stats)
	assert.Len(t, rep.Schema, 2)
	assert.Nil(t, rep.Corr)
}

func TestSummarizeNullsAndSingleValue(t *testing.T) {
	rep := Summarize(mustTable(t, "v,w\n1,\n,7\n3,\n"))
	require.Len(t, rep.Stats, 2)
	assert.Equal(t, 2, rep.Stats[0].Count)
	assert.InDelta(t, 2, rep.Stats[0].Mean, 1e-12)
	assert.Equal(t, "float64", rep.Schema[0].Dtype, "nulls force float storage")
	assert.Equal(t, 1, rep.Stats[1].Count)
	assert.True(t, math.IsNaN(rep.Stats[1].Std), "std undefined for a single value")
	assert.Equal(t, 7.0, rep.Stats[1].Min)
}

func TestQuantile(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(s, 0))
	assert.InDelta(t, 1.75, Quantile(s, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(s, 0.5), 1e-12)
	assert.Equal(t, 4.0, Quantile(s, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestCorrelate(t *testing.T) {
	_, err := Correlate(mustTable(t, "a,b\n1,x\n2,y\n"))
	assert.ErrorIs(t, err, ErrInsufficientColumns)

	m, err := Correlate(mustTable(t, "a,b,c\n1,2,5\n2,4,5\n3,6,5\n4,8,5\n"))
	require.NoError(t, err)
	require.Len(t, m.Values, 3)
	for i := range m.Values {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Values {
			if i != j && !math.IsNaN(m.Values[i][j]) {
				assert.Equal(t, m.Values[i][j], m.Values[j][i])
			}
		}
	}
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	assert.True(t, math.IsNaN(m.Values[0][2]), "zero variance yields NaN")

	pairs := m.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, "a", pairs[0].A)
	assert.Equal(t, "b", pairs[0].B)
}

func TestCorrelatePairwiseComplete(t *testing.T) {
	m, err := Correlate(mustTable(t, "a,b\n1,1\n2,\n3,3\n,9\n5,4\n"))
	require.NoError(t, err)
	// rows (1,1) (3,3) (5,4)
	assert.InDelta(t, 0.9819805, m.Values[0][1], 1e-6)
}

func TestCorrelateLargeOffsets(t *testing.T) {
	var b strings.Builder
	b.WriteString("ts,v,w\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%d,%d,%d\n", 1700000000+i, i, -3*i)
	}
	m, err := Correlate(mustTable(t, b.String()))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	assert.InDelta(t, -1.0, m.Values[0][2], 1e-9)
	assert.InDelta(t, -1.0, m.Values[1][2], 1e-9)
}

func TestMarkdownSections(t *testing.T) {
	tbl, err := dataset.ParseCSV("sales.csv", []byte("region,sales,units\neast,10,1\nwest,20,3\neast,30,2\n"), dataset.Options{MaxRows: 2})
	require.NoError(t, err)
	md := Summarize(tbl).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]", "File: sales.csv", "Rows: 2",
		"[SCHEMA]", "- region: categorical, object (non-null 2, missing 0.0%)",
		"[STATISTICS]", "| sales | 2 | 15 |",
		"[CORRELATIONS]", "- sales ~ units: r=1.000",
		"[HEAD]", "| east | 10 | 1 |",
		"[NOTES]", "truncated",
	} {
		assert.Contains(t, md, want)
	}
}

func TestInfo(t *testing.T) {
	info := Summarize(mustTable(t, "a,b,c\n1,1.5,x\n2,,y\n")).Info()
	assert.Contains(t, info, "RangeIndex: 2 entries, 0 to 1")
	assert.Contains(t, info, "Data columns (total 3 columns):")
	assert.Contains(t, info, "2 non-null")
	assert.Contains(t, info, "1 non-null")
	assert.Contains(t, info, "dtypes: float64(1), int64(1), object(1)")
	assert.Contains(t, info, "memory usage: 176 bytes+")
}
