package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFilter(t *testing.T) {
	tbl, err := ParseCSV("s.csv", []byte("region,sales,code\neast,10,A\nwest,20,B\neast,30,x\nnorth,,A\n"), Options{})
	require.NoError(t, err)

	tests := []struct {
		expr string
		rows int
	}{
		{`region == "east"`, 2},
		{`region != "east"`, 2},
		{`sales == 20`, 1},
		{`region == "east" and code == "A"`, 1},
		{`code matches "^[AB]$"`, 3},
		{"", 4},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			out, err := ApplyFilter(tbl, tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.rows, out.Rows)
		})
	}
}

func TestApplyFilterReinfersKinds(t *testing.T) {
	tbl, err := ParseCSV("k.csv", []byte("g,v\na,1\nb,x\n"), Options{})
	require.NoError(t, err)
	v, _ := tbl.Column("v")
	require.Equal(t, KindCategorical, v.Kind)

	out, err := ApplyFilter(tbl, `g == "a"`)
	require.NoError(t, err)
	v, _ = out.Column("v")
	assert.Equal(t, KindNumeric, v.Kind)
	assert.Equal(t, []float64{1}, v.Numbers())
}

func TestApplyFilterInvalidExpression(t *testing.T) {
	tbl, err := ParseCSV("k.csv", []byte("g\na\n"), Options{})
	require.NoError(t, err)
	_, err = ApplyFilter(tbl, `g ==`)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestApplyFilterRejectsOrderingOperators(t *testing.T) {
	tbl, err := ParseCSV("s.csv", []byte("region,sales\neast,10\nwest,20\n"), Options{})
	require.NoError(t, err)
	_, err = ApplyFilter(tbl, `sales > 15`)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), FilterOperators)
}
