package dataset

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-bexpr"
)

// FilterOperators summarizes the filter syntax for help and error text.
const FilterOperators = "supported operators: ==, !=, in, contains, matches, and, or, not"

// ApplyFilter keeps the rows matching a boolean expression such as
// `region == "east" and sales != 0`. Only the go-bexpr operators are available:
// ==, !=, in, not in, contains, not contains, matches, not matches, combined with
// and/or/not; ordering comparisons such as > are not. Numeric cells are compared as float64 and
// categorical cells as strings; null cells compare as "". Column kinds are
// re-inferred on the filtered rows.
func ApplyFilter(t *Table, expr string) (*Table, error) {
	expr = strings.TrimSpace(expr)
	if t == nil || expr == "" {
		return t, nil
	}
	eval, err := bexpr.CreateEvaluator(expr, bexpr.WithUnknownValue(""))
	if err != nil {
		return nil, &ParseError{Source: t.Name, Err: fmt.Errorf("invalid filter (%s): %w", FilterOperators, err)}
	}

	keep := make([]int, 0, t.Rows)
	datum := make(map[string]any, len(t.Columns))
	for r := 0; r < t.Rows; r++ {
		for k := range datum {
			delete(datum, k)
		}
		for _, c := range t.Columns {
			if c.Null[r] {
				continue
			}
			if c.Kind == KindNumeric {
				datum[c.Name] = c.Floats[r]
			} else {
				datum[c.Name] = c.Values[r]
			}
		}
		ok, err := eval.Evaluate(datum)
		if err != nil {
			return nil, &ParseError{Source: t.Name, Err: fmt.Errorf("filter row %d: %w", r+1, err)}
		}
		if ok {
			keep = append(keep, r)
		}
	}

	cols := make([]*Column, len(t.Columns))
	for j, c := range t.Columns {
		values := make([]string, len(keep))
		nulls := make([]bool, len(keep))
		for i, r := range keep {
			values[i] = c.Values[r]
			nulls[i] = c.Null[r]
		}
		cols[j] = inferColumn(c.Name, values, nulls, len(keep))
	}
	out := newTable(t.Name, cols, len(keep))
	out.Truncated = t.Truncated
	return out, nil
}
