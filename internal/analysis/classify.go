package analysis

import "github.com/KaramelBytes/csvscope/internal/dataset"

// ColumnSet partitions column names by kind, each list in table order.
type ColumnSet struct {
	Numeric     []string
	Categorical []string
}

// Classify splits the table's columns into numeric and categorical names.
func Classify(t *dataset.Table) ColumnSet {
	var cs ColumnSet
	if t == nil {
		return cs
	}
	for _, c := range t.Columns {
		if c.Kind == dataset.KindNumeric {
			cs.Numeric = append(cs.Numeric, c.Name)
		} else {
			cs.Categorical = append(cs.Categorical, c.Name)
		}
	}
	return cs
}

// IsNumeric reports whether name is in the numeric set.
func (cs ColumnSet) IsNumeric(name string) bool { return contains(cs.Numeric, name) }

// IsCategorical reports whether name is in the categorical set.
func (cs ColumnSet) IsCategorical(name string) bool { return contains(cs.Categorical, name) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
