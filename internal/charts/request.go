package charts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/csvscope/internal/analysis"
)

// Kind names a chart type.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindBox       Kind = "box"
	KindHeatmap   Kind = "heatmap"
)

// Kinds lists the chart kinds in page order.
var Kinds = []Kind{KindHistogram, KindScatter, KindBox, KindHeatmap}

// ParseKind accepts a kind name, case-insensitively. "boxplot" is an alias of box.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "histogram", "hist":
		return KindHistogram, nil
	case "scatter":
		return KindScatter, nil
	case "box", "boxplot":
		return KindBox, nil
	case "heatmap", "corr":
		return KindHeatmap, nil
	}
	return "", fmt.Errorf("unknown chart kind %q (want histogram, scatter, box or heatmap)", s)
}

// Request selects a chart kind and the columns it operates on.
// Histogram uses X; scatter uses X and Y; box uses X (categorical) and Y (numeric).
// Heatmap uses every numeric column and ignores X and Y.
type Request struct {
	Kind Kind
	X    string
	Y    string
}

// Caption names the selected columns.
func (r Request) Caption() string {
	switch r.Kind {
	case KindHistogram:
		return "Plotting histogram for: " + r.X
	case KindScatter:
		return fmt.Sprintf("Plotting scatter plot: %s vs. %s", r.X, r.Y)
	case KindBox:
		return fmt.Sprintf("Plotting boxplot: %s by %s", r.Y, r.X)
	case KindHeatmap:
		return "Correlation heatmap"
	}
	return string(r.Kind)
}

// ErrNoData is returned when the selected columns hold no complete values.
var ErrNoData = errors.New("no data to plot")

// InsufficientColumnsError reports that a heatmap needs more numeric columns.
// It is informational rather than a failure of the page.
type InsufficientColumnsError struct {
	Have int
}

func (e *InsufficientColumnsError) Error() string {
	return "You need at least two numeric columns to create a correlation heatmap."
}

// Is lets errors.Is match analysis.ErrInsufficientColumns.
func (e *InsufficientColumnsError) Is(target error) bool {
	return target == analysis.ErrInsufficientColumns
}

// SelectionError reports a column that is unknown or of the wrong kind.
type SelectionError struct {
	Kind   Kind
	Column string
	Reason string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: column %q %s", e.Kind, e.Column, e.Reason)
}

// Validate checks the request against the column partition.
func (r Request) Validate(cs analysis.ColumnSet) error {
	numeric := func(name string) error {
		if name == "" {
			return &SelectionError{Kind: r.Kind, Column: name, Reason: "is required"}
		}
		if cs.IsNumeric(name) {
			return nil
		}
		if cs.IsCategorical(name) {
			return &SelectionError{Kind: r.Kind, Column: name, Reason: "is not numeric"}
		}
		return &SelectionError{Kind: r.Kind, Column: name, Reason: "does not exist"}
	}
	switch r.Kind {
	case KindHistogram:
		return numeric(r.X)
	case KindScatter:
		if err := numeric(r.X); err != nil {
			return err
		}
		return numeric(r.Y)
	case KindBox:
		switch {
		case r.X == "":
			return &SelectionError{Kind: r.Kind, Column: r.X, Reason: "is required"}
		case cs.IsNumeric(r.X):
			return &SelectionError{Kind: r.Kind, Column: r.X, Reason: "is not categorical"}
		case !cs.IsCategorical(r.X):
			return &SelectionError{Kind: r.Kind, Column: r.X, Reason: "does not exist"}
		}
		return numeric(r.Y)
	case KindHeatmap:
		if len(cs.Numeric) < 2 {
			return &InsufficientColumnsError{Have: len(cs.Numeric)}
		}
		return nil
	}
	return fmt.Errorf("unknown chart kind %q", r.Kind)
}

// Defaults returns one request per chart kind whose selection lists are non-empty,
// each selecting the first entry of its list. Kinds with an empty list are omitted;
// the heatmap is always included.
func Defaults(cs analysis.ColumnSet) []Request {
	var out []Request
	if len(cs.Numeric) > 0 {
		out = append(out,
			Request{Kind: KindHistogram, X: cs.Numeric[0]},
			Request{Kind: KindScatter, X: cs.Numeric[0], Y: cs.Numeric[0]},
		)
		if len(cs.Categorical) > 0 {
			out = append(out, Request{Kind: KindBox, X: cs.Categorical[0], Y: cs.Numeric[0]})
		}
	}
	out = append(out, Request{Kind: KindHeatmap})
	return out
}
