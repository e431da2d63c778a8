package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/csvscope/internal/dataset"
)

// headRows is the number of rows included in the text report.
const headRows = 5

// Report is a read-only summary of a Table.
type Report struct {
	Name     string
	Rows     int
	Stats    []NumericStats
	Schema   []SchemaRow
	Corr     *CorrMatrix
	Samples  [][]string
	Warnings []string
	// MemoryBytes is a rough footprint estimate (8 bytes per cell plus the index).
	MemoryBytes int64
	// MemoryDeep is false when object columns make the estimate a lower bound.
	MemoryDeep bool
}

// SchemaRow describes one column.
type SchemaRow struct {
	Index   int
	Name    string
	Kind    dataset.Kind
	Dtype   string
	NonNull int
}

// Summarize computes statistics for every numeric column and a schema row for every column.
func Summarize(t *dataset.Table) *Report {
	if t == nil {
		return &Report{}
	}
	rep := &Report{Name: t.Name, Rows: t.Rows, MemoryDeep: true}
	for i, c := range t.Columns {
		rep.Schema = append(rep.Schema, SchemaRow{
			Index:   i,
			Name:    c.Name,
			Kind:    c.Kind,
			Dtype:   c.Dtype(),
			NonNull: c.NonNull(),
		})
		if c.Kind == dataset.KindNumeric {
			rep.Stats = append(rep.Stats, Describe(c.Name, c.Numbers()))
		} else {
			rep.MemoryDeep = false
		}
	}
	rep.MemoryBytes = 128 + int64(len(t.Columns))*int64(t.Rows)*8
	if m, err := Correlate(t); err == nil {
		rep.Corr = m
	}
	rep.Samples = dataset.Head(t, headRows)
	if t.Truncated > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("dataset truncated: %d rows beyond the row limit were dropped", t.Truncated))
	}
	if len(rep.Stats) == 0 && len(t.Columns) > 0 {
		rep.Warnings = append(rep.Warnings, "no numeric columns; statistics table is empty")
	}
	return rep
}

// Markdown renders a compact text report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Schema)))

	b.WriteString("[SCHEMA]\n")
	for _, s := range r.Schema {
		missing := r.Rows - s.NonNull
		missPct := 0.0
		if r.Rows > 0 {
			missPct = float64(missing) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s, %s (non-null %d, missing %.1f%%)\n", safeName(s.Name), s.Kind, s.Dtype, s.NonNull, missPct))
	}

	if len(r.Stats) > 0 {
		b.WriteString("\n[STATISTICS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Stats {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				safeVal(safeName(s.Column)), s.Count,
				FormatFloat(s.Mean), FormatFloat(s.Std), FormatFloat(s.Min),
				FormatFloat(s.Q25), FormatFloat(s.Q50), FormatFloat(s.Q75), FormatFloat(s.Max)))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		pairs := r.Corr.Pairs()
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%s\n", p.A, p.B, formatR(p.R)))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD]\n")
		b.WriteString("| ")
		for i, s := range r.Schema {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(safeName(s.Name)))
		}
		b.WriteString(" |\n| ")
		for i := range r.Schema {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Schema {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Info renders the schema block in the layout of a dataframe info dump.
func (r *Report) Info() string {
	var b strings.Builder
	if r.Rows > 0 {
		b.WriteString(fmt.Sprintf("RangeIndex: %d entries, 0 to %d\n", r.Rows, r.Rows-1))
	} else {
		b.WriteString("RangeIndex: 0 entries\n")
	}
	b.WriteString(fmt.Sprintf("Data columns (total %d columns):\n", len(r.Schema)))

	nameW := len("Column")
	for _, s := range r.Schema {
		if n := len(s.Name); n > nameW {
			nameW = n
		}
	}
	idxW := len(fmt.Sprint(len(r.Schema))) + 1
	if idxW < 2 {
		idxW = 2
	}
	countW := len("Non-Null Count")
	row := func(idx, name, count, dtype string) {
		b.WriteString(fmt.Sprintf(" %-*s %-*s  %-*s  %s\n", idxW, idx, nameW, name, countW, count, dtype))
	}
	row("#", "Column", "Non-Null Count", "Dtype")
	row(strings.Repeat("-", idxW-1), strings.Repeat("-", len("Column")), strings.Repeat("-", countW), "-----")
	dtypes := map[string]int{}
	for _, s := range r.Schema {
		row(fmt.Sprint(s.Index), s.Name, fmt.Sprintf("%d non-null", s.NonNull), s.Dtype)
		dtypes[s.Dtype]++
	}

	keys := make([]string, 0, len(dtypes))
	for k := range dtypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s(%d)", k, dtypes[k])
	}
	b.WriteString("dtypes: " + strings.Join(parts, ", ") + "\n")
	plus := "+"
	if r.MemoryDeep {
		plus = ""
	}
	b.WriteString(fmt.Sprintf("memory usage: %s%s\n", humanBytes(r.MemoryBytes), plus))
	return b.String()
}

// FormatFloat renders a statistic the way the report tables show it.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6g", v)
}

func formatR(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.3f", v)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	v := float64(n)
	for _, suffix := range []string{"KB", "MB", "GB"} {
		v /= unit
		if v < unit || suffix == "GB" {
			return fmt.Sprintf("%.1f %s", v, suffix)
		}
	}
	return fmt.Sprintf("%d bytes", n)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
