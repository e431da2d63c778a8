package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/csvscope/internal/analysis"
	"github.com/KaramelBytes/csvscope/internal/charts"
	"github.com/KaramelBytes/csvscope/internal/dataset"
	"github.com/KaramelBytes/csvscope/internal/metrics"
)

// Form carries the widget values of one interaction.
type Form struct {
	URL        string
	Filter     string
	Upload     []byte
	UploadName string
	ShowRaw    bool
	HistX      string
	ScatterX   string
	ScatterY   string
	BoxX       string
	BoxY       string
}

// Status levels, in the order the page styles them.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Status is the message block shown above the results.
type Status struct {
	Level   string
	Message string
}

// Select is one selection widget.
type Select struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

// ChartBlock is one rendered chart section.
type ChartBlock struct {
	Kind     charts.Kind
	Title    string
	Selects  []Select
	Caption  string
	Image    *charts.Image
	Message  string // informational or error text when no image was produced
	Error    bool
	ImageURI template.URL
}

// StatsTable is the describe-style table: one column per numeric column,
// one row per statistic.
type StatsTable struct {
	Columns []string
	Rows    []StatsRow
}

// StatsRow is one statistic across every numeric column.
type StatsRow struct {
	Label  string
	Values []string
}

// Result is everything the page shows after one pipeline run.
type Result struct {
	Status  *Status
	Loaded  bool
	Header  []string
	Preview [][]string
	Stats   StatsTable
	Info    string
	Charts  []ChartBlock
}

type pipeline struct {
	opt      dataset.Options
	chartOpt charts.Options
	preview  int
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// run resolves the dataset and computes every page block. It never returns an
// error: failures become status messages or per-chart messages.
func (p *pipeline) run(ctx context.Context, f Form) *Result {
	res := &Result{}
	src := dataset.Source{Upload: f.Upload, UploadName: f.UploadName, URL: f.URL}
	if src.Empty() {
		return res
	}
	sourceLabel := "url"
	if src.Upload != nil {
		sourceLabel = "upload"
	}
	opt := p.opt
	opt.Filter = f.Filter
	t, err := dataset.Resolve(ctx, src, opt)
	if err != nil {
		res.Status = statusFor(err)
		outcome := metrics.OutcomeError
		if res.Status.Level == LevelWarning {
			outcome = metrics.OutcomeWarning
		}
		p.metrics.Load(sourceLabel, outcome)
		p.log.WithFields(logrus.Fields{"source": sourceLabel, "error": err}).Warn("dataset load failed")
		return res
	}
	p.metrics.Load(sourceLabel, metrics.OutcomeOK)
	res.Loaded = true
	res.Status = &Status{Level: LevelSuccess, Message: "Data loaded successfully!"}
	if t.Truncated > 0 {
		p.log.WithFields(logrus.Fields{"source": sourceLabel, "dropped_rows": t.Truncated}).Warn("dataset truncated")
	}

	res.Header = t.Names()
	if f.ShowRaw {
		res.Preview = dataset.Head(t, p.preview)
	}
	rep := analysis.Summarize(t)
	res.Stats = statsTable(rep.Stats)
	res.Info = rep.Info()

	cs := analysis.Classify(t)
	res.Charts = p.charts(t, cs, f)
	return res
}

func statusFor(err error) *Status {
	var (
		suffix *dataset.InvalidURLSuffixError
		fetch  *dataset.FetchError
		parse  *dataset.ParseError
	)
	switch {
	case errors.As(err, &suffix):
		return &Status{Level: LevelWarning, Message: "Please provide a valid URL ending in .csv"}
	case errors.As(err, &fetch):
		detail := fetch.Err.Error()
		if errors.As(fetch.Err, &parse) {
			detail = parseDetail(parse)
		}
		return &Status{Level: LevelError, Message: "Error reading URL: " + detail}
	case errors.As(err, &parse):
		return &Status{Level: LevelError, Message: "Error reading file: " + parseDetail(parse)}
	}
	return &Status{Level: LevelError, Message: "Error reading file: " + err.Error()}
}

// parseDetail drops the ParseError prefix, keeping the line number.
func parseDetail(e *dataset.ParseError) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func statsTable(stats []analysis.NumericStats) StatsTable {
	st := StatsTable{}
	if len(stats) == 0 {
		return st
	}
	labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	st.Rows = make([]StatsRow, len(labels))
	for i, l := range labels {
		st.Rows[i] = StatsRow{Label: l}
	}
	for _, s := range stats {
		st.Columns = append(st.Columns, s.Column)
		vals := []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max}
		for i, v := range vals {
			st.Rows[i].Values = append(st.Rows[i].Values, analysis.FormatFloat(v))
		}
	}
	return st
}

// pick returns want when it is in options, otherwise the first option.
func pick(want string, options []string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

func (p *pipeline) charts(t *dataset.Table, cs analysis.ColumnSet, f Form) []ChartBlock {
	var blocks []ChartBlock
	if len(cs.Numeric) > 0 {
		x := pick(f.HistX, cs.Numeric)
		blocks = append(blocks, p.render(t, ChartBlock{
			Kind:    charts.KindHistogram,
			Title:   "Distribution (Histogram)",
			Selects: []Select{{Name: "hist_x", Label: "Select a numeric column for the histogram:", Options: cs.Numeric, Selected: x}},
		}, charts.Request{Kind: charts.KindHistogram, X: x}))

		sx, sy := pick(f.ScatterX, cs.Numeric), pick(f.ScatterY, cs.Numeric)
		blocks = append(blocks, p.render(t, ChartBlock{
			Kind:  charts.KindScatter,
			Title: "Relationship (Scatter Plot)",
			Selects: []Select{
				{Name: "scatter_x", Label: "Select the X-axis:", Options: cs.Numeric, Selected: sx},
				{Name: "scatter_y", Label: "Select the Y-axis:", Options: cs.Numeric, Selected: sy},
			},
		}, charts.Request{Kind: charts.KindScatter, X: sx, Y: sy}))
	} else {
		p.metrics.Chart(string(charts.KindHistogram), metrics.OutcomeSkipped)
		p.metrics.Chart(string(charts.KindScatter), metrics.OutcomeSkipped)
	}

	if len(cs.Numeric) > 0 && len(cs.Categorical) > 0 {
		bx, by := pick(f.BoxX, cs.Categorical), pick(f.BoxY, cs.Numeric)
		blocks = append(blocks, p.render(t, ChartBlock{
			Kind:  charts.KindBox,
			Title: "Distribution by Category (Box Plot)",
			Selects: []Select{
				{Name: "box_x", Label: "Select a categorical column:", Options: cs.Categorical, Selected: bx},
				{Name: "box_y", Label: "Select a numeric column:", Options: cs.Numeric, Selected: by},
			},
		}, charts.Request{Kind: charts.KindBox, X: bx, Y: by}))
	} else {
		p.metrics.Chart(string(charts.KindBox), metrics.OutcomeSkipped)
	}

	blocks = append(blocks, p.render(t, ChartBlock{
		Kind:  charts.KindHeatmap,
		Title: "Correlation Heatmap",
	}, charts.Request{Kind: charts.KindHeatmap}))
	return blocks
}

func (p *pipeline) render(t *dataset.Table, b ChartBlock, req charts.Request) ChartBlock {
	img, err := charts.Render(t, req, p.chartOpt)
	var insufficient *charts.InsufficientColumnsError
	switch {
	case errors.As(err, &insufficient):
		b.Message = insufficient.Error()
		p.metrics.Chart(string(req.Kind), metrics.OutcomeSkipped)
	case err != nil:
		b.Message = err.Error()
		b.Error = true
		p.metrics.Chart(string(req.Kind), metrics.OutcomeError)
		p.log.WithFields(logrus.Fields{"kind": req.Kind, "error": err}).Warn("chart render failed")
	default:
		b.Caption = req.Caption()
		b.Image = img
		b.ImageURI = dataURI(img)
		p.metrics.Chart(string(req.Kind), metrics.OutcomeOK)
	}
	return b
}
