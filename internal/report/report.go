// Package report renders calculation results as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"statcalc/domain/calculation"
	"statcalc/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Entry is one section of a report: a result, or the error that replaced it
type Entry struct {
	Kind   calculation.Kind
	Result *calculation.Result
	Err    error
}

// Report collects the sections shown for one submission
type Report struct {
	Title   string
	Source  string
	N       int
	Entries []Entry
}

// New creates an empty report
func New(title string) *Report {
	return &Report{Title: title}
}

// Add appends a result or an error section
func (r *Report) Add(kind calculation.Kind, result *calculation.Result, err error) {
	r.Entries = append(r.Entries, Entry{Kind: kind, Result: result, Err: err})
}

// Markdown renders the report with values to two decimals
func (r *Report) Markdown() string {
	var b strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", r.Title)
	}
	if r.N > 0 {
		if r.Source != "" {
			fmt.Fprintf(&b, "Data loaded from %s: %d values\n\n", r.Source, r.N)
		} else {
			fmt.Fprintf(&b, "Data loaded: %d values\n\n", r.N)
		}
	}
	for _, e := range r.Entries {
		b.WriteString(Section(e.Kind, e.Result, e.Err))
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the markdown report to an HTML fragment
func (r *Report) HTML() []byte {
	return ToHTML(r.Markdown())
}

// Section renders a single result, or the error that replaced it, as markdown
func Section(kind calculation.Kind, res *calculation.Result, err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", capitalize(kind.Label()))

	if err != nil {
		fmt.Fprintf(&b, "> **Error:** %s\n", err.Error())
		return b.String()
	}
	if res == nil {
		b.WriteString("_no result_\n")
		return b.String()
	}

	switch {
	case res.Descriptive != nil:
		d := res.Descriptive
		fmt.Fprintf(&b, "- **Mean:** %.2f\n", d.Mean)
		fmt.Fprintf(&b, "- **Variance:** %.2f\n", d.Variance)
		fmt.Fprintf(&b, "- **Standard deviation:** %.2f\n", d.StdDev)
		if res.Summary != nil {
			b.WriteString("\n")
			b.WriteString(summaryTable(*res.Summary))
		}
	case res.Interval != nil:
		iv := res.Interval
		fmt.Fprintf(&b, "**Confidence interval (%s):** (%.2f, %.2f), Error: ±%.2f\n", levelLabel(res.Level), iv.Lower, iv.Upper, iv.MarginOfError)
	default:
		fmt.Fprintf(&b, "Required sample size (%s): **%d**\n", levelLabel(res.Level), res.SampleSize)
	}
	return b.String()
}

func summaryTable(s stats.SummaryStats) string {
	var b strings.Builder
	b.WriteString("| Min | Q1 | Median | Q3 | Max |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.2f | %.2f | %.2f | %.2f | %.2f |\n", s.Min, s.Q25, s.Median, s.Q75, s.Max)
	return b.String()
}

func levelLabel(level stats.ConfidenceLevel) string {
	if level == "" {
		return "default level"
	}
	return fmt.Sprintf("%.0f%%", level.Float()*100)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ToHTML converts markdown to HTML with tables enabled. Raw HTML in the input is dropped.
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.ToHTML([]byte(md), p, renderer)
}
