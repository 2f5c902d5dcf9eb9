package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"sales-insights/internal/analytics"
	"sales-insights/internal/reports"
)

// NASentinel is printed wherever a derived ratio is undefined. It is the
// documented stand-in for a zero-denominator average; NaN never appears in
// output.
const NASentinel = "n/a"

// TableWriter prints each summary as a console table next to its chart.
type TableWriter struct {
	out io.Writer
}

func NewTableWriter(out io.Writer) *TableWriter {
	return &TableWriter{out: out}
}

func (t *TableWriter) Write(spec reports.Spec, summary analytics.Summary) error {
	table := tablewriter.NewWriter(t.out)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(headers(spec))

	var totalSum float64
	var totalCount int
	for _, g := range summary.Groups {
		table.Append(row(spec, g))
		totalSum += g.Sum
		totalCount += g.Count
	}

	if spec.Measure == reports.MeasureSum || spec.Measure == reports.MeasureCount {
		table.SetFooter(footer(spec, totalSum, totalCount))
	}
	if spec.Measure == reports.MeasureRepeatRate {
		table.SetFooter(repeatRateFooter(spec, summary))
	}

	fmt.Fprintf(t.out, "%s\n", spec.Title)
	table.Render()
	fmt.Fprintln(t.out)
	return nil
}

func headers(spec reports.Spec) []string {
	h := make([]string, 0, 3)
	for _, dim := range spec.GroupBy {
		h = append(h, dimensionLabel(dim))
	}
	if len(h) == 0 {
		h = append(h, "Customers")
	}
	switch spec.Measure {
	case reports.MeasureCount:
		h = append(h, "Orders")
	case reports.MeasureAvg:
		h = append(h, "Avg Sales")
	case reports.MeasureRepeatRate:
		h = append(h, "Count")
	default:
		h = append(h, "Sales")
	}
	return h
}

func row(spec reports.Spec, g analytics.Group) []string {
	cells := make([]string, 0, 3)
	cells = append(cells, g.Key)
	if len(spec.GroupBy) == 2 {
		cells = append(cells, g.SubKey)
	}

	switch spec.Measure {
	case reports.MeasureCount, reports.MeasureRepeatRate:
		cells = append(cells, strconv.Itoa(g.Count))
	case reports.MeasureAvg:
		if avg, ok := g.Avg(); ok {
			cells = append(cells, fmt.Sprintf("%.2f", avg))
		} else {
			cells = append(cells, NASentinel)
		}
	default:
		cells = append(cells, fmt.Sprintf("%.2f", g.Sum))
	}
	return cells
}

func footer(spec reports.Spec, totalSum float64, totalCount int) []string {
	f := make([]string, 0, 3)
	f = append(f, "Total")
	if len(spec.GroupBy) == 2 {
		f = append(f, "")
	}
	if spec.Measure == reports.MeasureCount {
		f = append(f, strconv.Itoa(totalCount))
	} else {
		f = append(f, fmt.Sprintf("%.2f", totalSum))
	}
	return f
}

func repeatRateFooter(spec reports.Spec, summary analytics.Summary) []string {
	repeat, total := 0, 0
	for _, g := range summary.Groups {
		total += g.Count
		if g.Key == reports.RepeatCustomersLabel {
			repeat = g.Count
		}
	}
	if total == 0 {
		return []string{"Repeat rate", NASentinel}
	}
	return []string{"Repeat rate", fmt.Sprintf("%.1f%%", float64(repeat)/float64(total)*100)}
}

func dimensionLabel(dim string) string {
	parts := strings.Split(dim, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
