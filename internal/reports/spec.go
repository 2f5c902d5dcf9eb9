package reports

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"sales-insights/internal/analytics"
	"sales-insights/internal/errors"
	"sales-insights/internal/models"
)

type Measure string

const (
	MeasureSum        Measure = "sum"
	MeasureCount      Measure = "count"
	MeasureAvg        Measure = "avg"
	MeasureRepeatRate Measure = "repeat_rate"
)

type ChartType string

const (
	ChartBar        ChartType = "bar"
	ChartLine       ChartType = "line"
	ChartPie        ChartType = "pie"
	ChartStackedBar ChartType = "stacked_bar"
)

type SortMode string

const (
	SortValueDesc SortMode = "value_desc"
	SortKeyOrder  SortMode = "key_order"
)

// Spec defines one summary: which dimension(s) partition the rows, which
// measure each partition carries, and how the result is presented.
type Spec struct {
	Name    string    `yaml:"name"`
	Title   string    `yaml:"title"`
	GroupBy []string  `yaml:"group_by"`
	Measure Measure   `yaml:"measure"`
	Sort    SortMode  `yaml:"sort"`
	TopN    int       `yaml:"top_n"` // 0 keeps every group
	Chart   ChartType `yaml:"chart"`
	Output  string    `yaml:"output"` // filename slug, extension added by the renderer
}

// Dimension resolves a dimension name to its key extractor.
func Dimension(name string) (analytics.KeyFunc, error) {
	switch name {
	case "state":
		return func(tx models.Transaction) string { return tx.State }, nil
	case "city":
		return func(tx models.Transaction) string { return tx.City }, nil
	case "category":
		return func(tx models.Transaction) string { return tx.Category }, nil
	case "sub_category":
		return func(tx models.Transaction) string { return tx.SubCategory }, nil
	case "segment":
		return func(tx models.Transaction) string { return tx.Segment }, nil
	case "customer":
		return func(tx models.Transaction) string { return tx.CustomerName }, nil
	case "customer_id":
		return func(tx models.Transaction) string { return tx.CustomerID }, nil
	case "region":
		return func(tx models.Transaction) string { return tx.Region }, nil
	case "month":
		return func(tx models.Transaction) string { return tx.Month.String() }, nil
	case "weekday":
		return func(tx models.Transaction) string { return tx.Weekday.String() }, nil
	case "season":
		return func(tx models.Transaction) string { return tx.Season }, nil
	case "year":
		return func(tx models.Transaction) string { return strconv.Itoa(tx.Year) }, nil
	default:
		return nil, fmt.Errorf("unknown dimension %q", name)
	}
}

// KeyOrder returns the fixed presentation order of a calendar dimension, or
// nil when the dimension has no inherent order.
func KeyOrder(dimension string) []string {
	switch dimension {
	case "month":
		return analytics.MonthOrder()
	case "weekday":
		return analytics.WeekdayOrder()
	case "season":
		return analytics.SeasonOrder
	default:
		return nil
	}
}

func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("report name cannot be empty")
	}
	if s.Output == "" {
		return fmt.Errorf("report %q: output slug cannot be empty", s.Name)
	}

	switch s.Measure {
	case MeasureSum, MeasureCount, MeasureAvg:
	case MeasureRepeatRate:
		if len(s.GroupBy) != 0 {
			return fmt.Errorf("report %q: repeat_rate derives its own per-customer grouping", s.Name)
		}
	case "":
		return fmt.Errorf("report %q: measure cannot be empty", s.Name)
	default:
		return fmt.Errorf("report %q: unknown measure %q", s.Name, s.Measure)
	}

	if s.Measure != MeasureRepeatRate {
		if len(s.GroupBy) == 0 || len(s.GroupBy) > 2 {
			return fmt.Errorf("report %q: group_by needs one or two dimensions, got %d", s.Name, len(s.GroupBy))
		}
		for _, dim := range s.GroupBy {
			if _, err := Dimension(dim); err != nil {
				return fmt.Errorf("report %q: %w", s.Name, err)
			}
		}
		if len(s.GroupBy) == 2 && s.Chart != ChartStackedBar {
			return fmt.Errorf("report %q: two dimensions require the stacked_bar chart", s.Name)
		}
	}

	switch s.Chart {
	case ChartBar, ChartLine, ChartPie:
	case ChartStackedBar:
		if len(s.GroupBy) != 2 {
			return fmt.Errorf("report %q: stacked_bar requires two dimensions", s.Name)
		}
	case "":
		return fmt.Errorf("report %q: chart type cannot be empty", s.Name)
	default:
		return fmt.Errorf("report %q: unknown chart type %q", s.Name, s.Chart)
	}

	switch s.Sort {
	case SortValueDesc, SortKeyOrder, "":
	default:
		return fmt.Errorf("report %q: unknown sort mode %q", s.Name, s.Sort)
	}

	if s.TopN < 0 {
		return fmt.Errorf("report %q: top_n cannot be negative", s.Name)
	}

	return nil
}

// Defaults returns the built-in report set. topN caps the high-cardinality
// dimensions (state, city, sub-category, customer).
func Defaults(topN int) []Spec {
	return []Spec{
		{
			Name:    "sales_by_state",
			Title:   "Sales by State",
			GroupBy: []string{"state"},
			Measure: MeasureSum,
			TopN:    topN,
			Chart:   ChartBar,
			Output:  "sales-by-state",
		},
		{
			Name:    "sales_by_city",
			Title:   "Sales by City",
			GroupBy: []string{"city"},
			Measure: MeasureSum,
			TopN:    topN,
			Chart:   ChartBar,
			Output:  "sales-by-city",
		},
		{
			Name:    "sales_by_category",
			Title:   "Sales by Category",
			GroupBy: []string{"category"},
			Measure: MeasureSum,
			Chart:   ChartBar,
			Output:  "sales-by-category",
		},
		{
			Name:    "sales_by_sub_category",
			Title:   "Sales by Sub-Category",
			GroupBy: []string{"sub_category"},
			Measure: MeasureSum,
			TopN:    topN,
			Chart:   ChartBar,
			Output:  "sales-by-sub-category",
		},
		{
			Name:    "sales_by_segment",
			Title:   "Sales Share by Segment",
			GroupBy: []string{"segment"},
			Measure: MeasureSum,
			Chart:   ChartPie,
			Output:  "sales-by-segment",
		},
		{
			Name:    "top_customers",
			Title:   "Top Customers by Sales",
			GroupBy: []string{"customer"},
			Measure: MeasureSum,
			TopN:    topN,
			Chart:   ChartBar,
			Output:  "top-customers",
		},
		{
			Name:    "orders_by_weekday",
			Title:   "Orders by Weekday",
			GroupBy: []string{"weekday"},
			Measure: MeasureCount,
			Sort:    SortKeyOrder,
			Chart:   ChartBar,
			Output:  "orders-by-weekday",
		},
		{
			Name:    "monthly_sales",
			Title:   "Monthly Sales Trend",
			GroupBy: []string{"month"},
			Measure: MeasureSum,
			Sort:    SortKeyOrder,
			Chart:   ChartLine,
			Output:  "monthly-sales",
		},
		{
			Name:    "seasonal_sales",
			Title:   "Sales by Season",
			GroupBy: []string{"season"},
			Measure: MeasureSum,
			Sort:    SortKeyOrder,
			Chart:   ChartBar,
			Output:  "seasonal-sales",
		},
		{
			Name:    "region_share_by_year",
			Title:   "Region Share of Sales per Year",
			GroupBy: []string{"year", "region"},
			Measure: MeasureSum,
			Sort:    SortKeyOrder,
			Chart:   ChartStackedBar,
			Output:  "region-share-by-year",
		},
		{
			Name:    "avg_order_value_by_segment",
			Title:   "Average Order Value by Segment",
			GroupBy: []string{"segment"},
			Measure: MeasureAvg,
			Chart:   ChartBar,
			Output:  "avg-order-value-by-segment",
		},
		{
			Name:    "repeat_customer_rate",
			Title:   "Repeat vs One-Time Customers",
			Measure: MeasureRepeatRate,
			Chart:   ChartPie,
			Output:  "repeat-customer-rate",
		},
	}
}

type reportFile struct {
	Reports []Spec `yaml:"reports"`
}

// LoadFile reads report definitions from a YAML file, replacing the built-in
// set entirely.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigWrap(err, "read reports file")
	}

	var file reportFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ConfigWrap(err, "parse reports file")
	}
	if len(file.Reports) == 0 {
		return nil, errors.Config("reports file defines no reports")
	}

	seen := make(map[string]bool)
	for i := range file.Reports {
		if err := file.Reports[i].Validate(); err != nil {
			return nil, errors.ConfigWrap(err, "invalid report definition")
		}
		if seen[file.Reports[i].Name] {
			return nil, errors.Config(fmt.Sprintf("duplicate report name %q", file.Reports[i].Name))
		}
		seen[file.Reports[i].Name] = true
	}

	return file.Reports, nil
}
