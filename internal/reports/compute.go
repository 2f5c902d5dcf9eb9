package reports

import (
	"sales-insights/internal/analytics"
	"sales-insights/internal/models"
)

// Labels used by the repeat-customer breakdown.
const (
	RepeatCustomersLabel  = "Repeat customers"
	OneTimeCustomersLabel = "One-time customers"
)

// SortKeyFor maps a report measure to the summary sort key.
func SortKeyFor(m Measure) analytics.SortKey {
	switch m {
	case MeasureCount, MeasureRepeatRate:
		return analytics.ByCount
	case MeasureAvg:
		return analytics.ByAvg
	default:
		return analytics.BySum
	}
}

// Compute builds the summary for one report from the cleaned table. Every
// report reads the same immutable slice, so computations are independent and
// safe to run concurrently.
func Compute(spec Spec, rows []models.Transaction) (analytics.Summary, error) {
	if spec.Measure == MeasureRepeatRate {
		return computeRepeatBreakdown(spec, rows), nil
	}

	keyFn, err := Dimension(spec.GroupBy[0])
	if err != nil {
		return analytics.Summary{}, err
	}

	var subKeyFn analytics.KeyFunc
	if len(spec.GroupBy) == 2 {
		subKeyFn, err = Dimension(spec.GroupBy[1])
		if err != nil {
			return analytics.Summary{}, err
		}
	}

	summary := analytics.Aggregate(spec.Name, rows, keyFn, subKeyFn)

	if spec.TopN > 0 {
		summary = analytics.TopN(summary, spec.TopN, SortKeyFor(spec.Measure))
	}

	switch spec.Sort {
	case SortKeyOrder:
		summary = analytics.SortByKeyOrder(summary, KeyOrder(spec.GroupBy[0]))
	default:
		summary = analytics.SortDesc(summary, SortKeyFor(spec.Measure))
	}

	return summary, nil
}

// computeRepeatBreakdown partitions customers into repeat and one-time
// buckets. Counts are customer counts, not row counts.
func computeRepeatBreakdown(spec Spec, rows []models.Transaction) analytics.Summary {
	perCustomer := analytics.Aggregate(spec.Name, rows,
		func(tx models.Transaction) string { return tx.CustomerID }, nil)

	repeat := 0
	for _, g := range perCustomer.Groups {
		if g.Count > 1 {
			repeat++
		}
	}
	total := len(perCustomer.Groups)

	return analytics.Summary{
		Name: spec.Name,
		Groups: []analytics.Group{
			{Key: RepeatCustomersLabel, Count: repeat},
			{Key: OneTimeCustomersLabel, Count: total - repeat},
		},
	}
}
