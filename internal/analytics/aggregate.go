package analytics

import (
	"cmp"
	"slices"

	"sales-insights/internal/models"
)

// KeyFunc extracts a grouping key from a transaction.
type KeyFunc func(models.Transaction) string

// Group is one partition of the source rows: every row whose key (and
// optional sub-key) matched, reduced to a sum of sales and a row count.
type Group struct {
	Key    string  `json:"key"`
	SubKey string  `json:"sub_key,omitempty"`
	Sum    float64 `json:"sum"`
	Count  int     `json:"count"`
}

// Avg returns the derived ratio sum/count. The second return is false when
// the group is empty; callers render the explicit "n/a" sentinel instead of
// a NaN ever reaching a chart label.
func (g Group) Avg() (float64, bool) {
	if g.Count == 0 {
		return 0, false
	}
	return g.Sum / float64(g.Count), true
}

// Summary is the output of one aggregation, never mutated after creation.
type Summary struct {
	Name   string  `json:"name"`
	Groups []Group `json:"groups"`
}

// Aggregate partitions rows by keyFn (and subKeyFn when non-nil) and reduces
// each partition to sum and count. Every row lands in exactly one group, so
// group sums and counts add up to the table-wide totals. Groups come back in
// ascending key order; presentation sorts are applied afterwards.
func Aggregate(name string, rows []models.Transaction, keyFn, subKeyFn KeyFunc) Summary {
	type compositeKey struct {
		key    string
		subKey string
	}

	acc := make(map[compositeKey]*Group)
	for _, tx := range rows {
		ck := compositeKey{key: keyFn(tx)}
		if subKeyFn != nil {
			ck.subKey = subKeyFn(tx)
		}
		g := acc[ck]
		if g == nil {
			g = &Group{Key: ck.key, SubKey: ck.subKey}
			acc[ck] = g
		}
		g.Sum += tx.Sales
		g.Count++
	}

	groups := make([]Group, 0, len(acc))
	for _, g := range acc {
		groups = append(groups, *g)
	}

	// Deterministic base order; map iteration order must never leak out.
	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.SubKey, b.SubKey)
	})

	return Summary{Name: name, Groups: groups}
}

// SortKey selects which measure orders a summary.
type SortKey string

const (
	BySum   SortKey = "sum"
	ByCount SortKey = "count"
	ByAvg   SortKey = "avg"
)

// Value returns the group's measure under key. ok is false only for an
// undefined average (empty group).
func (g Group) Value(key SortKey) (float64, bool) {
	switch key {
	case ByCount:
		return float64(g.Count), true
	case ByAvg:
		return g.Avg()
	default:
		return g.Sum, true
	}
}

// SortDesc stable-sorts groups by descending measure. Ties keep the
// ascending key order established by Aggregate, so "top 10" displays are
// reproducible. Groups with an undefined measure sort last.
func SortDesc(s Summary, key SortKey) Summary {
	groups := slices.Clone(s.Groups)
	slices.SortStableFunc(groups, func(a, b Group) int {
		av, aok := a.Value(key)
		bv, bok := b.Value(key)
		switch {
		case aok && bok:
			return cmp.Compare(bv, av)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return 0
		}
	})
	return Summary{Name: s.Name, Groups: groups}
}

// SortByKeyOrder arranges groups to follow an explicit key order, e.g.
// January..December or Sunday..Saturday. Keys missing from order keep their
// ascending position after the ordered ones.
func SortByKeyOrder(s Summary, order []string) Summary {
	rank := make(map[string]int, len(order))
	for i, key := range order {
		rank[key] = i
	}

	groups := slices.Clone(s.Groups)
	slices.SortStableFunc(groups, func(a, b Group) int {
		ra, aKnown := rank[a.Key]
		rb, bKnown := rank[b.Key]
		switch {
		case aKnown && bKnown:
			return cmp.Compare(ra, rb)
		case aKnown:
			return -1
		case bKnown:
			return 1
		default:
			return cmp.Compare(a.Key, b.Key)
		}
	})
	return Summary{Name: s.Name, Groups: groups}
}

// TopN returns the first n groups by descending measure. Applying it twice
// gives the same result, and the result is always a prefix of the full sort.
func TopN(s Summary, n int, key SortKey) Summary {
	sorted := SortDesc(s, key)
	if n >= 0 && len(sorted.Groups) > n {
		sorted.Groups = sorted.Groups[:n]
	}
	return sorted
}

// Totals returns the sum and count across all groups, which must equal the
// table-wide figures computed without grouping.
func Totals(s Summary) (float64, int) {
	var sum float64
	var count int
	for _, g := range s.Groups {
		sum += g.Sum
		count += g.Count
	}
	return sum, count
}

// RepeatCustomerRate computes the share of customers with more than one
// transaction from a per-customer summary. The second return is false when
// the summary has no customers at all.
func RepeatCustomerRate(perCustomer Summary) (float64, bool) {
	total := len(perCustomer.Groups)
	if total == 0 {
		return 0, false
	}
	repeat := 0
	for _, g := range perCustomer.Groups {
		if g.Count > 1 {
			repeat++
		}
	}
	return float64(repeat) / float64(total), true
}

// SubKeys returns the distinct sub-keys of a two-dimensional summary in
// ascending order.
func SubKeys(s Summary) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, g := range s.Groups {
		if g.SubKey != "" && !seen[g.SubKey] {
			seen[g.SubKey] = true
			keys = append(keys, g.SubKey)
		}
	}
	slices.Sort(keys)
	return keys
}

// Keys returns the distinct primary keys of a summary in first-seen order.
func Keys(s Summary) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, g := range s.Groups {
		if !seen[g.Key] {
			seen[g.Key] = true
			keys = append(keys, g.Key)
		}
	}
	return keys
}
