package data

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ValidateBatch checks that every feature is row-aligned with the label and
// that neither the label nor an unwanted column leaked into the features.
func ValidateBatch(b Batch, label string, unwanted []string) error {
	n := b.Label.Len()
	if n == 0 {
		return fmt.Errorf("batch is empty")
	}
	if _, ok := b.Features[label]; ok {
		return fmt.Errorf("label column %q present in features", label)
	}
	for _, name := range unwanted {
		if _, ok := b.Features[name]; ok {
			return fmt.Errorf("unwanted column %q present in features", name)
		}
	}
	for name, t := range b.Features {
		if t.Len() != n {
			return fmt.Errorf("inconsistent length for feature %q: expected %d, got %d", name, n, t.Len())
		}
	}
	return nil
}

// ColumnStats summarizes one column across several batches.
type ColumnStats struct {
	Name     string
	Kind     Kind
	Count    int
	Min      decimal.Decimal
	Max      decimal.Decimal
	Mean     decimal.Decimal
	Distinct int
}

type Summary struct {
	Batches  int
	Rows     int
	Label    ColumnStats
	Features []ColumnStats
}

// Describe computes per-column statistics over already collected batches.
// Numeric sums are kept in decimal so that long runs of small fares add up
// exactly.
func Describe(batches []Batch) Summary {
	s := Summary{Batches: len(batches)}
	if len(batches) == 0 {
		return s
	}

	labels := make([]Tensor, len(batches))
	features := make(map[string][]Tensor)
	for i, b := range batches {
		s.Rows += b.Size()
		labels[i] = b.Label
		for name, t := range b.Features {
			features[name] = append(features[name], t)
		}
	}

	s.Label = columnStats("label", labels)

	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Features = append(s.Features, columnStats(name, features[name]))
	}
	return s
}

func columnStats(name string, parts []Tensor) ColumnStats {
	cs := ColumnStats{Name: name, Kind: parts[0].Kind}

	if cs.Kind == KindString {
		seen := make(map[string]bool)
		for _, t := range parts {
			for _, v := range t.Strings {
				seen[v] = true
				cs.Count++
			}
		}
		cs.Distinct = len(seen)
		return cs
	}

	sum := decimal.Zero
	distinct := make(map[string]bool)
	for _, t := range parts {
		for _, f := range t.Floats {
			v := decimal.NewFromFloat(f)
			if cs.Count == 0 || v.LessThan(cs.Min) {
				cs.Min = v
			}
			if cs.Count == 0 || v.GreaterThan(cs.Max) {
				cs.Max = v
			}
			sum = sum.Add(v)
			distinct[v.String()] = true
			cs.Count++
		}
	}
	if cs.Count > 0 {
		cs.Mean = sum.Div(decimal.NewFromInt(int64(cs.Count)))
	}
	cs.Distinct = len(distinct)
	return cs
}
