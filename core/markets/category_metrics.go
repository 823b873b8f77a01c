package markets

import (
	"context"
	"fmt"

	"github.com/perpflow/sdk-go/core/types"
)

// canonicalGroupNames covers the protocol's four fixed categories. Anything
// outside the table gets a generated label instead of an error.
var canonicalGroupNames = map[int]string{
	0: "Crypto",
	1: "Forex",
	2: "Commodities",
	3: "Indices",
}

// CategoryMetrics aggregates pair-level open interest by group and derives
// group-level utilization and skew with the same formulas and balanced
// default as AssetMetrics.
type CategoryMetrics struct {
	dir *PairDirectory
}

// NewCategoryMetrics builds category-level metrics over the given directory.
func NewCategoryMetrics(dir *PairDirectory) *CategoryMetrics {
	return &CategoryMetrics{dir: dir}
}

// GroupName returns the display name of a category.
func GroupName(index int) string {
	if name, ok := canonicalGroupNames[index]; ok {
		return name
	}
	return fmt.Sprintf("Group %d", index)
}

// AggregateOI sums long/short open interest over every pair in the group.
// Full scan on each call; pair counts are tens, not millions.
func (m *CategoryMetrics) AggregateOI(ctx context.Context, groupIndex int) (long, short float64, err error) {
	s, err := m.dir.Snapshot(ctx)
	if err != nil {
		return 0, 0, err
	}
	long, short = aggregateOI(s, groupIndex)
	return long, short, nil
}

func aggregateOI(s *PairSnapshot, groupIndex int) (long, short float64) {
	for i := range s.Pairs {
		if s.Pairs[i].GroupIndex == groupIndex {
			long += s.Pairs[i].LongOI
			short += s.Pairs[i].ShortOI
		}
	}
	return long, short
}

// Utilization is the group's aggregated OI as a percentage of the group OI
// limit; zero when the limit is zero or the group is unknown.
func (m *CategoryMetrics) Utilization(ctx context.Context, groupIndex int) (float64, error) {
	s, err := m.dir.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return categoryUtilization(s, groupIndex), nil
}

func categoryUtilization(s *PairSnapshot, groupIndex int) float64 {
	g, ok := s.Groups[groupIndex]
	if !ok || g.OILimit <= 0 {
		return 0
	}
	long, short := aggregateOI(s, groupIndex)
	return (long + short) / g.OILimit * 100
}

// Skew is the long share of the group's aggregated OI in percent, with the
// same balanced-at-50 default as the asset-level formula.
func (m *CategoryMetrics) Skew(ctx context.Context, groupIndex int) (float64, error) {
	s, err := m.dir.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return categorySkew(s, groupIndex), nil
}

func categorySkew(s *PairSnapshot, groupIndex int) float64 {
	long, short := aggregateOI(s, groupIndex)
	total := long + short
	if total <= 0 {
		return 50
	}
	return long / total * 100
}
