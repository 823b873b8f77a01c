package types

import "time"

// PairSnapshotEntry is one pair's slice of a full market snapshot. The
// enrichment fields (PriceImpactSpread, OpeningFeeBps) are best-effort and
// zero-valued when their fetch failed; MarginFee is required.
type PairSnapshotEntry struct {
	Pair              Pair
	Utilization       float64
	Skew              float64
	PriceImpactSpread Spread
	OpeningFeeBps     float64
	MarginFee         MarginFee
}

// CategorySnapshot buckets per-pair snapshots by category, keyed by pair
// name, alongside the category-level aggregates.
type CategorySnapshot struct {
	GroupIndex  int
	GroupName   string
	LongOI      float64
	ShortOI     float64
	OILimit     float64
	Utilization float64
	Skew        float64
	Pairs       map[string]*PairSnapshotEntry
}

// MarketSnapshot is one consistent point-in-time view of the whole market.
type MarketSnapshot struct {
	Timestamp  time.Time
	Categories map[int]*CategorySnapshot
}

// SimplifiedPairEntry carries only open interest and skew for one pair.
type SimplifiedPairEntry struct {
	Name    string
	LongOI  float64
	ShortOI float64
	Skew    float64
}

// SimplifiedCategoryEntry carries only open interest and skew for one group.
type SimplifiedCategoryEntry struct {
	GroupIndex int
	GroupName  string
	LongOI     float64
	ShortOI    float64
	Skew       float64
}

// SimplifiedSnapshot is the cheap variant of MarketSnapshot: no chain reads,
// no fee or spread enrichment.
type SimplifiedSnapshot struct {
	Timestamp  time.Time
	Pairs      map[string]*SimplifiedPairEntry
	Categories map[int]*SimplifiedCategoryEntry
}
