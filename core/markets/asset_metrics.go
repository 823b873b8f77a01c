package markets

import (
	"context"

	"github.com/perpflow/sdk-go/core/types"
)

// AssetMetrics derives per-pair utilization, skew and impact-spread
// estimates from the directory's current snapshot. It holds no state of its
// own: every method is a pure function of pair figures.
type AssetMetrics struct {
	dir *PairDirectory
}

// NewAssetMetrics builds asset-level metrics over the given directory.
func NewAssetMetrics(dir *PairDirectory) *AssetMetrics {
	return &AssetMetrics{dir: dir}
}

// UtilizationOf is total OI as a percentage of the OI limit. Zero limit
// means zero utilization; there is no upper clamp, so values above 100 are
// possible and legitimate.
func UtilizationOf(p *types.Pair) float64 {
	if p.OILimit <= 0 {
		return 0
	}
	return p.TotalOI() / p.OILimit * 100
}

// SkewOf is the long share of total OI in percent. A market with no open
// interest reports exactly 50: the balanced default is a policy, not a
// computed ratio.
func SkewOf(p *types.Pair) float64 {
	total := p.TotalOI()
	if total <= 0 {
		return 50
	}
	return p.LongOI / total * 100
}

// PriceImpactSpreadOf estimates the extra basis points a trade of sizeUSDC
// pays for its size relative to the OI limit. The magnitude is
// direction-independent; the direction parameter on the component method is
// reserved for future asymmetry.
func PriceImpactSpreadOf(p *types.Pair, sizeUSDC float64) float64 {
	if p.OILimit <= 0 {
		return 0
	}
	return sizeUSDC / p.OILimit * p.PriceImpactMultiplier * 100
}

// SkewImpactSpreadOf estimates the extra basis points a trade pays for
// worsening the existing directional imbalance. A trade reinforcing the
// current skew deviation weighs double; a countering trade weighs single.
// Zero OI or zero limit yields zero.
func SkewImpactSpreadOf(p *types.Pair, sizeUSDC float64, long bool) float64 {
	if p.TotalOI() <= 0 || p.OILimit <= 0 {
		return 0
	}
	deviation := SkewOf(p) - 50
	factor := 1.0
	if (long && deviation > 0) || (!long && deviation < 0) {
		factor = 2
	}
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation * factor * (sizeUSDC / p.OILimit) * p.SkewImpactMultiplier * 100
}

// DepthEstimateOf approximates available depth per side as 1% of the OI
// limit. Deliberately crude: it is not derived from order-book data.
func DepthEstimateOf(p *types.Pair) (long, short float64) {
	depth := p.OILimit * 0.01
	return depth, depth
}

// Utilization resolves the selector and returns UtilizationOf.
func (m *AssetMetrics) Utilization(ctx context.Context, sel PairSelector) (float64, error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	return UtilizationOf(p), nil
}

// Skew resolves the selector and returns SkewOf.
func (m *AssetMetrics) Skew(ctx context.Context, sel PairSelector) (float64, error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	return SkewOf(p), nil
}

// PriceImpactSpread resolves the selector and returns PriceImpactSpreadOf.
// The long parameter is accepted for signature stability but does not change
// the magnitude.
func (m *AssetMetrics) PriceImpactSpread(ctx context.Context, sel PairSelector, sizeUSDC float64, long bool) (float64, error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	_ = long
	return PriceImpactSpreadOf(p, sizeUSDC), nil
}

// SkewImpactSpread resolves the selector and returns SkewImpactSpreadOf.
func (m *AssetMetrics) SkewImpactSpread(ctx context.Context, sel PairSelector, sizeUSDC float64, long bool) (float64, error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	return SkewImpactSpreadOf(p, sizeUSDC, long), nil
}

// CombinedOpeningSpread sums price-impact and skew-impact spreads for both
// directions of a trade of sizeUSDC.
func (m *AssetMetrics) CombinedOpeningSpread(ctx context.Context, sel PairSelector, sizeUSDC float64) (types.Spread, error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return types.Spread{}, err
	}
	pi := PriceImpactSpreadOf(p, sizeUSDC)
	return types.Spread{
		Long:  pi + SkewImpactSpreadOf(p, sizeUSDC, true),
		Short: pi + SkewImpactSpreadOf(p, sizeUSDC, false),
	}, nil
}

// DepthEstimate resolves the selector and returns DepthEstimateOf.
func (m *AssetMetrics) DepthEstimate(ctx context.Context, sel PairSelector) (long, short float64, err error) {
	p, err := m.dir.Get(ctx, sel)
	if err != nil {
		return 0, 0, err
	}
	long, short = DepthEstimateOf(p)
	return long, short, nil
}
