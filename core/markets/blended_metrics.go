package markets

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/perpflow/sdk-go/core/types"
)

const (
	// DefaultAssetWeight and DefaultCategoryWeight are the initial blend.
	DefaultAssetWeight    = 0.7
	DefaultCategoryWeight = 0.3

	// weightSumTolerance bounds |assetWeight + categoryWeight - 1|.
	weightSumTolerance = 0.001

	// biasThreshold is the fixed band around balanced skew inside which the
	// directional bias reads neutral.
	biasThreshold = 5.0
)

// BlendedMetrics combines asset-level and category-level metrics into one
// signal per pair via a configurable weighted average.
type BlendedMetrics struct {
	asset    *AssetMetrics
	category *CategoryMetrics

	mu             sync.RWMutex
	assetWeight    float64
	categoryWeight float64
}

// NewBlendedMetrics builds a blend over the two metric layers with the
// default (0.7, 0.3) weights.
func NewBlendedMetrics(asset *AssetMetrics, category *CategoryMetrics) *BlendedMetrics {
	return &BlendedMetrics{
		asset:          asset,
		category:       category,
		assetWeight:    DefaultAssetWeight,
		categoryWeight: DefaultCategoryWeight,
	}
}

// SetWeights replaces the blend weights atomically. The only gate is that
// the pair sums to 1 within tolerance; individually negative weights that
// sum to 1 are accepted.
func (b *BlendedMetrics) SetWeights(assetWeight, categoryWeight float64) error {
	if math.Abs(assetWeight+categoryWeight-1) > weightSumTolerance {
		return errors.Wrapf(types.ErrInvalidConfiguration,
			"blend weights must sum to 1, got %v + %v = %v",
			assetWeight, categoryWeight, assetWeight+categoryWeight)
	}
	b.mu.Lock()
	b.assetWeight = assetWeight
	b.categoryWeight = categoryWeight
	b.mu.Unlock()
	return nil
}

// Weights returns the current (assetWeight, categoryWeight) pair.
func (b *BlendedMetrics) Weights() (assetWeight, categoryWeight float64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.assetWeight, b.categoryWeight
}

func (b *BlendedMetrics) blend(assetValue, categoryValue float64) float64 {
	aw, cw := b.Weights()
	return assetValue*aw + categoryValue*cw
}

// BlendedUtilization is assetUtil x assetWeight + categoryUtil x categoryWeight.
func (b *BlendedMetrics) BlendedUtilization(ctx context.Context, sel PairSelector) (float64, error) {
	p, err := b.asset.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	catUtil, err := b.category.Utilization(ctx, p.GroupIndex)
	if err != nil {
		return 0, err
	}
	return b.blend(UtilizationOf(p), catUtil), nil
}

// BlendedSkew applies the same weighted average to skew.
func (b *BlendedMetrics) BlendedSkew(ctx context.Context, sel PairSelector) (float64, error) {
	p, err := b.asset.dir.Get(ctx, sel)
	if err != nil {
		return 0, err
	}
	catSkew, err := b.category.Skew(ctx, p.GroupIndex)
	if err != nil {
		return 0, err
	}
	return b.blend(SkewOf(p), catSkew), nil
}

// DirectionalBias reads the blended skew's deviation from balance: beyond
// +5 the market leans long, beyond -5 it leans short, inside the band it is
// neutral. Strength is the absolute deviation either way.
func (b *BlendedMetrics) DirectionalBias(ctx context.Context, sel PairSelector) (types.DirectionalBias, error) {
	skew, err := b.BlendedSkew(ctx, sel)
	if err != nil {
		return types.DirectionalBias{}, err
	}
	return BiasFromSkew(skew), nil
}

// BiasFromSkew derives the directional bias signal from a blended skew value.
func BiasFromSkew(blendedSkew float64) types.DirectionalBias {
	deviation := blendedSkew - 50
	bias := types.DirectionalBias{
		Direction: types.BiasNeutral,
		Strength:  math.Abs(deviation),
	}
	switch {
	case deviation > biasThreshold:
		bias.Direction = types.BiasLong
	case deviation < -biasThreshold:
		bias.Direction = types.BiasShort
	}
	return bias
}
