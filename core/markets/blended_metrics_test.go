package markets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpflow/sdk-go/core/types"
)

func newTestBlend(t *testing.T) *BlendedMetrics {
	t.Helper()
	dir, _ := newTestDirectory(t)
	return NewBlendedMetrics(NewAssetMetrics(dir), NewCategoryMetrics(dir))
}

func TestSetWeights(t *testing.T) {
	tests := []struct {
		name     string
		asset    float64
		category float64
		wantErr  bool
	}{
		{"defaults", 0.7, 0.3, false},
		{"even split", 0.5, 0.5, false},
		{"all asset", 1, 0, false},
		{"all category", 0, 1, false},
		{"negative weight summing to one", 1.5, -0.5, false},
		{"within tolerance", 0.7005, 0.3, false},
		{"sum too high", 0.8, 0.3, true},
		{"sum too low", 0.5, 0.3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBlend(t)
			err := b.SetWeights(tt.asset, tt.category)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrInvalidConfiguration)
				// A rejected pair leaves the previous weights in place.
				aw, cw := b.Weights()
				assert.Equal(t, DefaultAssetWeight, aw)
				assert.Equal(t, DefaultCategoryWeight, cw)
				return
			}
			require.NoError(t, err)
			aw, cw := b.Weights()
			assert.Equal(t, tt.asset, aw)
			assert.Equal(t, tt.category, cw)
		})
	}
}

// Blended values are exact weighted averages of the two layers across
// several weight configurations.
func TestBlendLinearity(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	asset := NewAssetMetrics(dir)
	category := NewCategoryMetrics(dir)
	b := NewBlendedMetrics(asset, category)

	sel := ByIndex(0) // BTC/USD: asset skew 60, asset util 10
	assetSkew, err := asset.Skew(ctx, sel)
	require.NoError(t, err)
	catSkew, err := category.Skew(ctx, 0)
	require.NoError(t, err)
	assetUtil, err := asset.Utilization(ctx, sel)
	require.NoError(t, err)
	catUtil, err := category.Utilization(ctx, 0)
	require.NoError(t, err)

	for _, w := range [][2]float64{{0.7, 0.3}, {0.5, 0.5}, {1, 0}, {0, 1}} {
		require.NoError(t, b.SetWeights(w[0], w[1]))

		skew, err := b.BlendedSkew(ctx, sel)
		require.NoError(t, err)
		assert.InDelta(t, assetSkew*w[0]+catSkew*w[1], skew, 1e-9)

		util, err := b.BlendedUtilization(ctx, sel)
		require.NoError(t, err)
		assert.InDelta(t, assetUtil*w[0]+catUtil*w[1], util, 1e-9)
	}
}

func TestBiasFromSkew(t *testing.T) {
	tests := []struct {
		skew          string
		value         float64
		wantDirection types.BiasDirection
		wantStrength  float64
	}{
		{"above band", 56, types.BiasLong, 6},
		{"below band", 44, types.BiasShort, 6},
		{"inside band", 52, types.BiasNeutral, 2},
		{"exactly at upper edge", 55, types.BiasNeutral, 5},
		{"exactly at lower edge", 45, types.BiasNeutral, 5},
		{"balanced", 50, types.BiasNeutral, 0},
	}
	for _, tt := range tests {
		t.Run(tt.skew, func(t *testing.T) {
			bias := BiasFromSkew(tt.value)
			assert.Equal(t, tt.wantDirection, bias.Direction)
			assert.InDelta(t, tt.wantStrength, bias.Strength, 1e-9)
		})
	}
}

func TestDirectionalBias(t *testing.T) {
	ctx := context.Background()
	b := newTestBlend(t)

	// BTC asset skew 60, category skew 50: 0.7*60 + 0.3*50 = 57.
	bias, err := b.DirectionalBias(ctx, ByIndex(0))
	require.NoError(t, err)
	assert.Equal(t, types.BiasLong, bias.Direction)
	assert.InDelta(t, 7, bias.Strength, 1e-9)

	// All-category weighting pulls the same pair back to neutral.
	require.NoError(t, b.SetWeights(0, 1))
	bias, err = b.DirectionalBias(ctx, ByIndex(0))
	require.NoError(t, err)
	assert.Equal(t, types.BiasNeutral, bias.Direction)
}
