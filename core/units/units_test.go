package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanToQuoteUnits(t *testing.T) {
	tests := []struct {
		name  string
		human float64
		want  int64
	}{
		{"whole amount", 100, 100_000_000},
		{"fractional amount", 2500.5, 2_500_500_000},
		{"sub-cent precision", 0.000001, 1},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumanToQuoteUnits(tt.human)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestPriceToUnits(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  int64
	}{
		// 2500.5 is not exactly representable in binary, the decimal
		// conversion must still land on the exact fixed-point value.
		{"fractional price", 2500.5, 25_005_000_000_000},
		{"whole price", 42, 420_000_000_000},
		{"zero sentinel", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriceToUnits(tt.price)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 1, 100, 2500.5, 0.25, 123456.789123} {
		units := HumanToQuoteUnits(v)
		back := QuoteUnitsToHuman(units)
		assert.InDelta(t, v, back, 1e-6, "value %v", v)
	}
}

func TestPriceRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.0001, 1.5, 2500.5, 65000} {
		units := PriceToUnits(v)
		back := PriceUnitsToHuman(units)
		assert.InDelta(t, v, back, 1e-10, "value %v", v)
	}
}

func TestNativeWeiConversion(t *testing.T) {
	wei := NativeToWei(0.00035)
	require.Equal(t, "350000000000000", wei.String())
	assert.InDelta(t, 0.00035, WeiToNative(wei), 1e-18)

	one := NativeToWei(1)
	require.Equal(t, "1000000000000000000", one.String())

	assert.Zero(t, WeiToNative(big.NewInt(0)))
}
