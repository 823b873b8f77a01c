package trading

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/types"
)

func TestMarginFee(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	fee, err := engine.fees.MarginFee(ctx, markets.ByName("BTC/USD"))
	require.NoError(t, err)
	assert.InDelta(t, 0.002, fee.HourlyBasePercent, 1e-9)
	assert.InDelta(t, 1.5, fee.LongBps, 1e-9)
	assert.InDelta(t, 0.5, fee.ShortBps, 1e-9)

	assert.InDelta(t, 1.5, fee.SideBps(true), 1e-9)
	assert.InDelta(t, 0.5, fee.SideBps(false), 1e-9)
	assert.InDelta(t, 0.36, fee.Projection24hPercent(true), 1e-9)
	assert.InDelta(t, 0.12, fee.Projection24hPercent(false), 1e-9)
}

func TestMarginFeeFailsWhole(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.errs["pairMarginFeeShortBps"] = errors.New("rpc down")

	_, err := engine.fees.MarginFee(context.Background(), markets.ByIndex(0))
	assert.Error(t, err, "no partial margin-fee record")
}

func TestMarginFeeUnknownPair(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.fees.MarginFee(context.Background(), markets.ByName("DOGE/USD"))
	assert.ErrorIs(t, err, types.ErrPairNotFound)
}

func TestOpeningAndClosingFeeBps(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	opening, err := engine.fees.OpeningFeeBps(ctx, markets.ByIndex(0), 1000, true)
	require.NoError(t, err)
	assert.InDelta(t, 8, opening, 1e-9)

	closing, err := engine.fees.ClosingFeeBps(ctx, markets.ByIndex(0), 1000, true)
	require.NoError(t, err)
	assert.InDelta(t, 10, closing, 1e-9)
}

func TestOpeningFeeUSDCWithoutReferrer(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	fee, err := engine.fees.OpeningFeeUSDC(context.Background(), validIntent())
	require.NoError(t, err)
	assert.InDelta(t, 0.80, fee, 1e-9)
}

func TestOpeningFeeUSDCWithReferrerRebate(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.responses["referrerOf"] = []any{testReferrer}
	reader.responses["referrerTier"] = []any{big.NewInt(2)}

	// Tier 2 rebates 10% of the 0.80 base fee.
	fee, err := engine.fees.OpeningFeeUSDC(context.Background(), validIntent())
	require.NoError(t, err)
	assert.InDelta(t, 0.72, fee, 1e-9)
}

func TestReferralRebatePercent(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	ctx := context.Background()

	// Zero-address referrer means no rebate.
	assert.Zero(t, engine.fees.ReferralRebatePercent(ctx, testTrader))

	reader.responses["referrerOf"] = []any{testReferrer}
	for tier, want := range map[int64]float64{0: 0, 1: 5, 2: 10, 3: 15} {
		reader.responses["referrerTier"] = []any{big.NewInt(tier)}
		assert.InDelta(t, want, engine.fees.ReferralRebatePercent(ctx, testTrader), 1e-9)
	}

	// Unknown tiers rebate nothing.
	reader.responses["referrerTier"] = []any{big.NewInt(42)}
	assert.Zero(t, engine.fees.ReferralRebatePercent(ctx, testTrader))
}

// A failed referral lookup degrades to no rebate, it never fails the fee.
func TestReferralLookupDegrades(t *testing.T) {
	engine, reader, _ := newTestEngine(t)
	reader.errs["referrerOf"] = errors.New("rpc down")

	fee, err := engine.fees.OpeningFeeUSDC(context.Background(), validIntent())
	require.NoError(t, err)
	assert.InDelta(t, 0.80, fee, 1e-9)
}
