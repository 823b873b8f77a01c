package trading

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
)

func TestBuildOpenTx(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	tx, err := engine.BuildOpenTx(context.Background(), validIntent())
	require.NoError(t, err)

	assert.Equal(t, testContracts.Trading, tx.To)
	require.Greater(t, len(tx.Data), 4, "calldata carries a selector plus arguments")

	// Value covers the execution fee plus the oracle update fee (1 wei in
	// the fixture).
	want := new(big.Int).Add(units.NativeToWei(0.00035), big.NewInt(1))
	assert.Equal(t, want, tx.Value)
}

func TestBuildOpenTxValidatesFirst(t *testing.T) {
	engine, _, prices := newTestEngine(t)
	prices.proofErr = errors.New("oracle down")

	intent := validIntent()
	intent.SlippageBps = 10_001
	_, err := engine.BuildOpenTx(context.Background(), intent)
	assert.ErrorIs(t, err, types.ErrInvalidSlippage, "validation runs before any proof fetch")
}

func TestBuildOpenTxProofFailureIsFatal(t *testing.T) {
	engine, _, prices := newTestEngine(t)
	prices.proofErr = errors.New("oracle down")

	_, err := engine.BuildOpenTx(context.Background(), validIntent())
	assert.ErrorIs(t, err, types.ErrProofUnavailable)
}

func TestBuildCloseTx(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Full close: amount 0.
	tx, err := engine.BuildCloseTx(ctx, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, testContracts.Trading, tx.To)
	assert.Positive(t, tx.Value.Sign(), "market close pays execution and update fees")

	// Partial close encodes too.
	_, err = engine.BuildCloseTx(ctx, 0, 0, 250)
	require.NoError(t, err)

	_, err = engine.BuildCloseTx(ctx, -1, 0, 0)
	assert.ErrorIs(t, err, types.ErrInvalidIndex)
}

func TestBuildParamUpdates(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	builders := map[string]func() (*types.UnsignedTx, error){
		"updateTp": func() (*types.UnsignedTx, error) {
			return engine.BuildUpdateTpTx(ctx, 0, 0, 2500)
		},
		"updateSl": func() (*types.UnsignedTx, error) {
			return engine.BuildUpdateSlTx(ctx, 0, 0, 1800)
		},
		"topUpCollateral": func() (*types.UnsignedTx, error) {
			return engine.BuildUpdateMarginTx(ctx, 0, 0, 50)
		},
		"cancelOpenLimitOrder": func() (*types.UnsignedTx, error) {
			return engine.BuildCancelLimitOrderTx(ctx, 0, 0)
		},
	}
	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			tx, err := build()
			require.NoError(t, err)
			assert.Equal(t, testContracts.Trading, tx.To)
			assert.NotEmpty(t, tx.Data)
			assert.Zero(t, tx.Value.Sign(), "parameter updates attach no value")
		})
	}
}

func TestBuildParamUpdateRejectsNegativeIndexes(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.BuildUpdateTpTx(ctx, 0, -1, 2500)
	assert.ErrorIs(t, err, types.ErrInvalidIndex)

	_, err = engine.BuildCancelLimitOrderTx(ctx, -1, 0)
	assert.ErrorIs(t, err, types.ErrInvalidIndex)
}
