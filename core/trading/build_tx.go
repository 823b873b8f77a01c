package trading

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
)

// fetchProof obtains a fresh oracle attestation for the pair's feed. A
// missing proof is fatal here: market executions cannot run against a stale
// price.
func (e *TradeEngine) fetchProof(ctx context.Context, pairIndex int) (*types.PriceUpdateProof, error) {
	pair, err := e.dir.Get(ctx, markets.ByIndex(pairIndex))
	if err != nil {
		return nil, err
	}
	proof, err := e.prices.GetPriceUpdateProof(ctx, []string{pair.FeedID})
	if err != nil {
		return nil, errors.Wrapf(types.ErrProofUnavailable, "feed %s: %v", pair.FeedID, err)
	}
	return proof, nil
}

// msgValue is execution fee plus oracle update fee, in wei.
func (e *TradeEngine) msgValue(ctx context.Context, proof *types.PriceUpdateProof) *big.Int {
	value := new(big.Int).Set(e.executionFeeWei(ctx))
	if proof.UpdateFeeWei != nil {
		value.Add(value, proof.UpdateFeeWei)
	}
	return value
}

func checkIndexes(pairIndex, tradeIndex int) error {
	if pairIndex < 0 {
		return types.NewValidationError(types.ErrInvalidIndex, "pairIndex", pairIndex, "must be non-negative")
	}
	if tradeIndex < 0 {
		return types.NewValidationError(types.ErrInvalidIndex, "tradeIndex", tradeIndex, "must be non-negative")
	}
	return nil
}

// BuildOpenTx validates the intent, fetches a fresh oracle proof, serializes
// the trade and assembles the unsigned open-trade transaction. The attached
// value covers the execution fee and the oracle update fee.
func (e *TradeEngine) BuildOpenTx(ctx context.Context, intent *types.TradeIntent) (*types.UnsignedTx, error) {
	if err := e.Validate(ctx, intent); err != nil {
		return nil, err
	}

	proof, err := e.fetchProof(ctx, intent.PairIndex)
	if err != nil {
		return nil, err
	}

	trade := SerializeIntent(intent)
	data, err := e.encoder.Encode("openTrade",
		*trade,
		uint8(intent.OrderType),
		big.NewInt(int64(intent.SlippageBps)),
		proof.ProofBytes,
	)
	if err != nil {
		return nil, errors.Wrap(err, "encode openTrade")
	}

	return &types.UnsignedTx{
		To:    e.encoder.TradingAddress(),
		Data:  data,
		Value: e.msgValue(ctx, proof),
	}, nil
}

// BuildCloseTx assembles a market-close transaction. closeAmountUSDC 0
// closes the whole position; a positive amount closes partially.
func (e *TradeEngine) BuildCloseTx(ctx context.Context, pairIndex, tradeIndex int, closeAmountUSDC float64) (*types.UnsignedTx, error) {
	if err := checkIndexes(pairIndex, tradeIndex); err != nil {
		return nil, err
	}

	proof, err := e.fetchProof(ctx, pairIndex)
	if err != nil {
		return nil, err
	}

	data, err := e.encoder.Encode("closeTradeMarket",
		big.NewInt(int64(pairIndex)),
		big.NewInt(int64(tradeIndex)),
		units.HumanToQuoteUnits(closeAmountUSDC),
		proof.ProofBytes,
	)
	if err != nil {
		return nil, errors.Wrap(err, "encode closeTradeMarket")
	}

	return &types.UnsignedTx{
		To:    e.encoder.TradingAddress(),
		Data:  data,
		Value: e.msgValue(ctx, proof),
	}, nil
}

// BuildUpdateTpTx assembles a take-profit update.
func (e *TradeEngine) BuildUpdateTpTx(ctx context.Context, pairIndex, tradeIndex int, newTp float64) (*types.UnsignedTx, error) {
	return e.buildParamUpdate(ctx, "updateTp", pairIndex, tradeIndex, units.PriceToUnits(newTp))
}

// BuildUpdateSlTx assembles a stop-loss update.
func (e *TradeEngine) BuildUpdateSlTx(ctx context.Context, pairIndex, tradeIndex int, newSl float64) (*types.UnsignedTx, error) {
	return e.buildParamUpdate(ctx, "updateSl", pairIndex, tradeIndex, units.PriceToUnits(newSl))
}

// BuildUpdateMarginTx assembles a collateral top-up.
func (e *TradeEngine) BuildUpdateMarginTx(ctx context.Context, pairIndex, tradeIndex int, amountUSDC float64) (*types.UnsignedTx, error) {
	return e.buildParamUpdate(ctx, "topUpCollateral", pairIndex, tradeIndex, units.HumanToQuoteUnits(amountUSDC))
}

func (e *TradeEngine) buildParamUpdate(_ context.Context, method string, pairIndex, tradeIndex int, value *big.Int) (*types.UnsignedTx, error) {
	if err := checkIndexes(pairIndex, tradeIndex); err != nil {
		return nil, err
	}
	data, err := e.encoder.Encode(method,
		big.NewInt(int64(pairIndex)),
		big.NewInt(int64(tradeIndex)),
		value,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", method)
	}
	return &types.UnsignedTx{
		To:    e.encoder.TradingAddress(),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}

// BuildCancelLimitOrderTx assembles a limit-order cancellation.
func (e *TradeEngine) BuildCancelLimitOrderTx(_ context.Context, pairIndex, tradeIndex int) (*types.UnsignedTx, error) {
	if err := checkIndexes(pairIndex, tradeIndex); err != nil {
		return nil, err
	}
	data, err := e.encoder.Encode("cancelOpenLimitOrder",
		big.NewInt(int64(pairIndex)),
		big.NewInt(int64(tradeIndex)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "encode cancelOpenLimitOrder")
	}
	return &types.UnsignedTx{
		To:    e.encoder.TradingAddress(),
		Data:  data,
		Value: big.NewInt(0),
	}, nil
}
