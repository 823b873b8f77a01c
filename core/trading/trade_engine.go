package trading

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
)

const (
	// DefaultExecutionFeeNative is the fallback keeper execution fee, in
	// native-token units, used when the on-chain read fails.
	DefaultExecutionFeeNative = 0.00035

	// liquidationLossThreshold is the share of collateral whose loss
	// triggers the protocol's margin call.
	liquidationLossThreshold = 0.9
)

// TradeEngine validates trade intents, computes trade economics and builds
// the unsigned transactions of the trade lifecycle. It depends only on
// already-constructed leaves: the pair directory, the fee engine and the
// price source.
type TradeEngine struct {
	dir       *markets.PairDirectory
	fees      *FeeEngine
	prices    types.PriceSource
	reader    types.ChainReader
	encoder   types.TxEncoder
	contracts types.ContractAddresses
	logger    *zap.Logger
}

// NewTradeEngine wires the engine from its collaborators.
func NewTradeEngine(dir *markets.PairDirectory, fees *FeeEngine, prices types.PriceSource,
	reader types.ChainReader, encoder types.TxEncoder, contracts types.ContractAddresses,
	logger *zap.Logger) *TradeEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TradeEngine{
		dir: dir, fees: fees, prices: prices,
		reader: reader, encoder: encoder, contracts: contracts,
		logger: logger,
	}
}

// Validate runs the intent through the full gate. Checks run in a fixed
// order and the first failure wins; the returned error unwraps to one of the
// ErrInvalid* sentinels and carries the offending field and value.
func (e *TradeEngine) Validate(ctx context.Context, intent *types.TradeIntent) error {
	if intent.Trader == (common.Address{}) {
		return types.NewValidationError(types.ErrInvalidAddress, "trader", intent.Trader.Hex(), "zero address")
	}
	if intent.PositionSizeUSDC <= 0 {
		return types.NewValidationError(types.ErrInvalidCollateral, "positionSizeUSDC", intent.PositionSizeUSDC, "collateral must be positive")
	}
	if intent.Leverage <= 0 {
		return types.NewValidationError(types.ErrInvalidLeverage, "leverage", intent.Leverage, "must be positive")
	}
	if intent.PairIndex < 0 {
		return types.NewValidationError(types.ErrInvalidIndex, "pairIndex", intent.PairIndex, "must be non-negative")
	}
	if intent.TradeIndex < 0 {
		return types.NewValidationError(types.ErrInvalidIndex, "tradeIndex", intent.TradeIndex, "must be non-negative")
	}

	pair, err := e.dir.Get(ctx, markets.ByIndex(intent.PairIndex))
	if err != nil {
		if errors.Is(err, types.ErrPairNotFound) {
			return types.NewValidationError(types.ErrInvalidIndex, "pairIndex", intent.PairIndex, "unknown pair")
		}
		return err
	}
	if intent.Leverage < pair.MinLeverage || intent.Leverage > pair.MaxLeverage {
		return types.NewValidationError(types.ErrInvalidLeverage, "leverage", intent.Leverage,
			errors.Errorf("outside [%v, %v] for %s", pair.MinLeverage, pair.MaxLeverage, pair.Name).Error())
	}
	if intent.SlippageBps < 0 || intent.SlippageBps > 10_000 {
		return types.NewValidationError(types.ErrInvalidSlippage, "slippageBps", intent.SlippageBps, "must be within [0, 10000]")
	}

	// TP/SL consistency is only checkable when the entry price is known,
	// i.e. not the market-order sentinel.
	if entry := intent.OpenPrice; entry > 0 {
		if intent.TakeProfit > 0 {
			if intent.Long && intent.TakeProfit <= entry {
				return types.NewValidationError(types.ErrInvalidTpSl, "takeProfit", intent.TakeProfit, "must be above entry for longs")
			}
			if !intent.Long && intent.TakeProfit >= entry {
				return types.NewValidationError(types.ErrInvalidTpSl, "takeProfit", intent.TakeProfit, "must be below entry for shorts")
			}
		}
		if intent.StopLoss > 0 {
			if intent.Long && intent.StopLoss >= entry {
				return types.NewValidationError(types.ErrInvalidTpSl, "stopLoss", intent.StopLoss, "must be below entry for longs")
			}
			if !intent.Long && intent.StopLoss <= entry {
				return types.NewValidationError(types.ErrInvalidTpSl, "stopLoss", intent.StopLoss, "must be above entry for shorts")
			}
		}
	}
	return nil
}

// executionFeeWei reads the keeper execution fee, falling back to the
// hardcoded default when the read fails.
func (e *TradeEngine) executionFeeWei(ctx context.Context) *big.Int {
	vals, err := e.reader.Call(ctx, e.contracts.Trading, "executionFee")
	if err == nil {
		if fee, extractErr := extractBigInt(vals, 0, "executionFee"); extractErr == nil {
			return fee
		}
	}
	e.logger.Debug("execution fee read degraded to default", zap.Error(err))
	return units.NativeToWei(DefaultExecutionFeeNative)
}

// CalculateCost computes what opening the intent costs. TotalUSDC is
// collateral plus opening fee in quote currency; the execution fee stays in
// native-token units and is reported separately, never summed into the
// quote-currency total.
func (e *TradeEngine) CalculateCost(ctx context.Context, intent *types.TradeIntent) (types.TradeCost, error) {
	if err := e.Validate(ctx, intent); err != nil {
		return types.TradeCost{}, err
	}

	collateral := intent.Collateral()
	openingFee, err := e.fees.OpeningFeeUSDC(ctx, intent)
	if err != nil {
		return types.TradeCost{}, errors.Wrap(err, "opening fee")
	}
	execFee := units.WeiToNative(e.executionFeeWei(ctx))

	return types.TradeCost{
		CollateralUSDC:     collateral,
		OpeningFeeUSDC:     openingFee,
		ExecutionFeeNative: execFee,
		TotalUSDC:          collateral + openingFee,
	}, nil
}

// LiquidationPriceAt models liquidation as the entry price shifted by the
// distance a 90%-of-collateral loss implies, net of the projected 24h margin
// fee. Longs liquidate below entry, shorts above.
func LiquidationPriceAt(entry, leverage, marginFee24hPercent float64, long bool) float64 {
	if leverage <= 0 {
		return entry
	}
	shift := (liquidationLossThreshold - marginFee24hPercent/100) / leverage * entry
	if long {
		return entry - shift
	}
	return entry + shift
}

// EstimateLiquidationPrice resolves the intent's entry price (via the price
// source for market orders) and the pair's margin fee, then applies
// LiquidationPriceAt.
func (e *TradeEngine) EstimateLiquidationPrice(ctx context.Context, intent *types.TradeIntent) (float64, error) {
	entry := intent.OpenPrice
	if entry == 0 {
		pair, err := e.dir.Get(ctx, markets.ByIndex(intent.PairIndex))
		if err != nil {
			return 0, err
		}
		entry, err = e.prices.GetPrice(ctx, pair.FeedID)
		if err != nil {
			return 0, errors.Wrap(err, "resolve market entry price")
		}
	}

	marginFee, err := e.fees.MarginFee(ctx, markets.ByIndex(intent.PairIndex))
	if err != nil {
		return 0, errors.Wrap(err, "margin fee")
	}
	return LiquidationPriceAt(entry, intent.Leverage, marginFee.Projection24hPercent(intent.Long), intent.Long), nil
}

// CalculatePnl returns the quote-currency profit of a position: size times
// the directional price-change ratio, minus fees.
func CalculatePnl(entry, current, sizeUSDC float64, long bool, feesUSDC float64) float64 {
	if entry <= 0 {
		return -feesUSDC
	}
	ratio := (current - entry) / entry
	if !long {
		ratio = -ratio
	}
	return sizeUSDC*ratio - feesUSDC
}

// CalculatePnlPercent returns the leveraged price-change percentage. Fees
// are deliberately excluded from the percentage figure.
func CalculatePnlPercent(entry, current, leverage float64, long bool) float64 {
	if entry <= 0 {
		return 0
	}
	changePercent := (current - entry) / entry * 100
	if !long {
		changePercent = -changePercent
	}
	return changePercent * leverage
}
