package trading

import (
	"context"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
	"github.com/perpflow/sdk-go/core/util"
)

// ListOpenPositions batch-fetches the trader's raw on-chain positions and
// enriches each with the pair name, a live price and locally computed
// PnL/PnL%/liquidation figures. Price and margin-fee lookups degrade per
// position (entry price, zero fee) rather than failing the listing; the raw
// position reads themselves are required.
func (e *TradeEngine) ListOpenPositions(ctx context.Context, trader common.Address) ([]types.Position, error) {
	vals, err := e.reader.Call(ctx, e.contracts.Trading, "openTradesCount", trader)
	if err != nil {
		return nil, errors.Wrap(err, "open trades count")
	}
	count, err := extractBigInt(vals, 0, "openTradesCount")
	if err != nil {
		return nil, err
	}
	n := int(count.Int64())
	if n <= 0 {
		return nil, nil
	}

	positions := make([]*types.Position, n)
	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < n; slot++ {
		slot := slot
		g.Go(func() error {
			pos, err := e.fetchPosition(gctx, trader, slot)
			if err != nil {
				return err
			}
			positions[slot] = pos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.Position, 0, n)
	for _, p := range positions {
		if p != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PairIndex != out[j].PairIndex {
			return out[i].PairIndex < out[j].PairIndex
		}
		return out[i].TradeIndex < out[j].TradeIndex
	})
	return out, nil
}

func (e *TradeEngine) fetchPosition(ctx context.Context, trader common.Address, slot int) (*types.Position, error) {
	vals, err := e.reader.Call(ctx, e.contracts.Trading, "openTrades", trader, big.NewInt(int64(slot)))
	if err != nil {
		return nil, errors.Wrapf(err, "open trade slot %d", slot)
	}

	owner, err := extractAddress(vals, 0, "trader")
	if err != nil {
		return nil, err
	}
	if owner == (common.Address{}) {
		// Empty slot.
		return nil, nil
	}

	pairIndex, err := extractBigInt(vals, 1, "pairIndex")
	if err != nil {
		return nil, err
	}
	tradeIndex, err := extractBigInt(vals, 2, "index")
	if err != nil {
		return nil, err
	}
	sizeUnits, err := extractBigInt(vals, 3, "positionSizeUSDC")
	if err != nil {
		return nil, err
	}
	openPriceUnits, err := extractBigInt(vals, 4, "openPrice")
	if err != nil {
		return nil, err
	}
	long, err := extractBool(vals, 5, "buy")
	if err != nil {
		return nil, err
	}
	leverageUnits, err := extractBigInt(vals, 6, "leverage")
	if err != nil {
		return nil, err
	}
	tpUnits, err := extractBigInt(vals, 7, "tp")
	if err != nil {
		return nil, err
	}
	slUnits, err := extractBigInt(vals, 8, "sl")
	if err != nil {
		return nil, err
	}
	openedAt, err := extractBigInt(vals, 9, "openTimestamp")
	if err != nil {
		return nil, err
	}
	accruedFeeUnits, err := extractBigInt(vals, 10, "accruedMarginFee")
	if err != nil {
		return nil, err
	}

	pos := &types.Position{
		Trader:               owner,
		PairIndex:            int(pairIndex.Int64()),
		TradeIndex:           int(tradeIndex.Int64()),
		PositionSizeUSDC:     units.QuoteUnitsToHuman(sizeUnits),
		OpenPrice:            units.PriceUnitsToHuman(openPriceUnits),
		Long:                 long,
		Leverage:             units.PriceUnitsToHuman(leverageUnits),
		TakeProfit:           units.PriceUnitsToHuman(tpUnits),
		StopLoss:             units.PriceUnitsToHuman(slUnits),
		OpenedAt:             openedAt.Int64(),
		AccruedMarginFeeUSDC: units.QuoteUnitsToHuman(accruedFeeUnits),
	}
	if pos.Leverage > 0 {
		pos.CollateralUSDC = pos.PositionSizeUSDC / pos.Leverage
	}

	e.enrichPosition(ctx, pos)
	return pos, nil
}

// enrichPosition fills the derived fields. Lookups here are best-effort:
// a dark price feed falls back to the entry price, a failed margin-fee read
// projects zero fee.
func (e *TradeEngine) enrichPosition(ctx context.Context, pos *types.Position) {
	sel := markets.ByIndex(pos.PairIndex)

	feedID := ""
	if pair, err := e.dir.Get(ctx, sel); err == nil {
		pos.PairName = pair.Name
		feedID = pair.FeedID
	}

	pos.CurrentPrice = pos.OpenPrice
	if feedID != "" {
		pos.CurrentPrice = util.BestEffort(e.logger, "position price", pos.OpenPrice, func() (float64, error) {
			return e.prices.GetPrice(ctx, feedID)
		})
	}

	marginFee := util.BestEffort(e.logger, "position margin fee", types.MarginFee{}, func() (types.MarginFee, error) {
		return e.fees.MarginFee(ctx, sel)
	})

	pos.PnlUSDC = CalculatePnl(pos.OpenPrice, pos.CurrentPrice, pos.PositionSizeUSDC, pos.Long, pos.AccruedMarginFeeUSDC)
	pos.PnlPercent = CalculatePnlPercent(pos.OpenPrice, pos.CurrentPrice, pos.Leverage, pos.Long)
	pos.LiquidationPrice = LiquidationPriceAt(pos.OpenPrice, pos.Leverage, marginFee.Projection24hPercent(pos.Long), pos.Long)
}
