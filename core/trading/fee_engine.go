package trading

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
)

// DefaultProbeSizeUSDC is the position size used for fee estimates when the
// caller does not supply one.
const DefaultProbeSizeUSDC = 1_000

// FeeEngine reads margin, opening and closing fee parameters from the
// protocol contracts. Fee-parameter reads are required and propagate their
// failures; referral-rebate lookups are best-effort and never fail a fee
// computation.
type FeeEngine struct {
	reader    types.ChainReader
	contracts types.ContractAddresses
	dir       *markets.PairDirectory
	logger    *zap.Logger
}

var _ markets.FeeReader = (*FeeEngine)(nil)

// NewFeeEngine wires the engine from its collaborators.
func NewFeeEngine(reader types.ChainReader, contracts types.ContractAddresses, dir *markets.PairDirectory, logger *zap.Logger) *FeeEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeEngine{reader: reader, contracts: contracts, dir: dir, logger: logger}
}

func (f *FeeEngine) pairIndex(ctx context.Context, sel markets.PairSelector) (*big.Int, error) {
	p, err := f.dir.Get(ctx, sel)
	if err != nil {
		return nil, err
	}
	return big.NewInt(int64(p.Index)), nil
}

// readFixed10 performs a single-output read of a 1e10-scaled parameter.
func (f *FeeEngine) readFixed10(ctx context.Context, contract common.Address, method string, args ...any) (float64, error) {
	vals, err := f.reader.Call(ctx, contract, method, args...)
	if err != nil {
		return 0, err
	}
	raw, err := extractBigInt(vals, 0, method)
	if err != nil {
		return 0, err
	}
	return units.PriceUnitsToHuman(raw), nil
}

// MarginFee combines the three borrowing-fee reads of one pair into a single
// record. The reads fan out concurrently; any failure fails the record,
// there is no partial fill.
func (f *FeeEngine) MarginFee(ctx context.Context, sel markets.PairSelector) (types.MarginFee, error) {
	idx, err := f.pairIndex(ctx, sel)
	if err != nil {
		return types.MarginFee{}, err
	}

	var fee types.MarginFee
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := f.readFixed10(gctx, f.contracts.PairInfos, "pairHourlyBaseFee", idx)
		fee.HourlyBasePercent = v
		return errors.Wrap(err, "hourly base fee")
	})
	g.Go(func() error {
		v, err := f.readFixed10(gctx, f.contracts.PairInfos, "pairMarginFeeLongBps", idx)
		fee.LongBps = v
		return errors.Wrap(err, "long margin fee")
	})
	g.Go(func() error {
		v, err := f.readFixed10(gctx, f.contracts.PairInfos, "pairMarginFeeShortBps", idx)
		fee.ShortBps = v
		return errors.Wrap(err, "short margin fee")
	})
	if err := g.Wait(); err != nil {
		return types.MarginFee{}, err
	}
	return fee, nil
}

// OpeningFeeBps reads the opening fee for a position of sizeUSDC. A
// non-positive size falls back to the default probe size.
func (f *FeeEngine) OpeningFeeBps(ctx context.Context, sel markets.PairSelector, sizeUSDC float64, long bool) (float64, error) {
	idx, err := f.pairIndex(ctx, sel)
	if err != nil {
		return 0, err
	}
	if sizeUSDC <= 0 {
		sizeUSDC = DefaultProbeSizeUSDC
	}
	return f.readFixed10(ctx, f.contracts.PairInfos, "pairOpeningFeeBps",
		idx, units.HumanToQuoteUnits(sizeUSDC), long)
}

// ClosingFeeBps reads the closing fee for a position of sizeUSDC. No rebate
// logic applies on close.
func (f *FeeEngine) ClosingFeeBps(ctx context.Context, sel markets.PairSelector, sizeUSDC float64, long bool) (float64, error) {
	idx, err := f.pairIndex(ctx, sel)
	if err != nil {
		return 0, err
	}
	if sizeUSDC <= 0 {
		sizeUSDC = DefaultProbeSizeUSDC
	}
	return f.readFixed10(ctx, f.contracts.PairInfos, "pairClosingFeeBps",
		idx, units.HumanToQuoteUnits(sizeUSDC), long)
}

// OpeningFeeUSDC converts the intent's opening fee to a quote-currency
// amount and subtracts the trader's referral rebate. The fee read itself is
// required; the rebate lookup degrades to zero.
func (f *FeeEngine) OpeningFeeUSDC(ctx context.Context, intent *types.TradeIntent) (float64, error) {
	bps, err := f.OpeningFeeBps(ctx, markets.ByIndex(intent.PairIndex), intent.PositionSizeUSDC, intent.Long)
	if err != nil {
		return 0, err
	}
	baseFee := intent.PositionSizeUSDC * bps / 10_000
	rebatePercent := f.ReferralRebatePercent(ctx, intent.Trader)
	return baseFee - rebatePercent/100*baseFee, nil
}

// ReferralRebatePercent looks up the trader's referrer and maps the
// referrer's tier through the rebate table. A zero-address referrer means no
// rebate; so does any failed read. Rebates are a discount, never a reason to
// fail a trade.
func (f *FeeEngine) ReferralRebatePercent(ctx context.Context, trader common.Address) float64 {
	vals, err := f.reader.Call(ctx, f.contracts.Referral, "referrerOf", trader)
	if err != nil {
		f.logger.Debug("referrer lookup degraded to no rebate", zap.Error(err))
		return 0
	}
	referrer, err := extractAddress(vals, 0, "referrerOf")
	if err != nil || referrer == (common.Address{}) {
		return 0
	}

	vals, err = f.reader.Call(ctx, f.contracts.Referral, "referrerTier", referrer)
	if err != nil {
		f.logger.Debug("referrer tier lookup degraded to no rebate", zap.Error(err))
		return 0
	}
	tier, err := extractBigInt(vals, 0, "referrerTier")
	if err != nil || !tier.IsUint64() {
		return 0
	}
	return types.ReferralRebatePercentByTier[uint8(tier.Uint64())]
}
