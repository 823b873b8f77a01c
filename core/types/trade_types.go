package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OrderType selects how a trade intent executes.
type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStopLimit
	OrderTypeMarketZeroFee
)

func (o OrderType) String() string {
	switch o {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	case OrderTypeMarketZeroFee:
		return "MARKET_ZERO_FEE"
	default:
		return "UNKNOWN"
	}
}

// TradeIntent is a caller-constructed draft of a trade. All monetary fields
// are human-denominated: position size in quote currency, prices in quote
// currency per unit. OpenPrice 0 is the market-order sentinel; TP/SL 0 means
// unset.
type TradeIntent struct {
	Trader           common.Address
	PairIndex        int
	TradeIndex       int // trader-scoped slot, disambiguates concurrent positions on one pair
	PositionSizeUSDC float64
	OpenPrice        float64
	Long             bool
	Leverage         float64
	TakeProfit       float64
	StopLoss         float64
	OrderType        OrderType
	SlippageBps      int // 0..10000
}

// Collateral returns the margin backing the intent: size / leverage.
// Returns 0 when leverage is not positive.
func (t *TradeIntent) Collateral() float64 {
	if t.Leverage <= 0 {
		return 0
	}
	return t.PositionSizeUSDC / t.Leverage
}

// ProtocolTrade is a trade intent serialized into the protocol's fixed-point
// integer representation: quote amounts x 1e6, prices x 1e10.
type ProtocolTrade struct {
	Trader           common.Address
	PairIndex        *big.Int
	Index            *big.Int
	PositionSizeUSDC *big.Int
	OpenPrice        *big.Int
	Buy              bool
	Leverage         *big.Int
	Tp               *big.Int
	Sl               *big.Int
}

// TradeCost is the economics of opening a trade. Total is denominated in
// quote currency and deliberately excludes the execution fee, which is a
// native-token amount and is reported separately.
type TradeCost struct {
	CollateralUSDC     float64
	OpeningFeeUSDC     float64
	ExecutionFeeNative float64
	TotalUSDC          float64
}

// Position is an open on-chain position enriched with locally computed
// economics. LiquidationPrice, Pnl and PnlPercent are recomputed from entry
// parameters, not read verbatim from the chain.
type Position struct {
	Trader               common.Address
	PairIndex            int
	PairName             string
	TradeIndex           int
	CollateralUSDC       float64
	Leverage             float64
	PositionSizeUSDC     float64
	OpenPrice            float64
	Long                 bool
	TakeProfit           float64
	StopLoss             float64
	OpenedAt             int64 // unix seconds
	AccruedMarginFeeUSDC float64
	CurrentPrice         float64 // falls back to OpenPrice when the feed is unavailable
	LiquidationPrice     float64
	PnlUSDC              float64
	PnlPercent           float64
}
