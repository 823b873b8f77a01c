package trading

import (
	"math/big"

	"github.com/perpflow/sdk-go/core/types"
	"github.com/perpflow/sdk-go/core/units"
)

// SerializeIntent converts a trade intent into the protocol's fixed-point
// representation: quote amounts x 1e6, prices and leverage x 1e10. The
// zero sentinels (market entry, unset TP/SL) serialize to zero unchanged.
func SerializeIntent(intent *types.TradeIntent) *types.ProtocolTrade {
	return &types.ProtocolTrade{
		Trader:           intent.Trader,
		PairIndex:        big.NewInt(int64(intent.PairIndex)),
		Index:            big.NewInt(int64(intent.TradeIndex)),
		PositionSizeUSDC: units.HumanToQuoteUnits(intent.PositionSizeUSDC),
		OpenPrice:        units.PriceToUnits(intent.OpenPrice),
		Buy:              intent.Long,
		Leverage:         units.PriceToUnits(intent.Leverage),
		Tp:               units.PriceToUnits(intent.TakeProfit),
		Sl:               units.PriceToUnits(intent.StopLoss),
	}
}
