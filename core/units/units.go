// Package units converts between human-denominated amounts and the
// protocol's fixed-point integer representation: quote-currency amounts
// carry 6 decimals, prices carry 10. Conversions go through
// shopspring/decimal so round-trips are exact.
package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// QuoteDecimals is the fixed-point scale of quote-currency (USDC) amounts.
	QuoteDecimals = 6
	// PriceDecimals is the fixed-point scale of prices and of the
	// protocol's general-purpose precision parameters.
	PriceDecimals = 10
)

// HumanToQuoteUnits converts a human quote-currency amount to protocol
// units (x 1e6).
func HumanToQuoteUnits(v float64) *big.Int {
	return decimal.NewFromFloat(v).Shift(QuoteDecimals).Round(0).BigInt()
}

// QuoteUnitsToHuman converts protocol quote units back to a human amount.
func QuoteUnitsToHuman(u *big.Int) float64 {
	f, _ := decimal.NewFromBigInt(u, -QuoteDecimals).Float64()
	return f
}

// PriceToUnits converts a human price to protocol units (x 1e10).
func PriceToUnits(v float64) *big.Int {
	return decimal.NewFromFloat(v).Shift(PriceDecimals).Round(0).BigInt()
}

// PriceUnitsToHuman converts protocol price units back to a human price.
func PriceUnitsToHuman(u *big.Int) float64 {
	f, _ := decimal.NewFromBigInt(u, -PriceDecimals).Float64()
	return f
}

// NativeToWei converts a human native-token amount to wei.
func NativeToWei(v float64) *big.Int {
	return decimal.NewFromFloat(v).Shift(18).Round(0).BigInt()
}

// WeiToNative converts wei to a human native-token amount.
func WeiToNative(u *big.Int) float64 {
	f, _ := decimal.NewFromBigInt(u, -18).Float64()
	return f
}
