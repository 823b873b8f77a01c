package types

// Pair is a single tradeable instrument. Pairs are replaced wholesale on
// every directory refresh; delisted pairs are simply absent from the next
// snapshot. All open-interest figures are denominated in quote-currency
// (USDC) units.
type Pair struct {
	Index                 int     // contract-assigned, stable across refreshes
	Name                  string  // e.g. "BTC/USD", unique case-insensitively
	GroupIndex            int     // category membership
	MinLeverage           float64 // > 0
	MaxLeverage           float64 // >= MinLeverage
	SpreadBps             float64 // static spread, basis points
	PriceImpactMultiplier float64
	SkewImpactMultiplier  float64
	FeedID                string // oracle price feed identifier
	MaxGainPercent        float64
	MaxStopLossPercent    float64
	LongOI                float64
	ShortOI               float64
	OILimit               float64
}

// TotalOI returns the combined open interest of both sides.
func (p *Pair) TotalOI() float64 {
	return p.LongOI + p.ShortOI
}

// Group is a category of pairs sharing an aggregate risk limit.
type Group struct {
	Index   int
	Name    string
	LongOI  float64 // aggregate, as reported by the listing
	ShortOI float64
	OILimit float64
}

// PairListing is the raw result of a pair-source fetch: the full instrument
// and category listing for one point in time.
type PairListing struct {
	Pairs  []Pair
	Groups map[int]Group
}

// Spread holds a per-direction basis-point spread estimate.
type Spread struct {
	Long  float64
	Short float64
}

// BiasDirection labels which side blended skew leans toward.
type BiasDirection string

const (
	BiasLong    BiasDirection = "long"
	BiasShort   BiasDirection = "short"
	BiasNeutral BiasDirection = "neutral"
)

// DirectionalBias is the signal derived from blended skew: the direction the
// market leans and how far from balance it sits.
type DirectionalBias struct {
	Direction BiasDirection
	Strength  float64 // |blendedSkew - 50|
}
