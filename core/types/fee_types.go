package types

// MarginFee is the borrowing-fee parameter set of one pair, combined from
// three independent on-chain reads. A failure of any read fails the whole
// record; there is no partial fill here.
type MarginFee struct {
	HourlyBasePercent float64 // protocol base parameter, percent per hour
	LongBps           float64 // long-side rate, basis points per hour
	ShortBps          float64 // short-side rate, basis points per hour
}

// SideBps returns the hourly basis-point rate for the given direction.
func (m MarginFee) SideBps(long bool) float64 {
	if long {
		return m.LongBps
	}
	return m.ShortBps
}

// Projection24hPercent is the crude 24-hour margin-fee projection used by
// liquidation-price estimation: 24 hours of the relevant side's hourly rate,
// expressed in percent.
func (m MarginFee) Projection24hPercent(long bool) float64 {
	return 24 * m.SideBps(long) / 100
}

// ReferralRebatePercentByTier maps a referrer tier to the rebate percentage
// applied to opening fees. Tiers outside the table rebate nothing.
var ReferralRebatePercentByTier = map[uint8]float64{
	0: 0,
	1: 5,
	2: 10,
	3: 15,
}
