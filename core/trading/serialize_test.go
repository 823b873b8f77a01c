package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeIntent(t *testing.T) {
	intent := validIntent()
	intent.OpenPrice = 2500.5
	intent.TakeProfit = 3000
	intent.StopLoss = 2200.25
	intent.Leverage = 7.5

	trade := SerializeIntent(intent)

	assert.Equal(t, testTrader, trade.Trader)
	assert.EqualValues(t, 0, trade.PairIndex.Int64())
	assert.EqualValues(t, 0, trade.Index.Int64())
	assert.True(t, trade.Buy)
	assert.EqualValues(t, 1_000_000_000, trade.PositionSizeUSDC.Int64(), "quote amounts scale by 1e6")
	assert.EqualValues(t, 25_005_000_000_000, trade.OpenPrice.Int64(), "prices scale by 1e10")
	assert.EqualValues(t, 75_000_000_000, trade.Leverage.Int64())
	assert.EqualValues(t, 30_000_000_000_000, trade.Tp.Int64())
	assert.EqualValues(t, 22_002_500_000_000, trade.Sl.Int64())
}

func TestSerializeIntentZeroSentinels(t *testing.T) {
	trade := SerializeIntent(validIntent())

	assert.EqualValues(t, 0, trade.OpenPrice.Int64(), "market sentinel stays zero")
	assert.EqualValues(t, 0, trade.Tp.Int64())
	assert.EqualValues(t, 0, trade.Sl.Int64())
}

func TestSerializeIntentShort(t *testing.T) {
	intent := validIntent()
	intent.Long = false
	assert.False(t, SerializeIntent(intent).Buy)
}
