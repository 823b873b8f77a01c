package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpflow/sdk-go/core/types"
)

// Well-known test vector: this key derives the hardhat/anvil account 0.
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testKeyAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNewKeySignerDerivesAddress(t *testing.T) {
	signer, err := NewKeySigner(testKeyHex, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testKeyAddr), signer.Address())
}

func TestNewKeySignerAccepts0xPrefix(t *testing.T) {
	signer, err := NewKeySigner("0x"+testKeyHex, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testKeyAddr), signer.Address())
}

func TestNewKeySignerRejectsGarbage(t *testing.T) {
	_, err := NewKeySigner("not-a-key", 1, nil, nil)
	assert.Error(t, err)
}

func TestTradingEncoderPacksOpenTrade(t *testing.T) {
	trading := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	encoder := NewTradingEncoder(trading)
	assert.Equal(t, trading, encoder.TradingAddress())

	trade := types.ProtocolTrade{
		Trader:           common.HexToAddress(testKeyAddr),
		PairIndex:        big.NewInt(0),
		Index:            big.NewInt(0),
		PositionSizeUSDC: big.NewInt(1_000_000_000),
		OpenPrice:        big.NewInt(0),
		Buy:              true,
		Leverage:         big.NewInt(50_000_000_000),
		Tp:               big.NewInt(0),
		Sl:               big.NewInt(0),
	}
	data, err := encoder.Encode("openTrade", trade, uint8(0), big.NewInt(50), []byte{0xde, 0xad})
	require.NoError(t, err)
	assert.Equal(t, tradingABI.Methods["openTrade"].ID, data[:4])
}

func TestTradingEncoderPacksLifecycleMethods(t *testing.T) {
	encoder := NewTradingEncoder(common.Address{})

	tests := []struct {
		method string
		args   []any
	}{
		{"closeTradeMarket", []any{big.NewInt(0), big.NewInt(0), big.NewInt(0), []byte{0x01}}},
		{"updateTp", []any{big.NewInt(0), big.NewInt(0), big.NewInt(25_000_000_000_000)}},
		{"updateSl", []any{big.NewInt(0), big.NewInt(0), big.NewInt(18_000_000_000_000)}},
		{"topUpCollateral", []any{big.NewInt(0), big.NewInt(0), big.NewInt(50_000_000)}},
		{"cancelOpenLimitOrder", []any{big.NewInt(0), big.NewInt(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			data, err := encoder.Encode(tt.method, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tradingABI.Methods[tt.method].ID, data[:4])
		})
	}
}

func TestTradingEncoderRejectsUnknownMethod(t *testing.T) {
	_, err := NewTradingEncoder(common.Address{}).Encode("selfDestruct")
	assert.Error(t, err)
}

func TestParsedABIsCoverExpectedReads(t *testing.T) {
	for _, method := range []string{"executionFee", "openTradesCount", "openTrades"} {
		_, ok := tradingABI.Methods[method]
		assert.True(t, ok, "trading ABI missing %s", method)
	}
	for _, method := range []string{"pairHourlyBaseFee", "pairMarginFeeLongBps", "pairMarginFeeShortBps", "pairOpeningFeeBps", "pairClosingFeeBps"} {
		_, ok := pairInfosABI.Methods[method]
		assert.True(t, ok, "pairInfos ABI missing %s", method)
	}
	for _, method := range []string{"referrerOf", "referrerTier"} {
		_, ok := referralABI.Methods[method]
		assert.True(t, ok, "referral ABI missing %s", method)
	}
}
