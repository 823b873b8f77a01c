// Package chain provides the default EVM implementations of the SDK's
// collaborator interfaces: a contract reader and a private-key signer built
// on go-ethereum. The rest of the SDK only sees the interfaces in
// core/types, so hosts can substitute their own wallet or RPC stack.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/perpflow/sdk-go/core/types"
)

// Fixed-point params read from PairInfos are 1e10-scaled, matching the
// protocol's price precision.

// tradingABIJSON covers the trade-lifecycle entry points plus the reads the
// SDK needs from the trading contract.
const tradingABIJSON = `[
	{"type":"function","name":"openTrade","stateMutability":"payable","inputs":[
		{"name":"trade","type":"tuple","components":[
			{"name":"trader","type":"address"},
			{"name":"pairIndex","type":"uint256"},
			{"name":"index","type":"uint256"},
			{"name":"positionSizeUSDC","type":"uint256"},
			{"name":"openPrice","type":"uint256"},
			{"name":"buy","type":"bool"},
			{"name":"leverage","type":"uint256"},
			{"name":"tp","type":"uint256"},
			{"name":"sl","type":"uint256"}]},
		{"name":"orderType","type":"uint8"},
		{"name":"slippageBps","type":"uint256"},
		{"name":"priceUpdateData","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"closeTradeMarket","stateMutability":"payable","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"},
		{"name":"amount","type":"uint256"},
		{"name":"priceUpdateData","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"updateTp","stateMutability":"nonpayable","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"},
		{"name":"newTp","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"updateSl","stateMutability":"nonpayable","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"},
		{"name":"newSl","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"topUpCollateral","stateMutability":"nonpayable","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"},
		{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"cancelOpenLimitOrder","stateMutability":"nonpayable","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"index","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"executionFee","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"openTradesCount","stateMutability":"view","inputs":[
		{"name":"trader","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"openTrades","stateMutability":"view","inputs":[
		{"name":"trader","type":"address"},
		{"name":"slot","type":"uint256"}],
		"outputs":[
			{"name":"trader","type":"address"},
			{"name":"pairIndex","type":"uint256"},
			{"name":"index","type":"uint256"},
			{"name":"positionSizeUSDC","type":"uint256"},
			{"name":"openPrice","type":"uint256"},
			{"name":"buy","type":"bool"},
			{"name":"leverage","type":"uint256"},
			{"name":"tp","type":"uint256"},
			{"name":"sl","type":"uint256"},
			{"name":"openTimestamp","type":"uint256"},
			{"name":"accruedMarginFee","type":"uint256"}]}
]`

// pairInfosABIJSON covers the fee and margin parameter reads.
const pairInfosABIJSON = `[
	{"type":"function","name":"pairHourlyBaseFee","stateMutability":"view","inputs":[
		{"name":"pairIndex","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pairMarginFeeLongBps","stateMutability":"view","inputs":[
		{"name":"pairIndex","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pairMarginFeeShortBps","stateMutability":"view","inputs":[
		{"name":"pairIndex","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pairOpeningFeeBps","stateMutability":"view","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"positionSize","type":"uint256"},
		{"name":"buy","type":"bool"}],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"pairClosingFeeBps","stateMutability":"view","inputs":[
		{"name":"pairIndex","type":"uint256"},
		{"name":"positionSize","type":"uint256"},
		{"name":"buy","type":"bool"}],
		"outputs":[{"name":"","type":"uint256"}]}
]`

// referralABIJSON covers the referrer registry reads.
const referralABIJSON = `[
	{"type":"function","name":"referrerOf","stateMutability":"view","inputs":[
		{"name":"trader","type":"address"}],
		"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"referrerTier","stateMutability":"view","inputs":[
		{"name":"referrer","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]}
]`

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}

var (
	tradingABI   = mustParseABI(tradingABIJSON)
	pairInfosABI = mustParseABI(pairInfosABIJSON)
	referralABI  = mustParseABI(referralABIJSON)
)

// TradingEncoder packs trading-contract calldata.
type TradingEncoder struct {
	address common.Address
}

var _ types.TxEncoder = (*TradingEncoder)(nil)

// NewTradingEncoder builds an encoder bound to the trading contract address.
func NewTradingEncoder(trading common.Address) *TradingEncoder {
	return &TradingEncoder{address: trading}
}

// Encode packs a trading-contract method call.
func (e *TradingEncoder) Encode(method string, args ...any) ([]byte, error) {
	data, err := tradingABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	return data, nil
}

// TradingAddress returns the bound contract address.
func (e *TradingEncoder) TradingAddress() common.Address {
	return e.address
}
