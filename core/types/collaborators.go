package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// PairSource fetches the full instrument+category listing from the upstream
// market-data feed. Network errors, non-2xx statuses and malformed payloads
// are all surfaced as a single ErrFetchFailed-wrapped error.
type PairSource interface {
	FetchListing(ctx context.Context) (*PairListing, error)
}

// PriceUpdateProof is a fresh oracle attestation plus the native-token fee
// the on-chain verifier charges to accept it.
type PriceUpdateProof struct {
	ProofBytes   []byte
	UpdateFeeWei *big.Int
}

// PriceSource exposes the external price oracle. GetPrice may fail
// per-feed; callers degrade gracefully except at the trade-build step,
// where a missing proof is fatal.
type PriceSource interface {
	GetPrice(ctx context.Context, feedID string) (float64, error)
	GetPriceUpdateProof(ctx context.Context, feedIDs []string) (*PriceUpdateProof, error)
}

// ChainReader performs read-only contract calls. Results come back as the
// unpacked return values of the called method, in declaration order.
type ChainReader interface {
	Call(ctx context.Context, contract common.Address, method string, args ...any) ([]any, error)
}

// TxEncoder packs a protocol call into calldata for the trading contract.
type TxEncoder interface {
	Encode(method string, args ...any) ([]byte, error)
	TradingAddress() common.Address
}

// UnsignedTx is an assembled but unsigned transaction payload.
type UnsignedTx struct {
	To       common.Address
	Data     []byte
	Value    *big.Int // wei; execution fee + oracle update fee where required
	GasLimit uint64   // 0 lets the signer estimate
}

// TxSigner is the wallet capability consumed by the SDK. The SDK never
// inspects private key material.
type TxSigner interface {
	Address() common.Address
	SendTransaction(ctx context.Context, tx *UnsignedTx) (common.Hash, error)
	WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// ContractAddresses names the protocol contracts the SDK talks to.
type ContractAddresses struct {
	Trading   common.Address // trade lifecycle entry points
	PairInfos common.Address // fee and margin parameters
	Referral  common.Address // referrer registry and tiers
}
