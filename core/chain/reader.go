package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/types"
)

// DefaultCallTimeout bounds each individual contract read. Every call gets
// its own timeout; there is no cross-operation cancellation.
const DefaultCallTimeout = 10 * time.Second

// EthReader implements types.ChainReader over a go-ethereum client. The ABI
// for each known contract address is registered at construction, so callers
// talk method names and Go values, never raw calldata.
type EthReader struct {
	client  *ethclient.Client
	abis    map[common.Address]abi.ABI
	timeout time.Duration
	logger  *zap.Logger
}

var _ types.ChainReader = (*EthReader)(nil)

// NewEthReader builds a reader over the given RPC client and contract set.
func NewEthReader(client *ethclient.Client, contracts types.ContractAddresses, logger *zap.Logger) *EthReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthReader{
		client: client,
		abis: map[common.Address]abi.ABI{
			contracts.Trading:   tradingABI,
			contracts.PairInfos: pairInfosABI,
			contracts.Referral:  referralABI,
		},
		timeout: DefaultCallTimeout,
		logger:  logger,
	}
}

// Call executes an eth_call against a registered contract and returns the
// unpacked outputs in declaration order.
func (r *EthReader) Call(ctx context.Context, contract common.Address, method string, args ...any) ([]any, error) {
	contractABI, ok := r.abis[contract]
	if !ok {
		return nil, errors.Errorf("no ABI registered for contract %s", contract.Hex())
	}

	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.client.CallContract(callCtx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s on %s", method, contract.Hex())
	}

	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s result", method)
	}
	return out, nil
}
