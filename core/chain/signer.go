package chain

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/types"
)

const receiptPollInterval = 2 * time.Second

// KeySigner signs and submits EIP-1559 transactions with a local secp256k1
// key. It implements types.TxSigner; the rest of the SDK never touches the
// key material.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
	client  *ethclient.Client
	logger  *zap.Logger
}

var _ types.TxSigner = (*KeySigner)(nil)

// NewKeySigner builds a signer from a hex private key (with or without 0x
// prefix) for the given chain.
func NewKeySigner(hexKey string, chainID int64, client *ethclient.Client, logger *zap.Logger) (*KeySigner, error) {
	if len(hexKey) >= 2 && hexKey[:2] == "0x" {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
		client:  client,
		logger:  logger,
	}, nil
}

// Address returns the signer's account address.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SendTransaction fills in nonce and fee caps, estimates gas when the
// payload does not pin a limit, signs and broadcasts.
func (s *KeySigner) SendTransaction(ctx context.Context, tx *types.UnsignedTx) (common.Hash, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.address)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "fetch nonce")
	}

	tip, err := s.client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "suggest gas tip")
	}
	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "fetch head")
	}
	// feeCap = tip + 2x base fee, the usual headroom for base-fee drift.
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	gasLimit := tx.GasLimit
	if gasLimit == 0 {
		gasLimit, err = s.client.EstimateGas(ctx, ethereum.CallMsg{
			From:  s.address,
			To:    &tx.To,
			Value: tx.Value,
			Data:  tx.Data,
		})
		if err != nil {
			return common.Hash{}, errors.Wrap(err, "estimate gas")
		}
	}

	signed, err := ethtypes.SignNewTx(s.key, ethtypes.LatestSignerForChainID(s.chainID), &ethtypes.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &tx.To,
		Value:     tx.Value,
		Data:      tx.Data,
	})
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign transaction")
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, errors.Wrap(err, "send transaction")
	}
	s.logger.Info("transaction submitted",
		zap.String("hash", signed.Hash().Hex()), zap.Uint64("nonce", nonce))
	return signed.Hash(), nil
}

// WaitForReceipt polls until the transaction is mined or ctx is done.
func (s *KeySigner) WaitForReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrap(err, "fetch receipt")
		}

		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-ticker.C:
		}
	}
}
