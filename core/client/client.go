// Package client assembles the SDK: collaborators on the outside, the
// market-metrics and trade-lifecycle components wired leaf-first on the
// inside. TradeEngine and SnapshotAggregator only ever see
// already-constructed leaves; nothing reaches back into the client.
package client

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/chain"
	"github.com/perpflow/sdk-go/core/markets"
	"github.com/perpflow/sdk-go/core/pairsource"
	"github.com/perpflow/sdk-go/core/pricefeed"
	"github.com/perpflow/sdk-go/core/trading"
	"github.com/perpflow/sdk-go/core/types"
)

// Config carries everything NewClient needs beyond the options. The URLs
// are only required when the corresponding default collaborator is used.
type Config struct {
	PairAPIBaseURL string
	PriceAPIURL    string
	PriceWSURL     string // empty disables price streaming
	Contracts      types.ContractAddresses
}

// Client is the SDK entry point.
type Client struct {
	Signer types.TxSigner // nil for read-only clients

	reader      types.ChainReader
	pairSource  types.PairSource
	priceSource types.PriceSource
	encoder     types.TxEncoder
	contracts   types.ContractAddresses
	logger      *zap.Logger

	pairCacheTTL time.Duration

	directory  *markets.PairDirectory
	asset      *markets.AssetMetrics
	category   *markets.CategoryMetrics
	blended    *markets.BlendedMetrics
	aggregator *markets.SnapshotAggregator
	fees       *trading.FeeEngine
	engine     *trading.TradeEngine
}

// Option customizes client construction.
type Option func(*Client)

// WithSigner attaches a wallet, enabling write operations.
func WithSigner(signer types.TxSigner) Option {
	return func(c *Client) { c.Signer = signer }
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithChainReader substitutes the contract reader (tests, custom RPC stacks).
func WithChainReader(reader types.ChainReader) Option {
	return func(c *Client) { c.reader = reader }
}

// WithPairSource substitutes the pair-listing source.
func WithPairSource(source types.PairSource) Option {
	return func(c *Client) { c.pairSource = source }
}

// WithPriceSource substitutes the oracle price source.
func WithPriceSource(source types.PriceSource) Option {
	return func(c *Client) { c.priceSource = source }
}

// WithTxEncoder substitutes the calldata encoder.
func WithTxEncoder(encoder types.TxEncoder) Option {
	return func(c *Client) { c.encoder = encoder }
}

// WithPairCacheTTL overrides the pair directory cache TTL.
func WithPairCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.pairCacheTTL = ttl }
}

// NewClient builds and validates a client. Collaborators not supplied via
// options must be constructible from cfg; the usual call sites pass default
// implementations through options built by the caller (see examples) or rely
// on cfg-driven defaults for the REST sources and encoder.
func NewClient(cfg Config, options ...Option) (*Client, error) {
	c := &Client{
		contracts:    cfg.Contracts,
		pairCacheTTL: markets.DefaultPairCacheTTL,
		logger:       zap.NewNop(),
	}
	for _, option := range options {
		option(c)
	}

	validate := validator.New()
	if c.pairSource == nil {
		if err := validate.Var(cfg.PairAPIBaseURL, "required,url"); err != nil {
			return nil, errors.Wrap(types.ErrInvalidConfiguration, "pair API base URL is required when no pair source is supplied")
		}
		c.pairSource = pairsource.NewHTTPPairSource(cfg.PairAPIBaseURL)
	}
	if c.priceSource == nil {
		if err := validate.Var(cfg.PriceAPIURL, "required,url"); err != nil {
			return nil, errors.Wrap(types.ErrInvalidConfiguration, "price API URL is required when no price source is supplied")
		}
		c.priceSource = pricefeed.NewFeed(cfg.PriceAPIURL, cfg.PriceWSURL, c.logger)
	}
	if c.encoder == nil {
		c.encoder = chain.NewTradingEncoder(cfg.Contracts.Trading)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	// Leaf-first wiring.
	c.directory = markets.NewPairDirectory(c.pairSource, c.pairCacheTTL, c.logger)
	c.asset = markets.NewAssetMetrics(c.directory)
	c.category = markets.NewCategoryMetrics(c.directory)
	c.blended = markets.NewBlendedMetrics(c.asset, c.category)
	c.fees = trading.NewFeeEngine(c.reader, c.contracts, c.directory, c.logger)
	c.aggregator = markets.NewSnapshotAggregator(c.directory, c.asset, c.category, c.fees, c.logger)
	c.engine = trading.NewTradeEngine(c.directory, c.fees, c.priceSource, c.reader, c.encoder, c.contracts, c.logger)

	return c, nil
}

func (c *Client) validate() error {
	if c.reader == nil {
		return errors.Wrap(types.ErrInvalidConfiguration, "chain reader is required")
	}
	if c.pairSource == nil {
		return errors.Wrap(types.ErrInvalidConfiguration, "pair source is required")
	}
	if c.priceSource == nil {
		return errors.Wrap(types.ErrInvalidConfiguration, "price source is required")
	}
	return nil
}

// Directory returns the pair directory.
func (c *Client) Directory() *markets.PairDirectory { return c.directory }

// AssetMetrics returns the per-pair metrics layer.
func (c *Client) AssetMetrics() *markets.AssetMetrics { return c.asset }

// CategoryMetrics returns the per-group metrics layer.
func (c *Client) CategoryMetrics() *markets.CategoryMetrics { return c.category }

// BlendedMetrics returns the blended metrics layer.
func (c *Client) BlendedMetrics() *markets.BlendedMetrics { return c.blended }

// Snapshots returns the snapshot aggregator.
func (c *Client) Snapshots() *markets.SnapshotAggregator { return c.aggregator }

// Fees returns the fee engine.
func (c *Client) Fees() *trading.FeeEngine { return c.fees }

// Trading returns the trade engine.
func (c *Client) Trading() *trading.TradeEngine { return c.engine }

// Address returns the signer's address; callers must only use it on clients
// constructed with a signer.
func (c *Client) Address() (common.Address, error) {
	if c.Signer == nil {
		return common.Address{}, errors.WithStack(types.ErrNoSigner)
	}
	return c.Signer.Address(), nil
}

// SubmitTx signs and broadcasts an assembled transaction.
func (c *Client) SubmitTx(ctx context.Context, tx *types.UnsignedTx) (common.Hash, error) {
	if c.Signer == nil {
		return common.Hash{}, errors.WithStack(types.ErrNoSigner)
	}
	return c.Signer.SendTransaction(ctx, tx)
}

// WaitForTx blocks until the transaction is mined or ctx is done.
func (c *Client) WaitForTx(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	if c.Signer == nil {
		return nil, errors.WithStack(types.ErrNoSigner)
	}
	return c.Signer.WaitForReceipt(ctx, txHash)
}
