// Package pricefeed implements types.PriceSource against an oracle price
// service: REST lookups for spot prices and update proofs, plus an optional
// websocket stream that keeps a live last-price table so hot paths skip the
// round trip.
package pricefeed

import (
	"context"
	"encoding/hex"
	"math/big"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/perpflow/sdk-go/core/types"
)

const defaultRequestTimeout = 10 * time.Second

// Feed is the default PriceSource implementation.
type Feed struct {
	client  *resty.Client
	baseURL string
	wsURL   string
	logger  *zap.Logger

	mu   sync.RWMutex
	live map[string]float64 // feedID -> last streamed price
}

var _ types.PriceSource = (*Feed)(nil)

// NewFeed builds a feed against the oracle service. wsURL may be empty to
// disable streaming; GetPrice then always hits REST.
func NewFeed(baseURL, wsURL string, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		client:  resty.New().SetTimeout(defaultRequestTimeout),
		baseURL: baseURL,
		wsURL:   wsURL,
		logger:  logger,
		live:    make(map[string]float64),
	}
}

type priceResponse struct {
	Price float64 `json:"price"`
}

// GetPrice returns the latest price for a feed, preferring the streamed
// table when a subscription is running.
func (f *Feed) GetPrice(ctx context.Context, feedID string) (float64, error) {
	f.mu.RLock()
	price, ok := f.live[feedID]
	f.mu.RUnlock()
	if ok {
		return price, nil
	}

	var body priceResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(f.baseURL + "/price/" + feedID)
	if err != nil {
		return 0, errors.Wrapf(types.ErrPriceUnavailable, "feed %s: %v", feedID, err)
	}
	if resp.IsError() {
		return 0, errors.Wrapf(types.ErrPriceUnavailable, "feed %s: status %d", feedID, resp.StatusCode())
	}
	if body.Price <= 0 {
		return 0, errors.Wrapf(types.ErrPriceUnavailable, "feed %s: empty price", feedID)
	}
	return body.Price, nil
}

type proofResponse struct {
	ProofHex     string `json:"proof"`
	UpdateFeeWei string `json:"updateFeeWei"`
}

// GetPriceUpdateProof fetches a signed price attestation covering the given
// feeds plus the native fee the on-chain verifier charges for it.
func (f *Feed) GetPriceUpdateProof(ctx context.Context, feedIDs []string) (*types.PriceUpdateProof, error) {
	if len(feedIDs) == 0 {
		return nil, errors.Wrap(types.ErrProofUnavailable, "no feeds requested")
	}

	var body proofResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(url.Values{"feed": feedIDs}).
		SetResult(&body).
		Get(f.baseURL + "/price-update")
	if err != nil {
		return nil, errors.Wrapf(types.ErrProofUnavailable, "request: %v", err)
	}
	if resp.IsError() {
		return nil, errors.Wrapf(types.ErrProofUnavailable, "status %d", resp.StatusCode())
	}

	proofBytes, err := hex.DecodeString(trim0x(body.ProofHex))
	if err != nil {
		return nil, errors.Wrapf(types.ErrProofUnavailable, "malformed proof: %v", err)
	}
	fee, ok := new(big.Int).SetString(body.UpdateFeeWei, 10)
	if !ok {
		return nil, errors.Wrapf(types.ErrProofUnavailable, "malformed update fee %q", body.UpdateFeeWei)
	}
	return &types.PriceUpdateProof{ProofBytes: proofBytes, UpdateFeeWei: fee}, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

type streamMessage struct {
	FeedID string  `json:"feed"`
	Price  float64 `json:"price"`
}

// Subscribe opens the websocket stream and keeps the live price table
// updated until ctx is cancelled or the connection drops. Reconnecting is
// the caller's decision, like every other retry in this SDK.
func (f *Feed) Subscribe(ctx context.Context, feedIDs []string) error {
	if f.wsURL == "" {
		return errors.New("streaming disabled: no websocket URL configured")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return errors.Wrap(err, "dial price stream")
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"op": "subscribe", "feeds": feedIDs}); err != nil {
		return errors.Wrap(err, "subscribe to feeds")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return errors.WithStack(ctx.Err())
			}
			return errors.Wrap(err, "read price stream")
		}
		if msg.FeedID == "" || msg.Price <= 0 {
			continue
		}
		f.mu.Lock()
		f.live[msg.FeedID] = msg.Price
		f.mu.Unlock()
		f.logger.Debug("streamed price", zap.String("feed", msg.FeedID), zap.Float64("price", msg.Price))
	}
}
