// Package pairsource implements types.PairSource over the protocol's REST
// pair-listing endpoint.
package pairsource

import (
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/perpflow/sdk-go/core/types"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPPairSource fetches the instrument+category listing over HTTP. Network
// errors, non-2xx statuses and malformed payloads all surface as a single
// ErrFetchFailed-wrapped error; the directory does not distinguish them.
type HTTPPairSource struct {
	client  *resty.Client
	baseURL string
}

var _ types.PairSource = (*HTTPPairSource)(nil)

// NewHTTPPairSource builds a source against the given API base URL.
func NewHTTPPairSource(baseURL string) *HTTPPairSource {
	return &HTTPPairSource{
		client:  resty.New().SetTimeout(defaultRequestTimeout),
		baseURL: baseURL,
	}
}

// Wire format of the listing endpoint.
type listingResponse struct {
	Pairs  []rawPair           `json:"pairs"`
	Groups map[string]rawGroup `json:"groups"`
}

type rawPair struct {
	Index                 int     `json:"index"`
	Name                  string  `json:"name"`
	GroupIndex            int     `json:"groupIndex"`
	MinLeverage           float64 `json:"minLeverage"`
	MaxLeverage           float64 `json:"maxLeverage"`
	SpreadBps             float64 `json:"spreadBps"`
	PriceImpactMultiplier float64 `json:"priceImpactMultiplier"`
	SkewImpactMultiplier  float64 `json:"skewImpactMultiplier"`
	FeedID                string  `json:"feedId"`
	MaxGainPercent        float64 `json:"maxGainPercent"`
	MaxStopLossPercent    float64 `json:"maxSlPercent"`
	LongOI                float64 `json:"longOi"`
	ShortOI               float64 `json:"shortOi"`
	OILimit               float64 `json:"oiLimit"`
}

type rawGroup struct {
	Name    string  `json:"name"`
	LongOI  float64 `json:"longOi"`
	ShortOI float64 `json:"shortOi"`
	OILimit float64 `json:"oiLimit"`
}

// FetchListing retrieves and decodes the full listing.
func (s *HTTPPairSource) FetchListing(ctx context.Context) (*types.PairListing, error) {
	var body listingResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(s.baseURL + "/pairs")
	if err != nil {
		return nil, errors.Wrapf(types.ErrFetchFailed, "request: %v", err)
	}
	if resp.IsError() {
		return nil, errors.Wrapf(types.ErrFetchFailed, "status %d", resp.StatusCode())
	}

	listing := &types.PairListing{
		Pairs:  make([]types.Pair, 0, len(body.Pairs)),
		Groups: make(map[int]types.Group, len(body.Groups)),
	}
	for _, rp := range body.Pairs {
		listing.Pairs = append(listing.Pairs, types.Pair{
			Index:                 rp.Index,
			Name:                  rp.Name,
			GroupIndex:            rp.GroupIndex,
			MinLeverage:           rp.MinLeverage,
			MaxLeverage:           rp.MaxLeverage,
			SpreadBps:             rp.SpreadBps,
			PriceImpactMultiplier: rp.PriceImpactMultiplier,
			SkewImpactMultiplier:  rp.SkewImpactMultiplier,
			FeedID:                rp.FeedID,
			MaxGainPercent:        rp.MaxGainPercent,
			MaxStopLossPercent:    rp.MaxStopLossPercent,
			LongOI:                rp.LongOI,
			ShortOI:               rp.ShortOI,
			OILimit:               rp.OILimit,
		})
	}
	for key, rg := range body.Groups {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(types.ErrFetchFailed, "malformed group index %q", key)
		}
		listing.Groups[idx] = types.Group{
			Index:   idx,
			Name:    rg.Name,
			LongOI:  rg.LongOI,
			ShortOI: rg.ShortOI,
			OILimit: rg.OILimit,
		}
	}
	return listing, nil
}
