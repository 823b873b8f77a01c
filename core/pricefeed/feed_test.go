package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perpflow/sdk-go/core/types"
)

func TestGetPriceFromREST(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price/btc-feed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 64250.5}`))
	}))
	defer server.Close()

	price, err := NewFeed(server.URL, "", nil).GetPrice(context.Background(), "btc-feed")
	require.NoError(t, err)
	assert.InDelta(t, 64250.5, price, 1e-9)
}

func TestGetPricePrefersLiveTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("REST endpoint must not be hit when a streamed price exists")
	}))
	defer server.Close()

	feed := NewFeed(server.URL, "", nil)
	feed.mu.Lock()
	feed.live["btc-feed"] = 65000
	feed.mu.Unlock()

	price, err := feed.GetPrice(context.Background(), "btc-feed")
	require.NoError(t, err)
	assert.InDelta(t, 65000, price, 1e-9)
}

func TestGetPriceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFeed(server.URL, "", nil).GetPrice(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrPriceUnavailable)
}

func TestGetPriceRejectsEmptyPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price": 0}`))
	}))
	defer server.Close()

	_, err := NewFeed(server.URL, "", nil).GetPrice(context.Background(), "btc-feed")
	assert.ErrorIs(t, err, types.ErrPriceUnavailable)
}

func TestGetPriceUpdateProof(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price-update", r.URL.Path)
		require.Equal(t, []string{"btc-feed", "eth-feed"}, r.URL.Query()["feed"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"proof": "0xdeadbeef", "updateFeeWei": "1500000000000000"}`))
	}))
	defer server.Close()

	proof, err := NewFeed(server.URL, "", nil).GetPriceUpdateProof(context.Background(), []string{"btc-feed", "eth-feed"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, proof.ProofBytes)
	assert.Equal(t, "1500000000000000", proof.UpdateFeeWei.String())
}

func TestGetPriceUpdateProofFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no feeds", func(t *testing.T) {
		_, err := NewFeed("http://localhost:0", "", nil).GetPriceUpdateProof(ctx, nil)
		assert.ErrorIs(t, err, types.ErrProofUnavailable)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()
		_, err := NewFeed(server.URL, "", nil).GetPriceUpdateProof(ctx, []string{"btc-feed"})
		assert.ErrorIs(t, err, types.ErrProofUnavailable)
	})

	t.Run("malformed proof hex", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"proof": "0xzz", "updateFeeWei": "1"}`))
		}))
		defer server.Close()
		_, err := NewFeed(server.URL, "", nil).GetPriceUpdateProof(ctx, []string{"btc-feed"})
		assert.ErrorIs(t, err, types.ErrProofUnavailable)
	})

	t.Run("malformed update fee", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"proof": "0xdeadbeef", "updateFeeWei": "not-a-number"}`))
		}))
		defer server.Close()
		_, err := NewFeed(server.URL, "", nil).GetPriceUpdateProof(ctx, []string{"btc-feed"})
		assert.ErrorIs(t, err, types.ErrProofUnavailable)
	})
}

func TestSubscribeRequiresWebsocketURL(t *testing.T) {
	err := NewFeed("http://localhost:0", "", nil).Subscribe(context.Background(), []string{"btc-feed"})
	assert.Error(t, err)
}
