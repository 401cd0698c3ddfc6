package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/app/core/swap"
	"github.com/uhyunpark/swapguard/pkg/storage"
	"github.com/uhyunpark/swapguard/pkg/util"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *storage.InMemoryDecisionStore) {
	t.Helper()
	store := storage.NewInMemoryDecisionStore()
	catalog := asset.DefaultCatalog()
	s := NewServer(Options{
		Validator: swap.NewValidator(catalog, swap.Policy{}),
		Catalog:   catalog,
		Network:   asset.Mainnet,
		Store:     store,
		Clock:     util.FixedClock{T: testNow},
	})
	return s, store
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

var btcUSDC = PairRequest{Base: "BTC", Quote: "USDC"}

// sells 1 BTC for 20000 USDC with 1% tolerance
func btcSeller() OrderRequest {
	return OrderRequest{
		TokenFrom:  "BTC",
		AmountFrom: "100000000",
		TokenTo:    "USDC",
		AmountTo:   "20000000000",
		Type:       "market",
		Slippage:   "1%",
	}
}

// market maker buying 1 BTC for 20000 USDC with 1% tolerance
func btcBuyerMM() OrderRequest {
	return OrderRequest{
		Account:       "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		IsMarketMaker: true,
		TokenFrom:     "USDC",
		AmountFrom:    "20000000000",
		TokenTo:       "BTC",
		AmountTo:      "100000000",
		Type:          "limit",
		Slippage:      "10000ppm",
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "mainnet", resp.Network)
	assert.Equal(t, 6, resp.Assets)
}

func TestGetAssets(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/assets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	infos := decode[[]AssetInfo](t, rec)
	require.Len(t, infos, 6)
	assert.Equal(t, "TDFY", infos[0].Symbol)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(t, s, http.MethodGet, "/api/v1/assets/btc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	btc := decode[AssetInfo](t, rec)
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, uint8(8), btc.Exponent)
	assert.Equal(t, "100000000", btc.OneUnit)

	rec = do(t, s, http.MethodGet, "/api/v1/assets/DOGE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetNetworks(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/networks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	infos := decode[[]NetworkInfo](t, rec)
	require.Len(t, infos, len(asset.Networks))
	for _, n := range infos {
		assert.Equal(t, n.Name == "mainnet", n.Current, n.Name)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/networks", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
}

func TestClassify(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/classify", ClassifyRequest{Pair: btcUSDC, Order: btcSeller()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[ClassifyResponse](t, rec).Selling)

	rec = do(t, s, http.MethodPost, "/api/v1/classify", ClassifyRequest{Pair: btcUSDC, Order: btcBuyerMM()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ClassifyResponse](t, rec).Selling)

	outside := btcSeller()
	outside.TokenFrom = "ETH"
	rec = do(t, s, http.MethodPost, "/api/v1/classify", ClassifyRequest{Pair: btcUSDC, Order: outside})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_asset_in_market_pair", decode[ErrorResponse](t, rec).Code)
}

func TestBounds(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/bounds", BoundsRequest{Pair: btcUSDC, Order: btcSeller()})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BoundsResponse](t, rec)
	assert.Equal(t, "19800", resp.LowerBound)
	assert.Empty(t, resp.UpperBound)
	assert.Equal(t, "no_upper_bound_for_selling_price", resp.UpperBoundError)

	rec = do(t, s, http.MethodPost, "/api/v1/bounds", BoundsRequest{Pair: btcUSDC, Order: btcBuyerMM()})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[BoundsResponse](t, rec)
	assert.Equal(t, "20200", resp.UpperBound)
	assert.Equal(t, "no_lower_bound_for_buying_price", resp.LowerBoundError)
}

func TestBounds_BadInput(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		req    BoundsRequest
		status int
		code   string
	}{
		{
			name:   "unknown base symbol",
			req:    BoundsRequest{Pair: PairRequest{Base: "DOGE", Quote: "USDC"}, Order: btcSeller()},
			status: http.StatusBadRequest,
			code:   "unknown_asset",
		},
		{
			name:   "same asset pair",
			req:    BoundsRequest{Pair: PairRequest{Base: "BTC", Quote: "BTC"}, Order: btcSeller()},
			status: http.StatusBadRequest,
			code:   "same_asset_market_pair",
		},
		{
			name: "malformed amount",
			req: func() BoundsRequest {
				o := btcSeller()
				o.AmountTo = "12.5"
				return BoundsRequest{Pair: btcUSDC, Order: o}
			}(),
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		{
			name: "slippage above 100%",
			req: func() BoundsRequest {
				o := btcSeller()
				o.Slippage = "150%"
				return BoundsRequest{Pair: btcUSDC, Order: o}
			}(),
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
		{
			name: "zero base amount",
			req: func() BoundsRequest {
				o := btcSeller()
				o.AmountFrom = "0"
				return BoundsRequest{Pair: btcUSDC, Order: o}
			}(),
			status: http.StatusUnprocessableEntity,
			code:   "slippage_overflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/bounds", tt.req)
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		quote    string
		accepted bool
		code     string
		price    string
	}{
		{"exact", "20000000000", true, "ok", "20000"},
		{"within taker floor", "19800000000", true, "ok", "19800"},
		{"within maker ceiling", "20200000000", true, "ok", "20200"},
		{"below taker floor", "19700000000", false, "offer_is_less_than_swap_lower_bound", "19700"},
		{"above maker ceiling", "20300000000", false, "offer_is_greater_than_market_maker_swap_upper_bound", "20300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestServer(t)
			rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
				Pair:         btcUSDC,
				Taker:        btcSeller(),
				Maker:        btcBuyerMM(),
				OfferedBase:  "100000000",
				OfferedQuote: tt.quote,
			})
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[ValidateResponse](t, rec)
			assert.Equal(t, tt.accepted, resp.Accepted)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.price, resp.Price)
			assert.Equal(t, testNow.UnixMilli(), resp.Timestamp)
			if tt.accepted {
				assert.Empty(t, resp.Message)
			} else {
				assert.NotEmpty(t, resp.Message)
			}

			decisions, err := store.LoadRecentDecisions("BTC/USDC", 10)
			require.NoError(t, err)
			require.Len(t, decisions, 1)
			assert.Equal(t, resp.DecisionID, decisions[0].ID.Hex())
			assert.Equal(t, tt.accepted, decisions[0].Accepted)
		})
	}
}

func TestValidate_Confirmation(t *testing.T) {
	s, _ := newTestServer(t)

	// taker sells BTC: receive is BTC, send is USDC
	rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:  btcUSDC,
		Taker: btcSeller(),
		Maker: btcBuyerMM(),
		Confirmation: &ConfirmationRequest{
			AmountToReceive: "100000000",
			AmountToSend:    "19900000000",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ValidateResponse](t, rec)
	assert.True(t, resp.Accepted)
	assert.Equal(t, "19900", resp.Price)
}

func TestValidate_ConfirmationTakerOutsidePair(t *testing.T) {
	s, store := newTestServer(t)

	taker := btcSeller()
	taker.TokenFrom = "ETH"
	taker.AmountFrom = "1000000000000000000"
	rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:  btcUSDC,
		Taker: taker,
		Maker: btcBuyerMM(),
		Confirmation: &ConfirmationRequest{
			AmountToReceive: "100000000",
			AmountToSend:    "19900000000",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ValidateResponse](t, rec)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "unknown_asset_in_market_pair", resp.Code)
	assert.Empty(t, resp.Price)

	decisions, err := store.LoadRecentDecisions("BTC/USDC", 10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Nil(t, decisions[0].Price)
	assert.True(t, decisions[0].OfferedBase.IsZero())
}

func TestValidate_IdenticalRequestsSameMillisecond(t *testing.T) {
	s, store := newTestServer(t)
	body := ValidateRequest{
		Pair:         btcUSDC,
		Taker:        btcSeller(),
		Maker:        btcBuyerMM(),
		OfferedBase:  "100000000",
		OfferedQuote: "20000000000",
	}

	first := decode[ValidateResponse](t, do(t, s, http.MethodPost, "/api/v1/validate", body))
	second := decode[ValidateResponse](t, do(t, s, http.MethodPost, "/api/v1/validate", body))
	assert.Equal(t, first.Timestamp, second.Timestamp)
	assert.NotEqual(t, first.DecisionID, second.DecisionID)

	decisions, err := store.LoadRecentDecisions("BTC/USDC", 10)
	require.NoError(t, err)
	assert.Len(t, decisions, 2)
}

func TestValidate_UnpricedOfferIsJournaled(t *testing.T) {
	s, store := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:         btcUSDC,
		Taker:        btcSeller(),
		Maker:        btcBuyerMM(),
		OfferedBase:  "0",
		OfferedQuote: "20000000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ValidateResponse](t, rec)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "slippage_overflow", resp.Code)
	assert.Empty(t, resp.Price)

	decisions, err := store.LoadRecentDecisions("BTC/USDC", 10)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.Nil(t, decisions[0].Price)
}

func TestValidate_RejectsUnknownAsset(t *testing.T) {
	s, store := newTestServer(t)

	maker := btcBuyerMM()
	maker.TokenFrom = "DOGE"
	rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:         btcUSDC,
		Taker:        btcSeller(),
		Maker:        maker,
		OfferedBase:  "100000000",
		OfferedQuote: "20000000000",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_asset", decode[ErrorResponse](t, rec).Code)

	decisions, err := store.LoadRecentDecisions("BTC/USDC", 10)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestGetDecisions(t *testing.T) {
	s, _ := newTestServer(t)

	for _, quote := range []string{"20000000000", "19000000000", "20100000000"} {
		taker := btcSeller()
		taker.AmountTo = quote
		rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
			Pair:         btcUSDC,
			Taker:        taker,
			Maker:        btcBuyerMM(),
			OfferedBase:  "100000000",
			OfferedQuote: quote,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/decisions/BTC/USDC", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]storage.Decision](t, rec)
	require.Len(t, all, 3)

	rec = do(t, s, http.MethodGet, "/api/v1/decisions/BTC/USDC?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]storage.Decision](t, rec), 2)

	rec = do(t, s, http.MethodGet, "/api/v1/decisions/ETH/USDC", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = do(t, s, http.MethodGet, "/api/v1/decisions/BTC/USDC?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/decision/"+all[0].ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	one := decode[storage.Decision](t, rec)
	assert.Equal(t, all[0].ID, one.ID)

	rec = do(t, s, http.MethodGet, "/api/v1/decision/0x"+strings.Repeat("ab", 32), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/decision/0x1234", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:         btcUSDC,
		Taker:        btcSeller(),
		Maker:        btcBuyerMM(),
		OfferedBase:  "100000000",
		OfferedQuote: "20000000000",
	})

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `swapguard_validations_total{code="ok",pair="BTC/USDC"} 1`)
}

func subscribed(h *Hub, channel string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.IsSubscribed(channel) {
			return true
		}
	}
	return false
}

func TestWebSocket_DecisionFeed(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	const channel = "decisions:BTC/USDC"
	require.NoError(t, conn.WriteJSON(WSSubscribeRequest{Op: "subscribe", Channels: []string{channel}}))
	require.Eventually(t, func() bool { return subscribed(s.Hub(), channel) }, 2*time.Second, 10*time.Millisecond)

	rec := do(t, s, http.MethodPost, "/api/v1/validate", ValidateRequest{
		Pair:         btcUSDC,
		Taker:        btcSeller(),
		Maker:        btcBuyerMM(),
		OfferedBase:  "100000000",
		OfferedQuote: "19700000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ValidateResponse](t, rec)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Channel string           `json:"channel"`
		Data    storage.Decision `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, channel, msg.Channel)
	assert.Equal(t, resp.DecisionID, msg.Data.ID.Hex())
	assert.False(t, msg.Data.Accepted)
	assert.Equal(t, "offer_is_less_than_swap_lower_bound", msg.Data.Code)
}
