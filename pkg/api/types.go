package api

import (
	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/storage"
)

// API request and response types for REST endpoints and WebSocket messages

// ==============================
// REST Request Types
// ==============================

// PairRequest names a market pair by symbol, e.g. {"base":"BTC","quote":"USDC"}
type PairRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// OrderRequest describes one swap order. Amounts are raw integer units.
type OrderRequest struct {
	ID            string `json:"id,omitempty"`      // 0x-prefixed 32-byte hash; derived if empty
	Account       string `json:"account,omitempty"` // 0x-prefixed address
	IsMarketMaker bool   `json:"isMarketMaker"`
	TokenFrom     string `json:"tokenFrom"` // symbol
	AmountFrom    string `json:"amountFrom"`
	TokenTo       string `json:"tokenTo"`
	AmountTo      string `json:"amountTo"`
	Type          string `json:"type"`     // "market" or "limit"
	Slippage      string `json:"slippage"` // "1%", "10000ppm" or "0.01"
}

// ClassifyRequest asks whether an order sells the pair's base asset
type ClassifyRequest struct {
	Pair  PairRequest  `json:"pair"`
	Order OrderRequest `json:"order"`
}

// BoundsRequest asks for an order's acceptable price range
type BoundsRequest struct {
	Pair  PairRequest  `json:"pair"`
	Order OrderRequest `json:"order"`
}

// ConfirmationRequest is a market maker's fill confirmation
type ConfirmationRequest struct {
	RequestID       string `json:"requestId,omitempty"`
	AmountToReceive string `json:"amountToReceive"`
	AmountToSend    string `json:"amountToSend"`
}

// ValidateRequest proposes a fill between taker and maker. Either the
// offered amounts or a confirmation must be set.
type ValidateRequest struct {
	Pair         PairRequest          `json:"pair"`
	Taker        OrderRequest         `json:"taker"`
	Maker        OrderRequest         `json:"maker"`
	OfferedBase  string               `json:"offeredBase,omitempty"`
	OfferedQuote string               `json:"offeredQuote,omitempty"`
	Confirmation *ConfirmationRequest `json:"confirmation,omitempty"`
}

// ==============================
// REST Response Types
// ==============================

// AssetInfo is a catalog entry with the configured network's deployment data
type AssetInfo struct {
	ID        asset.CurrencyID `json:"id"`
	Symbol    string           `json:"symbol"`
	Name      string           `json:"name"`
	Exponent  uint8            `json:"exponent"`
	OneUnit   string           `json:"oneUnit"`
	Algo      string           `json:"algo"`
	UnitName  string           `json:"unitName,omitempty"`
	Prefix    string           `json:"prefix,omitempty"`
	Pot       bool             `json:"pot"`
	BaseChain string           `json:"baseChain,omitempty"`
	MinStake  string           `json:"minStake"`
	MaxStake  string           `json:"maxStake"`
	ChainID   *uint32          `json:"chainId,omitempty"`
	Router    string           `json:"router,omitempty"`
	Multisig  string           `json:"multisig,omitempty"`
	Contract  string           `json:"contract,omitempty"`
}

// NetworkInfo lists a network and whether the server runs against it
type NetworkInfo struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

type ClassifyResponse struct {
	Selling bool `json:"selling"`
}

// BoundsResponse carries both bounds; the one that does not apply to the
// order's side carries an error code instead of a price.
type BoundsResponse struct {
	LowerBound      string `json:"lowerBound,omitempty"`
	LowerBoundError string `json:"lowerBoundError,omitempty"`
	UpperBound      string `json:"upperBound,omitempty"`
	UpperBoundError string `json:"upperBoundError,omitempty"`
}

// ValidateResponse is the outcome of one validation
type ValidateResponse struct {
	DecisionID string `json:"decisionId"`
	Accepted   bool   `json:"accepted"`
	Price      string `json:"price,omitempty"` // quote per base
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	Timestamp  int64  `json:"timestamp"` // Unix milliseconds
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status  string `json:"status"`
	Network string `json:"network"`
	Assets  int    `json:"assets"`
}

// ErrorResponse represents an error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest represents a subscription request
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g., ["decisions:BTC/USDC"]
}

// WSMessage wraps every pushed message
type WSMessage struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

// WSDecisionUpdate is pushed on "decisions:<BASE>/<QUOTE>"
type WSDecisionUpdate = storage.Decision
