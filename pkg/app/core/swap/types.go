// Package swap decides whether a proposed fill price is acceptable to both
// sides of a matched swap under each order's slippage tolerance.
package swap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Status is the lifecycle state of a swap order.
type Status int8

const (
	Pending Status = iota
	Cancelled
	PartiallyFilled
	Completed
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Cancelled:
		return "cancelled"
	case PartiallyFilled:
		return "partiallyFilled"
	case Completed:
		return "completed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	for v := Pending; v <= Rejected; v++ {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("invalid swap status %q", text)
}

// Type distinguishes resting limit orders from immediate market orders.
type Type int8

const (
	Market Type = iota // fills immediately, removed on any fill
	Limit              // rests on the book, may be partially filled
)

func (t Type) String() string {
	switch t {
	case Market:
		return "market"
	case Limit:
		return "limit"
	default:
		return "unknown"
	}
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "market":
		*t = Market
	case "limit":
		*t = Limit
	default:
		return fmt.Errorf("invalid swap type %q", text)
	}
	return nil
}

// Order is a swap request as recorded by order intake. It is read-only here.
type Order struct {
	ID               common.Hash      `json:"id"` // extrinsic hash of the request
	Account          common.Address   `json:"account"`
	IsMarketMaker    bool             `json:"isMarketMaker"`
	TokenFrom        asset.CurrencyID `json:"tokenFrom"`
	AmountFrom       fixed.Balance    `json:"amountFrom"`
	AmountFromFilled fixed.Balance    `json:"amountFromFilled"`
	TokenTo          asset.CurrencyID `json:"tokenTo"`
	AmountTo         fixed.Balance    `json:"amountTo"`
	AmountToFilled   fixed.Balance    `json:"amountToFilled"`
	Status           Status           `json:"status"`
	Type             Type             `json:"type"`
	BlockNumber      uint32           `json:"blockNumber"`
	Slippage         fixed.Permill    `json:"slippage"` // tolerance on AmountTo
}

// MarketPair fixes which asset is priced (Base) in units of the other (Quote).
type MarketPair struct {
	Base  asset.CurrencyID `json:"base"`
	Quote asset.CurrencyID `json:"quote"`
}

func (p MarketPair) Validate() error {
	if p.Base == p.Quote {
		return fmt.Errorf("%w: %s", ErrSameAssetMarketPair, p.Base)
	}
	return nil
}

// IsSelling reports whether order sells the base asset of the pair.
func (p MarketPair) IsSelling(order Order) (bool, error) {
	switch order.TokenFrom {
	case p.Base:
		return true, nil
	case p.Quote:
		return false, nil
	default:
		return false, fmt.Errorf("%w: order sells %s", ErrUnknownAssetInMarketPair, order.TokenFrom)
	}
}

// FillProposal holds the raw amounts the matching engine intends to transfer.
type FillProposal struct {
	Base  fixed.Balance `json:"base"`
	Quote fixed.Balance `json:"quote"`
}

// Confirmation is a market maker's answer to a taker's swap request.
type Confirmation struct {
	RequestID common.Hash `json:"requestId"`
	// AmountToReceive is paid by the taker in its TokenFrom.
	AmountToReceive fixed.Balance `json:"amountToReceive"`
	// AmountToSend is paid by the market maker in the taker's TokenTo.
	AmountToSend fixed.Balance `json:"amountToSend"`
}

// Proposal maps the confirmation onto the pair's base/quote amounts.
func (c Confirmation) Proposal(taker Order, pair MarketPair) (FillProposal, error) {
	selling, err := pair.IsSelling(taker)
	if err != nil {
		return FillProposal{}, err
	}
	if selling {
		return FillProposal{Base: c.AmountToReceive, Quote: c.AmountToSend}, nil
	}
	return FillProposal{Base: c.AmountToSend, Quote: c.AmountToReceive}, nil
}
