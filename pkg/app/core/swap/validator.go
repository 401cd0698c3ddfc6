package swap

import (
	"bytes"
	"errors"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Policy holds the optional relaxations applied during validation.
type Policy struct {
	// LenientLimitFloor waives lower bound violations of limit orders.
	// Resting orders are re-priced by the book and may sell below their
	// own floor when enabled.
	LenientLimitFloor bool
}

// Validator checks proposed fills against both orders' tolerances.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	deriver *Deriver
	policy  Policy
}

func NewValidator(catalog Catalog, policy Policy) *Validator {
	return &Validator{deriver: NewDeriver(catalog), policy: policy}
}

func (v *Validator) Policy() Policy { return v.policy }

// LowerBound exposes the deriver for callers that want the raw bound.
func (v *Validator) LowerBound(order Order, pair MarketPair) (fixed.Price, error) {
	return v.deriver.LowerBound(order, pair)
}

func (v *Validator) UpperBound(order Order, pair MarketPair) (fixed.Price, error) {
	return v.deriver.UpperBound(order, pair)
}

// IsSelling classifies order against pair after checking both pair assets
// are in the catalog.
func (v *Validator) IsSelling(pair MarketPair, order Order) (bool, error) {
	if _, err := v.deriver.resolve(pair); err != nil {
		return false, err
	}
	return pair.IsSelling(order)
}

// OfferedPrice is the quote-per-base price of a fill proposal.
func (v *Validator) OfferedPrice(pair MarketPair, offeredBase, offeredQuote fixed.Balance) (fixed.Price, error) {
	u, err := v.deriver.resolve(pair)
	if err != nil {
		return fixed.Price{}, err
	}
	return price(u, offeredQuote, offeredBase)
}

// Validate accepts the fill only if neither order's tolerance is violated.
// The result does not depend on which order is passed as taker.
func (v *Validator) Validate(taker, maker Order, pair MarketPair, offeredBase, offeredQuote fixed.Balance) error {
	_, err := v.Evaluate(taker, maker, pair, offeredBase, offeredQuote)
	return err
}

// Evaluate is Validate that also returns the offered price it checked.
// The price is nil when the offer could not be priced.
func (v *Validator) Evaluate(taker, maker Order, pair MarketPair, offeredBase, offeredQuote fixed.Balance) (*fixed.Price, error) {
	u, err := v.deriver.resolve(pair)
	if err != nil {
		return nil, err
	}
	offered, err := price(u, offeredQuote, offeredBase)
	if err != nil {
		return nil, err
	}

	errTaker := v.dryRun(u, taker, pair, offered)
	errMaker := v.dryRun(u, maker, pair, offered)
	switch {
	case errTaker == nil:
		return &offered, errMaker
	case errMaker == nil:
		return &offered, errTaker
	}
	return &offered, pick(errTaker, errMaker, taker, maker)
}

// ValidateConfirmation validates the fill a market maker confirmed for taker.
func (v *Validator) ValidateConfirmation(taker, maker Order, pair MarketPair, conf Confirmation) error {
	if _, err := v.deriver.resolve(pair); err != nil {
		return err
	}
	fill, err := conf.Proposal(taker, pair)
	if err != nil {
		return err
	}
	return v.Validate(taker, maker, pair, fill.Base, fill.Quote)
}

// dryRun checks one order: a buyer of the base asset rejects prices above
// its upper bound, anyone else rejects prices below its lower bound.
func (v *Validator) dryRun(u units, order Order, pair MarketPair, offered fixed.Price) error {
	if order.TokenTo == pair.Base {
		upper, err := v.deriver.upperBound(u, order, pair)
		if err != nil {
			return err
		}
		if offered.Cmp(upper) > 0 {
			kind := ErrOfferIsGreaterThanSwapUpperBound
			if order.IsMarketMaker {
				kind = ErrOfferIsGreaterThanMarketMakerSwapUpperBound
			}
			return violation(kind, order, offered, upper)
		}
		return nil
	}

	lower, err := v.deriver.lowerBound(u, order, pair)
	if err != nil {
		return err
	}
	if offered.Cmp(lower) < 0 {
		if v.policy.LenientLimitFloor && order.Type == Limit {
			return nil
		}
		kind := ErrOfferIsLessThanSwapLowerBound
		if order.IsMarketMaker {
			kind = ErrOfferIsLessThanMarketMakerSwapLowerBound
		}
		return violation(kind, order, offered, lower)
	}
	return nil
}

func violation(kind error, order Order, offered, bound fixed.Price) error {
	return &ViolationError{
		Kind:          kind,
		OrderID:       order.ID,
		OrderType:     order.Type,
		IsMarketMaker: order.IsMarketMaker,
		Offered:       offered,
		Bound:         bound,
	}
}

// pick chooses between two failures independently of argument order:
// by error rank, then by the stricter violated bound, then by order id.
func pick(a, b error, orderA, orderB Order) error {
	if ra, rb := rank(a), rank(b); ra != rb {
		if ra < rb {
			return a
		}
		return b
	}

	var va, vb *ViolationError
	if errors.As(a, &va) && errors.As(b, &vb) {
		if c := va.Bound.Cmp(vb.Bound); c != 0 {
			// higher floor or lower ceiling is stricter
			if (c > 0) == va.IsLower() {
				return a
			}
			return b
		}
	}

	switch c := bytes.Compare(orderA.ID[:], orderB.ID[:]); {
	case c < 0:
		return a
	case c > 0:
		return b
	}
	if a.Error() <= b.Error() {
		return a
	}
	return b
}
