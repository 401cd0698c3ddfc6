package swap

import (
	"fmt"

	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Catalog resolves decimal exponents. *asset.Catalog satisfies it.
type Catalog interface {
	Exponent(id asset.CurrencyID) (uint8, bool)
}

// Deriver computes the worst price each order accepts on a given pair.
type Deriver struct {
	catalog Catalog
}

func NewDeriver(catalog Catalog) *Deriver {
	return &Deriver{catalog: catalog}
}

// units holds one whole token of each pair leg in raw amounts.
type units struct {
	base, quote fixed.Balance
}

func (d *Deriver) resolve(pair MarketPair) (units, error) {
	baseExp, ok := d.catalog.Exponent(pair.Base)
	if !ok {
		return units{}, fmt.Errorf("%w: base %s", ErrUnknownAsset, pair.Base)
	}
	quoteExp, ok := d.catalog.Exponent(pair.Quote)
	if !ok {
		return units{}, fmt.Errorf("%w: quote %s", ErrUnknownAsset, pair.Quote)
	}
	if err := pair.Validate(); err != nil {
		return units{}, err
	}
	return units{base: asset.OneUnit(baseExp), quote: asset.OneUnit(quoteExp)}, nil
}

// LowerBound is the least quote-per-base price a seller of the base asset
// accepts: AmountTo less its slippage, over AmountFrom.
func (d *Deriver) LowerBound(order Order, pair MarketPair) (fixed.Price, error) {
	u, err := d.resolve(pair)
	if err != nil {
		return fixed.Price{}, err
	}
	return d.lowerBound(u, order, pair)
}

// UpperBound is the greatest quote-per-base price a buyer of the base asset
// accepts: AmountFrom plus its slippage, over AmountTo.
func (d *Deriver) UpperBound(order Order, pair MarketPair) (fixed.Price, error) {
	u, err := d.resolve(pair)
	if err != nil {
		return fixed.Price{}, err
	}
	return d.upperBound(u, order, pair)
}

func (d *Deriver) lowerBound(u units, order Order, pair MarketPair) (fixed.Price, error) {
	if order.TokenFrom != pair.Base {
		return fixed.Price{}, ErrNoLowerBoundForBuyingPrice
	}
	quote, ok := order.AmountTo.CheckedSub(order.Slippage.Mul(order.AmountTo))
	if !ok {
		quote = order.AmountTo
	}
	return price(u, quote, order.AmountFrom)
}

func (d *Deriver) upperBound(u units, order Order, pair MarketPair) (fixed.Price, error) {
	if order.TokenTo != pair.Base {
		return fixed.Price{}, ErrNoUpperBoundForSellingPrice
	}
	quote := order.AmountFrom.SaturatingAdd(order.Slippage.Mul(order.AmountFrom))
	return price(u, quote, order.AmountTo)
}

func price(u units, quote, base fixed.Balance) (fixed.Price, error) {
	p, err := fixed.ComputePrice(quote, u.quote, base, u.base)
	if err != nil {
		return fixed.Price{}, fmt.Errorf("%w: %w", ErrSlippageOverflow, err)
	}
	return p, nil
}
