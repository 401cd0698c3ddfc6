// Package core re-exports the swap pricing subpackages under one import for
// callers that wire the full stack (service, tooling).
package core

import (
	"fmt"

	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
	"github.com/uhyunpark/swapguard/pkg/app/core/swap"
)

// From fixed package
type (
	Balance = fixed.Balance
	Permill = fixed.Permill
	Price   = fixed.Price
)

// From asset package
type (
	CurrencyID = asset.CurrencyID
	Asset      = asset.Asset
	Catalog    = asset.Catalog
	Network    = asset.Network
)

// From swap package
type (
	Order        = swap.Order
	MarketPair   = swap.MarketPair
	FillProposal = swap.FillProposal
	Confirmation = swap.Confirmation
	Policy       = swap.Policy
	Validator    = swap.Validator
)

// LoadCatalog returns the built-in table when path is empty, otherwise the
// catalog stored at path.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return asset.DefaultCatalog(), nil
	}
	c, err := asset.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return c, nil
}

// NewValidator builds a validator over catalog.
func NewValidator(catalog *Catalog, policy Policy) *Validator {
	return swap.NewValidator(catalog, policy)
}

// ParsePair resolves "BASE/QUOTE" symbols against catalog.
func ParsePair(catalog *Catalog, base, quote string) (MarketPair, error) {
	b, err := catalog.BySymbol(base)
	if err != nil {
		return MarketPair{}, fmt.Errorf("%w: %s", swap.ErrUnknownAsset, base)
	}
	q, err := catalog.BySymbol(quote)
	if err != nil {
		return MarketPair{}, fmt.Errorf("%w: %s", swap.ErrUnknownAsset, quote)
	}
	pair := MarketPair{Base: b.ID, Quote: q.ID}
	if err := pair.Validate(); err != nil {
		return MarketPair{}, err
	}
	return pair, nil
}

// PairSymbol renders pair as "BASE/QUOTE".
func PairSymbol(catalog *Catalog, pair MarketPair) string {
	b, okB := catalog.Get(pair.Base)
	q, okQ := catalog.Get(pair.Quote)
	if !okB || !okQ {
		return pair.Base.String() + "/" + pair.Quote.String()
	}
	return b.Symbol + "/" + q.Symbol
}
