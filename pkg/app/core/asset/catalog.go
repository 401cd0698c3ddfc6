package asset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Catalog is an immutable table of assets keyed by CurrencyID.
// It is built once and is safe for concurrent reads without locking.
// Every Asset it hands out is a deep copy.
type Catalog struct {
	assets   map[CurrencyID]*Asset
	bySymbol map[string]*Asset // upper-case symbol -> asset
	ordered  []*Asset          // sorted by CurrencyID
}

// NewCatalog validates the table and returns it.
// Fails on duplicate ids or symbols and on unknown base chains.
func NewCatalog(assets ...Asset) (*Catalog, error) {
	c := &Catalog{
		assets:   make(map[CurrencyID]*Asset, len(assets)),
		bySymbol: make(map[string]*Asset, len(assets)),
	}

	for i := range assets {
		a := assets[i].clone()
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.assets[a.ID]; exists {
			return nil, fmt.Errorf("asset %s already registered", a.ID)
		}
		sym := strings.ToUpper(a.Symbol)
		if _, exists := c.bySymbol[sym]; exists {
			return nil, fmt.Errorf("asset symbol %s already registered", sym)
		}
		c.assets[a.ID] = &a
		c.bySymbol[sym] = &a
		c.ordered = append(c.ordered, &a)
	}

	for _, a := range c.ordered {
		if a.BaseChain == "" {
			continue
		}
		if _, ok := c.bySymbol[strings.ToUpper(a.BaseChain)]; !ok {
			return nil, fmt.Errorf("asset %s: base chain %s not in catalog", a.Symbol, a.BaseChain)
		}
	}

	slices.SortFunc(c.ordered, func(x, y *Asset) int { return x.ID.Compare(y.ID) })
	return c, nil
}

// MustCatalog panics if the table is invalid. Only for static tables.
func MustCatalog(assets ...Asset) *Catalog {
	c, err := NewCatalog(assets...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get retrieves an asset by id.
func (c *Catalog) Get(id CurrencyID) (Asset, bool) {
	a, ok := c.assets[id]
	if !ok {
		return Asset{}, false
	}
	return a.clone(), true
}

// BySymbol looks an asset up case-insensitively.
func (c *Catalog) BySymbol(symbol string) (Asset, error) {
	a, ok := c.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return Asset{}, fmt.Errorf("asset %s not found", symbol)
	}
	return a.clone(), nil
}

// Exponent returns the decimal exponent of id.
func (c *Catalog) Exponent(id CurrencyID) (uint8, bool) {
	a, ok := c.assets[id]
	if !ok {
		return 0, false
	}
	return a.Exponent, true
}

// OneUnit returns the raw amount of one whole token of id.
func (c *Catalog) OneUnit(id CurrencyID) (fixed.Balance, bool) {
	exp, ok := c.Exponent(id)
	if !ok {
		return fixed.Balance{}, false
	}
	return OneUnit(exp), true
}

// BaseChainOf returns the chain asset a token is issued on, if any.
func (c *Catalog) BaseChainOf(id CurrencyID) (Asset, bool) {
	a, ok := c.assets[id]
	if !ok || a.BaseChain == "" {
		return Asset{}, false
	}
	bc := c.bySymbol[strings.ToUpper(a.BaseChain)]
	return bc.clone(), true
}

// List returns every asset ordered by id.
func (c *Catalog) List() []Asset {
	out := make([]Asset, len(c.ordered))
	for i, a := range c.ordered {
		out[i] = a.clone()
	}
	return out
}

func (c *Catalog) Count() int { return len(c.ordered) }

func (c *Catalog) Exists(id CurrencyID) bool {
	_, ok := c.assets[id]
	return ok
}
