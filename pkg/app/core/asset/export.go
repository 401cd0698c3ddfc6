package asset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Token is the JSON form of an asset consumed by wallets and front-ends
// (assets.json). It also serves as the catalog file format.
type Token struct {
	ID              CurrencyID                 `json:"id"`
	Name            string                     `json:"name"`
	Abbr            string                     `json:"abbr"`
	Exponent        uint8                      `json:"exponent"`
	UnitName        string                     `json:"unitName,omitempty"`
	Symbol          string                     `json:"symbol,omitempty"` // display prefix
	BaseChain       string                     `json:"baseChain,omitempty"`
	RouterAddress   map[Network]common.Address `json:"routerAddress,omitempty"`
	MultisigAddress map[Network]common.Address `json:"multisigAddress,omitempty"`
	AssetAddress    map[Network]common.Address `json:"assetAddress,omitempty"`
	ChainID         map[Network]uint32         `json:"chainId,omitempty"`
	Algo            string                     `json:"algo,omitempty"`
	Pot             bool                       `json:"pot,omitempty"`
	MinStake        *fixed.Balance             `json:"minStake,omitempty"`
	MaxStake        *fixed.Balance             `json:"maxStake,omitempty"`
}

// NetworkInfo is one entry of networks.json.
type NetworkInfo struct {
	Name string `json:"name"`
}

// Tokens exports the catalog ordered by id. Base chains are referenced by name.
func (c *Catalog) Tokens() []Token {
	out := make([]Token, 0, len(c.ordered))
	for _, src := range c.ordered {
		a := src.clone()
		minStake, maxStake := a.MinStake, a.MaxStake
		t := Token{
			ID:              a.ID,
			Name:            a.Name,
			Abbr:            a.Symbol,
			Exponent:        a.Exponent,
			UnitName:        a.UnitName,
			Symbol:          a.Prefix,
			RouterAddress:   a.Routers,
			MultisigAddress: a.Multisigs,
			AssetAddress:    a.Contracts,
			ChainID:         a.ChainIDs,
			Algo:            a.Algo.String(),
			Pot:             a.Pot,
			MinStake:        &minStake,
			MaxStake:        &maxStake,
		}
		if bc, ok := c.BaseChainOf(a.ID); ok {
			t.BaseChain = bc.Name
		}
		out = append(out, t)
	}
	return out
}

// NetworkInfos lists every known network.
func NetworkInfos() []NetworkInfo {
	out := make([]NetworkInfo, len(Networks))
	for i, n := range Networks {
		out[i] = NetworkInfo{Name: n.Title()}
	}
	return out
}

// ParseTokens builds a catalog from an assets.json document.
func ParseTokens(data []byte) (*Catalog, error) {
	var tokens []Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}

	nameToSymbol := make(map[string]string, len(tokens))
	for _, t := range tokens {
		nameToSymbol[t.Name] = t.Abbr
	}

	assets := make([]Asset, 0, len(tokens))
	for _, t := range tokens {
		a := Asset{
			ID:        t.ID,
			Symbol:    t.Abbr,
			Name:      t.Name,
			Exponent:  t.Exponent,
			UnitName:  t.UnitName,
			Prefix:    t.Symbol,
			Pot:       t.Pot,
			MaxStake:  fixed.MaxBalance,
			ChainIDs:  t.ChainID,
			Routers:   t.RouterAddress,
			Multisigs: t.MultisigAddress,
			Contracts: t.AssetAddress,
		}
		if t.Algo != "" {
			algo, err := ParseAlgo(t.Algo)
			if err != nil {
				return nil, fmt.Errorf("token %s: %w", t.Abbr, err)
			}
			a.Algo = algo
		}
		if t.MinStake != nil {
			a.MinStake = *t.MinStake
		}
		if t.MaxStake != nil {
			a.MaxStake = *t.MaxStake
		}
		if t.BaseChain != "" {
			sym, ok := nameToSymbol[t.BaseChain]
			if !ok {
				return nil, fmt.Errorf("token %s: base chain %s not in catalog", t.Abbr, t.BaseChain)
			}
			a.BaseChain = sym
		}
		assets = append(assets, a)
	}
	return NewCatalog(assets...)
}

// LoadFile reads a catalog from an assets.json file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseTokens(data)
}
