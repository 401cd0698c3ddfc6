// Package asset holds the static asset catalog: identifiers, decimal
// exponents and per-network deployment metadata for every supported token.
package asset

import (
	"fmt"
	"maps"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Algo is the signature scheme used by the asset's home chain.
type Algo int8

const (
	SR25519 Algo = iota
	SECP256K1
	WEB3
)

func (a Algo) String() string {
	switch a {
	case SR25519:
		return "SR25519"
	case SECP256K1:
		return "SECP256K1"
	case WEB3:
		return "WEB3"
	default:
		return "Unknown"
	}
}

func ParseAlgo(s string) (Algo, error) {
	switch s {
	case "SR25519":
		return SR25519, nil
	case "SECP256K1":
		return SECP256K1, nil
	case "WEB3":
		return WEB3, nil
	default:
		return 0, fmt.Errorf("invalid algo %q", s)
	}
}

// Asset describes one tradable token.
type Asset struct {
	ID       CurrencyID
	Symbol   string // "BTC"
	Name     string // "Bitcoin"
	Exponent uint8  // decimal places of the raw amount
	Algo     Algo
	UnitName string // smallest unit, e.g. "satoshi"
	Prefix   string // display prefix, e.g. "₿"

	// Pot assets need a second deposit address on their home chain.
	Pot bool

	// BaseChain is the symbol of the chain asset this token lives on.
	BaseChain string

	MinStake fixed.Balance
	MaxStake fixed.Balance

	ChainIDs  map[Network]uint32
	Routers   map[Network]common.Address
	Multisigs map[Network]common.Address
	Contracts map[Network]common.Address
}

// clone returns a copy that shares no maps with a.
func (a *Asset) clone() Asset {
	cp := *a
	cp.ChainIDs = maps.Clone(a.ChainIDs)
	cp.Routers = maps.Clone(a.Routers)
	cp.Multisigs = maps.Clone(a.Multisigs)
	cp.Contracts = maps.Clone(a.Contracts)
	return cp
}

// OneUnit returns the raw amount of one whole token.
func (a *Asset) OneUnit() fixed.Balance {
	return OneUnit(a.Exponent)
}

// SaturatingMul converts n whole tokens into raw units.
func (a *Asset) SaturatingMul(n uint64) fixed.Balance {
	return fixed.NewBalance(n).SaturatingMul(a.OneUnit())
}

// Validate checks the asset's own fields; cross-asset checks live in
// NewCatalog.
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return fmt.Errorf("asset %s: symbol is required", a.ID)
	}
	if a.Name == "" {
		return fmt.Errorf("asset %s: name is required", a.Symbol)
	}
	if a.MinStake.Cmp(a.MaxStake) > 0 {
		return fmt.Errorf("asset %s: min stake %s above max stake %s", a.Symbol, a.MinStake, a.MaxStake)
	}
	for _, set := range []map[Network]common.Address{a.Routers, a.Multisigs, a.Contracts} {
		for n, addr := range set {
			if addr == (common.Address{}) {
				return fmt.Errorf("asset %s: zero address on %s", a.Symbol, n)
			}
		}
	}
	return nil
}

// OneUnit returns 10^exponent, saturating at the maximum balance.
func OneUnit(exponent uint8) fixed.Balance {
	return fixed.Pow10(exponent)
}
