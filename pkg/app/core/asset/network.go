package asset

import (
	"fmt"
	"strings"
)

// Network selects which deployment's chain ids and contract addresses apply.
type Network int8

const (
	Local Network = iota
	Devnet
	Testnet
	Mainnet
)

// Networks lists every network in declaration order.
var Networks = []Network{Local, Devnet, Testnet, Mainnet}

func (n Network) String() string {
	switch n {
	case Local:
		return "local"
	case Devnet:
		return "devnet"
	case Testnet:
		return "testnet"
	case Mainnet:
		return "mainnet"
	default:
		return "unknown"
	}
}

// Title is the display form used in exported network lists.
func (n Network) Title() string {
	s := n.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseNetwork is case-insensitive.
func ParseNetwork(s string) (Network, error) {
	for _, n := range Networks {
		if strings.EqualFold(s, n.String()) {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid network %q", s)
}

func (n Network) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *Network) UnmarshalText(text []byte) error {
	v, err := ParseNetwork(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
