package asset

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Well-known asset ids of the built-in table.
var (
	TDFY = Native
	ATH  = Wrapped(1)
	BTC  = Wrapped(2)
	ETH  = Wrapped(3)
	USDT = Wrapped(4)
	USDC = Wrapped(5)
)

// DefaultAssets returns the built-in asset table.
func DefaultAssets() []Asset {
	return []Asset{
		{
			ID:       TDFY,
			Symbol:   "TDFY",
			Name:     "Tidefi Token",
			Exponent: 12,
			Algo:     SR25519,
			MinStake: fixed.MustParseBalance("10000000000000"),
			MaxStake: fixed.MustParseBalance("500000000000000000"),
		},
		{
			ID:       ATH,
			Symbol:   "ATH",
			Name:     "All Time High",
			Exponent: 12,
			Algo:     SR25519,
			MinStake: fixed.MustParseBalance("10000000000000"),
			MaxStake: fixed.MustParseBalance("500000000000000000"),
		},
		{
			ID:       BTC,
			Symbol:   "BTC",
			Name:     "Bitcoin",
			Exponent: 8,
			Algo:     SECP256K1,
			UnitName: "satoshi",
			Prefix:   "₿",
			Pot:      true,
			MinStake: fixed.NewBalance(100),
			MaxStake: fixed.NewBalance(500_000_000),
		},
		{
			ID:       ETH,
			Symbol:   "ETH",
			Name:     "Ethereum",
			Exponent: 18,
			Algo:     WEB3,
			UnitName: "wei",
			Prefix:   "Ξ",
			MinStake: fixed.NewBalance(100_000),
			MaxStake: fixed.MustParseBalance("20000000000000000000"),
			ChainIDs: map[Network]uint32{
				Local:   1337,
				Devnet:  3,
				Testnet: 3,
				Mainnet: 1,
			},
			Routers: map[Network]common.Address{
				Local:   common.HexToAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"),
				Devnet:  common.HexToAddress("0xae8a6463bf8449e6b5ee8277924cd6132b809be4"),
				Testnet: common.HexToAddress("0xaa57cd19ae5ed73ea4be754051eb5933d1efd7e0"),
			},
			Multisigs: map[Network]common.Address{
				Local:   common.HexToAddress("0x5fc8d32690cc91d4c39d9d3abcbd16989f875707"),
				Devnet:  common.HexToAddress("0x971c11eb24778bf6824c82f0e82d6530bdeff7a2"),
				Testnet: common.HexToAddress("0x86c5be5c0e24a32db15f9b1a6cadd1ba7cbcc031"),
			},
		},
		{
			ID:        USDT,
			Symbol:    "USDT",
			Name:      "Tether",
			Exponent:  6,
			Algo:      WEB3,
			BaseChain: "ETH",
			MinStake:  fixed.NewBalance(1_000_000),
			MaxStake:  fixed.NewBalance(100_000_000_000),
			Contracts: map[Network]common.Address{
				Local:   common.HexToAddress("0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0"),
				Devnet:  common.HexToAddress("0xb604ee489aa63aef787a652c606db750b4793e65"),
				Testnet: common.HexToAddress("0xdd60d69de8e211dcaa264142a10e534a68d4ef9d"),
			},
		},
		{
			ID:        USDC,
			Symbol:    "USDC",
			Name:      "USD Coin",
			Exponent:  6,
			Algo:      WEB3,
			BaseChain: "ETH",
			MinStake:  fixed.NewBalance(1_000_000),
			MaxStake:  fixed.NewBalance(100_000_000_000),
			Contracts: map[Network]common.Address{
				Devnet:  common.HexToAddress("0xf4197f30c8268c933ea57f85c1206e348b54c467"),
				Testnet: common.HexToAddress("0x4170e38d4830f228e3c6e019ad92a29c319c56c2"),
			},
		},
	}
}

// DefaultCatalog returns a catalog over DefaultAssets.
func DefaultCatalog() *Catalog {
	return MustCatalog(DefaultAssets()...)
}
