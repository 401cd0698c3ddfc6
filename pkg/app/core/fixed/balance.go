// Package fixed implements the integer and fixed-point arithmetic used to
// price swaps: 128-bit raw balances, parts-per-million ratios and an
// 18-decimal fixed-point price.
package fixed

import (
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a checked operation leaves the 128-bit range
// or divides by zero.
var ErrOverflow = errors.New("arithmetic overflow")

// max128 is 2^128 - 1. uint256.Int limbs are little-endian.
var max128 = uint256.Int{math.MaxUint64, math.MaxUint64, 0, 0}

// Balance is an unsigned raw token amount (smallest indivisible units).
// The zero value is a zero balance.
type Balance struct {
	v uint256.Int
}

var (
	ZeroBalance = Balance{}
	MaxBalance  = Balance{v: max128}
)

func NewBalance(n uint64) Balance {
	var b Balance
	b.v.SetUint64(n)
	return b
}

// BalanceFromUint256 converts x, saturating at MaxBalance.
func BalanceFromUint256(x *uint256.Int) Balance {
	if x.Gt(&max128) {
		return MaxBalance
	}
	return Balance{v: *x}
}

// ParseBalance parses a base-10 raw amount.
func ParseBalance(s string) (Balance, error) {
	var v uint256.Int
	if err := v.SetFromDecimal(s); err != nil {
		return Balance{}, fmt.Errorf("invalid balance %q: %w", s, err)
	}
	if v.Gt(&max128) {
		return Balance{}, fmt.Errorf("invalid balance %q: %w", s, ErrOverflow)
	}
	return Balance{v: v}, nil
}

// MustParseBalance is ParseBalance for constants and tests.
func MustParseBalance(s string) Balance {
	b, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Pow10 returns 10^exp, saturating at MaxBalance.
func Pow10(exp uint8) Balance {
	ten := NewBalance(10)
	out := NewBalance(1)
	for i := uint8(0); i < exp; i++ {
		out = out.SaturatingMul(ten)
		if out == MaxBalance {
			break
		}
	}
	return out
}

func (b Balance) Uint256() *uint256.Int {
	out := b.v
	return &out
}

func (b Balance) IsZero() bool { return b.v.IsZero() }

func (b Balance) Cmp(o Balance) int { return b.v.Cmp(&o.v) }

func (b Balance) SaturatingAdd(o Balance) Balance {
	var z uint256.Int
	z.Add(&b.v, &o.v)
	return BalanceFromUint256(&z)
}

func (b Balance) SaturatingSub(o Balance) Balance {
	if b.v.Lt(&o.v) {
		return ZeroBalance
	}
	var z uint256.Int
	z.Sub(&b.v, &o.v)
	return Balance{v: z}
}

func (b Balance) SaturatingMul(o Balance) Balance {
	var z uint256.Int
	z.Mul(&b.v, &o.v)
	return BalanceFromUint256(&z)
}

// CheckedAdd returns false when the sum exceeds MaxBalance.
func (b Balance) CheckedAdd(o Balance) (Balance, bool) {
	var z uint256.Int
	z.Add(&b.v, &o.v)
	if z.Gt(&max128) {
		return Balance{}, false
	}
	return Balance{v: z}, true
}

// CheckedSub returns false when o > b.
func (b Balance) CheckedSub(o Balance) (Balance, bool) {
	if b.v.Lt(&o.v) {
		return Balance{}, false
	}
	var z uint256.Int
	z.Sub(&b.v, &o.v)
	return Balance{v: z}, true
}

func (b Balance) String() string { return b.v.Dec() }

func (b Balance) MarshalText() ([]byte, error) { return []byte(b.v.Dec()), nil }

func (b *Balance) UnmarshalText(text []byte) error {
	v, err := ParseBalance(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
