package fixed

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Permill is a ratio in parts per million, clamped to [0, 1].
type Permill uint32

const (
	PermillZero Permill = 0
	PermillOne  Permill = 1_000_000
)

var (
	millionInt  = uint256.NewInt(1_000_000)
	halfMillion = uint256.NewInt(500_000)
	million     = decimal.NewFromInt(1_000_000)
)

// PermillFromParts clamps parts to PermillOne.
func PermillFromParts(parts uint32) Permill {
	if parts > uint32(PermillOne) {
		return PermillOne
	}
	return Permill(parts)
}

// PermillFromRational returns floor(n / d) in parts per million. A zero
// denominator or n >= d gives PermillOne.
func PermillFromRational(n, d uint64) Permill {
	if d == 0 || n >= d {
		return PermillOne
	}
	var z uint256.Int
	z.Mul(uint256.NewInt(n), millionInt)
	z.Div(&z, uint256.NewInt(d))
	return Permill(z.Uint64())
}

// ParsePermill accepts "1%", "0.5%", "10000ppm" or a plain fraction such as
// "0.01". Values below one part per million or above 100% are rejected.
func ParsePermill(s string) (Permill, error) {
	raw := strings.TrimSpace(s)
	var (
		d   decimal.Decimal
		err error
	)
	switch {
	case strings.HasSuffix(raw, "%"):
		d, err = decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(raw, "%")))
		d = d.Shift(4)
	case strings.HasSuffix(raw, "ppm"):
		d, err = decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(raw, "ppm")))
	default:
		d, err = decimal.NewFromString(raw)
		d = d.Mul(million)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid slippage %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid slippage %q: negative", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid slippage %q: finer than 1ppm", s)
	}
	if d.GreaterThan(million) {
		return 0, fmt.Errorf("invalid slippage %q: above 100%%", s)
	}
	return Permill(d.IntPart()), nil
}

func (p Permill) Parts() uint32 { return uint32(p) }

// Mul returns p × b rounded to the nearest unit, ties rounding down.
func (p Permill) Mul(b Balance) Balance {
	var prod, q, r uint256.Int
	prod.Mul(&b.v, uint256.NewInt(uint64(p)))
	q.DivMod(&prod, millionInt, &r)
	if r.Gt(halfMillion) {
		q.AddUint64(&q, 1)
	}
	return BalanceFromUint256(&q)
}

// String renders the ratio as a percentage, e.g. "1%" or "0.0001%".
func (p Permill) String() string {
	return decimal.New(int64(p), -4).String() + "%"
}

func (p Permill) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Permill) UnmarshalText(text []byte) error {
	v, err := ParsePermill(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
