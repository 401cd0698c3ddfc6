package fixed

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// PriceDecimals is the number of fractional decimal digits carried by Price.
const PriceDecimals = 18

var priceAccuracy = uint256.NewInt(1_000_000_000_000_000_000)

// Price is an unsigned fixed-point number with 18 fractional decimal digits
// stored in a 128-bit inner value: the real value is inner / 10^18.
type Price struct {
	inner uint256.Int
}

var (
	ZeroPrice = Price{}
	MaxPrice  = Price{inner: max128}
)

// PriceFromUint64 returns the price representing the whole number n.
func PriceFromUint64(n uint64) Price {
	return PriceFromRational(NewBalance(n), NewBalance(1))
}

// PriceFromRational returns floor(n / d) at 18 decimals, saturating to
// MaxPrice on overflow or when d is zero.
func PriceFromRational(n, d Balance) Price {
	if d.IsZero() {
		return MaxPrice
	}
	var z uint256.Int
	z.Mul(&n.v, priceAccuracy)
	z.Div(&z, &d.v)
	if z.Gt(&max128) {
		return MaxPrice
	}
	return Price{inner: z}
}

// ParsePrice parses a decimal string such as "99.5".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	d = d.Shift(PriceDecimals)
	if d.IsNegative() || !d.IsInteger() {
		return Price{}, fmt.Errorf("invalid price %q: not representable", s)
	}
	v, overflow := uint256.FromBig(d.BigInt())
	if overflow || v.Gt(&max128) {
		return Price{}, fmt.Errorf("invalid price %q: %w", s, ErrOverflow)
	}
	return Price{inner: *v}, nil
}

// MustParsePrice is ParsePrice for constants and tests.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// CheckedDiv returns floor(p / o). It fails when o is zero or the quotient
// does not fit.
func (p Price) CheckedDiv(o Price) (Price, bool) {
	if o.inner.IsZero() {
		return Price{}, false
	}
	var z uint256.Int
	z.Mul(&p.inner, priceAccuracy)
	z.Div(&z, &o.inner)
	if z.Gt(&max128) {
		return Price{}, false
	}
	return Price{inner: z}, true
}

func (p Price) Cmp(o Price) int { return p.inner.Cmp(&o.inner) }

func (p Price) IsZero() bool { return p.inner.IsZero() }

// Inner returns the raw scaled value.
func (p Price) Inner() *uint256.Int {
	out := p.inner
	return &out
}

func (p Price) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(p.inner.ToBig(), -PriceDecimals)
}

func (p Price) String() string { return p.Decimal().String() }

func (p Price) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Price) UnmarshalText(text []byte) error {
	v, err := ParsePrice(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ComputePrice returns the price of one whole base unit expressed in whole
// quote units: (quoteAmount / quoteUnit) / (baseAmount / baseUnit).
func ComputePrice(quoteAmount, quoteUnit, baseAmount, baseUnit Balance) (Price, error) {
	quote := PriceFromRational(quoteAmount, quoteUnit)
	base := PriceFromRational(baseAmount, baseUnit)
	price, ok := quote.CheckedDiv(base)
	if !ok {
		return Price{}, ErrOverflow
	}
	return price, nil
}
