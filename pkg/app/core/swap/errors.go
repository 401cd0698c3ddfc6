package swap

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

var (
	ErrUnknownAsset             = errors.New("unknown asset")
	ErrUnknownAssetInMarketPair = errors.New("order asset not in market pair")
	ErrSameAssetMarketPair      = errors.New("market pair base and quote are the same asset")
	ErrSlippageOverflow         = errors.New("slippage price overflow")

	// ErrArithmetic is the fixed-point overflow wrapped by ErrSlippageOverflow.
	ErrArithmetic = fixed.ErrOverflow

	ErrNoLowerBoundForBuyingPrice  = errors.New("no lower bound for an order buying the base asset")
	ErrNoUpperBoundForSellingPrice = errors.New("no upper bound for an order selling the base asset")

	ErrOfferIsLessThanSwapLowerBound               = errors.New("offer is less than swap lower bound")
	ErrOfferIsGreaterThanSwapUpperBound            = errors.New("offer is greater than swap upper bound")
	ErrOfferIsLessThanMarketMakerSwapLowerBound    = errors.New("offer is less than market maker swap lower bound")
	ErrOfferIsGreaterThanMarketMakerSwapUpperBound = errors.New("offer is greater than market maker swap upper bound")
)

// ViolationError reports an offered price outside one order's tolerance.
type ViolationError struct {
	Kind          error // one of the ErrOfferIs... sentinels
	OrderID       common.Hash
	OrderType     Type
	IsMarketMaker bool
	Offered       fixed.Price
	Bound         fixed.Price
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: offered %s, bound %s (order %s)", e.Kind, e.Offered, e.Bound, e.OrderID.Hex())
}

func (e *ViolationError) Unwrap() error { return e.Kind }

// IsLower reports whether the violated bound is a seller's floor.
func (e *ViolationError) IsLower() bool {
	return e.Kind == ErrOfferIsLessThanSwapLowerBound || e.Kind == ErrOfferIsLessThanMarketMakerSwapLowerBound
}

var codes = []struct {
	err  error
	code string
}{
	{ErrUnknownAsset, "unknown_asset"},
	{ErrUnknownAssetInMarketPair, "unknown_asset_in_market_pair"},
	{ErrSameAssetMarketPair, "same_asset_market_pair"},
	{ErrSlippageOverflow, "slippage_overflow"},
	{ErrArithmetic, "arithmetic_error"},
	{ErrNoLowerBoundForBuyingPrice, "no_lower_bound_for_buying_price"},
	{ErrNoUpperBoundForSellingPrice, "no_upper_bound_for_selling_price"},
	{ErrOfferIsLessThanMarketMakerSwapLowerBound, "offer_is_less_than_market_maker_swap_lower_bound"},
	{ErrOfferIsLessThanSwapLowerBound, "offer_is_less_than_swap_lower_bound"},
	{ErrOfferIsGreaterThanMarketMakerSwapUpperBound, "offer_is_greater_than_market_maker_swap_upper_bound"},
	{ErrOfferIsGreaterThanSwapUpperBound, "offer_is_greater_than_swap_upper_bound"},
}

// Code returns a stable snake_case code for err: "ok" for nil and
// "internal" for errors outside this package's taxonomy.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// rank orders errors for deterministic selection when both orders fail.
// Lower ranks win. It follows the order of codes.
func rank(err error) int {
	for i, c := range codes {
		if errors.Is(err, c.err) {
			return i
		}
	}
	return len(codes)
}
