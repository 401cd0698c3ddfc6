package asset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CurrencyID identifies an asset on chain: either the native token or a
// wrapped asset with a numeric id. The zero value is Native.
type CurrencyID struct {
	wrapped bool
	id      uint32
}

// Native is the chain's own token.
var Native = CurrencyID{}

func Wrapped(id uint32) CurrencyID {
	return CurrencyID{wrapped: true, id: id}
}

func (c CurrencyID) IsNative() bool { return !c.wrapped }

// WrappedID returns the numeric id of a wrapped asset.
func (c CurrencyID) WrappedID() (uint32, bool) {
	return c.id, c.wrapped
}

// Compare orders Native before every wrapped asset, and wrapped assets by id.
func (c CurrencyID) Compare(o CurrencyID) int {
	switch {
	case c == o:
		return 0
	case !c.wrapped:
		return -1
	case !o.wrapped:
		return 1
	case c.id < o.id:
		return -1
	default:
		return 1
	}
}

func (c CurrencyID) String() string {
	if !c.wrapped {
		return "native"
	}
	return "wrapped(" + strconv.FormatUint(uint64(c.id), 10) + ")"
}

type currencyIDJSON struct {
	Type string  `json:"type"`
	ID   *uint32 `json:"id,omitempty"`
}

func (c CurrencyID) MarshalJSON() ([]byte, error) {
	if !c.wrapped {
		return json.Marshal(currencyIDJSON{Type: "native"})
	}
	id := c.id
	return json.Marshal(currencyIDJSON{Type: "wrapped", ID: &id})
}

func (c *CurrencyID) UnmarshalJSON(data []byte) error {
	var raw currencyIDJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch strings.ToLower(raw.Type) {
	case "native", "tdfy":
		*c = Native
	case "wrapped":
		if raw.ID == nil {
			return fmt.Errorf("wrapped currency id missing id")
		}
		*c = Wrapped(*raw.ID)
	default:
		return fmt.Errorf("unknown currency id type %q", raw.Type)
	}
	return nil
}
