package storage

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

// Decision is one journaled validation outcome.
type Decision struct {
	ID           common.Hash   `json:"id"`
	Pair         string        `json:"pair"` // "BASE/QUOTE"
	TakerID      common.Hash   `json:"takerId"`
	MakerID      common.Hash   `json:"makerId"`
	OfferedBase  fixed.Balance `json:"offeredBase"`
	OfferedQuote fixed.Balance `json:"offeredQuote"`
	Price        *fixed.Price  `json:"price,omitempty"` // nil when the offer could not be priced
	Accepted     bool          `json:"accepted"`
	Code         string        `json:"code"`
	Message      string        `json:"message,omitempty"`
	Timestamp    int64         `json:"timestamp"` // Unix milliseconds
}

// DecisionStore persists decisions. Implementations are safe for concurrent use.
type DecisionStore interface {
	SaveDecision(d *Decision) error
	GetDecision(id common.Hash) (*Decision, error)
	LoadRecentDecisions(pair string, limit int) ([]*Decision, error)
	Close() error
}

// DecisionID is the keccak-256 of the decision inputs. requestID keeps
// identical requests within the same millisecond apart.
func DecisionID(pair, requestID string, taker, maker common.Hash, offeredBase, offeredQuote fixed.Balance, timestamp int64) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(pair))
	h.Write([]byte{0})
	h.Write([]byte(requestID))
	h.Write([]byte{0})
	h.Write(taker[:])
	h.Write(maker[:])
	base := offeredBase.Uint256().Bytes32()
	quote := offeredQuote.Uint256().Bytes32()
	h.Write(base[:])
	h.Write(quote[:])
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(timestamp))
	h.Write(ts[:])
	return common.BytesToHash(h.Sum(nil))
}
