package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Decision key schema:
//
//   dec:<pair>:<timestamp>:<id> → Decision
//   decid:<id>                  → primary key of the decision
//
// Pairs are rendered "BASE/QUOTE". Timestamps are zero-padded (20 digits)
// so a prefix scan returns decisions in time order.

const (
	prefixDecision      = "dec:"
	prefixDecisionIndex = "decid:"
)

// decisionKey returns the primary key of a decision
// Format: "dec:{pair}:{timestamp}:{id}"
func decisionKey(pair string, timestamp int64, id common.Hash) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", prefixDecision, pair, timestamp, id.Hex()))
}

// decisionPrefix returns the prefix for all decisions of a pair
// Format: "dec:{pair}:"
func decisionPrefix(pair string) []byte {
	return []byte(fmt.Sprintf("%s%s:", prefixDecision, pair))
}

// decisionIndexKey returns the id index key
// Format: "decid:{id}"
func decisionIndexKey(id common.Hash) []byte {
	return []byte(prefixDecisionIndex + id.Hex())
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
