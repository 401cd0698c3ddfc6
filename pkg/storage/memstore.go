package storage

import (
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryRetention is how many decisions per pair the in-memory store keeps.
const MemoryRetention = 500

// InMemoryDecisionStore keeps the most recent decisions of each pair in
// process memory. Used when the journal is disabled and in tests.
type InMemoryDecisionStore struct {
	mu     sync.Mutex
	byID   map[common.Hash]*Decision
	byPair map[string][]*Decision // ascending by timestamp
	retain int
}

func NewInMemoryDecisionStore() *InMemoryDecisionStore {
	return &InMemoryDecisionStore{
		byID:   make(map[common.Hash]*Decision),
		byPair: make(map[string][]*Decision),
		retain: MemoryRetention,
	}
}

// SaveDecision replaces any decision with the same ID, then drops the
// oldest decisions of the pair beyond the retention limit.
func (s *InMemoryDecisionStore) SaveDecision(d *Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byID[d.ID]; ok {
		s.byPair[old.Pair] = slices.DeleteFunc(s.byPair[old.Pair], func(x *Decision) bool { return x.ID == d.ID })
	}

	cp := *d
	s.byID[d.ID] = &cp
	list := append(s.byPair[d.Pair], &cp)
	slices.SortStableFunc(list, func(a, b *Decision) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	if over := len(list) - s.retain; over > 0 {
		for _, old := range list[:over] {
			delete(s.byID, old.ID)
		}
		list = slices.Delete(list, 0, over)
	}
	s.byPair[d.Pair] = list
	return nil
}

func (s *InMemoryDecisionStore) GetDecision(id common.Hash) (*Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryDecisionStore) LoadRecentDecisions(pair string, limit int) ([]*Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byPair[pair]
	var out []*Decision
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryDecisionStore) Close() error { return nil }

var _ DecisionStore = (*InMemoryDecisionStore)(nil)
