package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"
)

type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// SaveDecision writes the decision and its id index in one batch.
func (s *PebbleStore) SaveDecision(d *Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	key := decisionKey(d.Pair, d.Timestamp, d.ID)
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key, data, nil); err != nil {
		return fmt.Errorf("failed to stage decision: %w", err)
	}
	if err := batch.Set(decisionIndexKey(d.ID), key, nil); err != nil {
		return fmt.Errorf("failed to stage decision index: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// GetDecision loads a decision by id.
// Returns nil if the decision doesn't exist
func (s *PebbleStore) GetDecision(id common.Hash) (*Decision, error) {
	key, err := s.get(decisionIndexKey(id))
	if err != nil || key == nil {
		return nil, err
	}
	data, err := s.get(key)
	if err != nil || data == nil {
		return nil, err
	}

	var d Decision
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}
	return &d, nil
}

// LoadRecentDecisions loads up to limit decisions of a pair, newest first.
func (s *PebbleStore) LoadRecentDecisions(pair string, limit int) ([]*Decision, error) {
	prefix := decisionPrefix(pair)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var decisions []*Decision
	for iter.Last(); iter.Valid() && len(decisions) < limit; iter.Prev() {
		var d Decision
		if err := json.Unmarshal(iter.Value(), &d); err != nil {
			continue
		}
		decisions = append(decisions, &d)
	}

	return decisions, nil
}

// get copies the value out of pebble's buffer. Missing keys return nil, nil.
func (s *PebbleStore) get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

var _ DecisionStore = (*PebbleStore)(nil)
