package storage

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/swapguard/pkg/app/core/fixed"
)

func newDecision(pair string, ts int64, accepted bool) *Decision {
	taker := common.Hash{0x01}
	maker := common.Hash{0x02}
	base := fixed.NewBalance(100_000_000)
	quote := fixed.MustParseBalance("100000000000000")
	price := fixed.PriceFromUint64(100)
	code := "ok"
	if !accepted {
		code = "offer_is_less_than_swap_lower_bound"
	}
	return &Decision{
		ID:           DecisionID(pair, "req-1", taker, maker, base, quote, ts),
		Pair:         pair,
		TakerID:      taker,
		MakerID:      maker,
		OfferedBase:  base,
		OfferedQuote: quote,
		Price:        &price,
		Accepted:     accepted,
		Code:         code,
		Timestamp:    ts,
	}
}

func stores(t *testing.T) map[string]DecisionStore {
	t.Helper()
	pebbleStore, err := NewPebbleStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { pebbleStore.Close() })

	return map[string]DecisionStore{
		"pebble": pebbleStore,
		"memory": NewInMemoryDecisionStore(),
	}
}

func TestDecisionStore_SaveAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			d := newDecision("BTC/USDC", 1_700_000_000_000, true)
			require.NoError(t, s.SaveDecision(d))

			got, err := s.GetDecision(d.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, d.Pair, got.Pair)
			assert.Equal(t, d.OfferedQuote, got.OfferedQuote)
			assert.Equal(t, *d.Price, *got.Price)
			assert.True(t, got.Accepted)

			missing, err := s.GetDecision(common.Hash{0xff})
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestDecisionStore_LoadRecent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, ts := range []int64{30, 10, 20} {
				require.NoError(t, s.SaveDecision(newDecision("TDFY/BTC", ts, ts != 20)))
			}
			require.NoError(t, s.SaveDecision(newDecision("TDFY/BTCX", 40, true)))

			recent, err := s.LoadRecentDecisions("TDFY/BTC", 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, int64(30), recent[0].Timestamp)
			assert.Equal(t, int64(20), recent[1].Timestamp)
			assert.False(t, recent[1].Accepted)

			all, err := s.LoadRecentDecisions("TDFY/BTC", 10)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			none, err := s.LoadRecentDecisions("ETH/USDC", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestDecisionID_Deterministic(t *testing.T) {
	a := newDecision("BTC/USDC", 1, true)
	b := newDecision("BTC/USDC", 1, true)
	c := newDecision("BTC/USDC", 2, true)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)

	// same inputs and millisecond, different requests
	other := DecisionID("BTC/USDC", "req-2", a.TakerID, a.MakerID, a.OfferedBase, a.OfferedQuote, 1)
	assert.NotEqual(t, a.ID, other)
}

func TestDecisionStore_ResaveReplaces(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			d := newDecision("BTC/USDC", 100, true)
			require.NoError(t, s.SaveDecision(d))

			again := *d
			again.Message = "replayed"
			require.NoError(t, s.SaveDecision(&again))

			recent, err := s.LoadRecentDecisions("BTC/USDC", 10)
			require.NoError(t, err)
			require.Len(t, recent, 1)
			assert.Equal(t, "replayed", recent[0].Message)

			got, err := s.GetDecision(d.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "replayed", got.Message)
		})
	}
}

func TestInMemoryDecisionStore_Retention(t *testing.T) {
	s := NewInMemoryDecisionStore()
	s.retain = 3

	var saved []*Decision
	for ts := int64(1); ts <= 5; ts++ {
		d := newDecision("BTC/USDC", ts, true)
		saved = append(saved, d)
		require.NoError(t, s.SaveDecision(d))
	}
	require.NoError(t, s.SaveDecision(newDecision("ETH/USDC", 1, true)))

	recent, err := s.LoadRecentDecisions("BTC/USDC", 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(5), recent[0].Timestamp)
	assert.Equal(t, int64(3), recent[2].Timestamp)

	evicted, err := s.GetDecision(saved[0].ID)
	require.NoError(t, err)
	assert.Nil(t, evicted)

	other, err := s.LoadRecentDecisions("ETH/USDC", 10)
	require.NoError(t, err)
	assert.Len(t, other, 1)
	assert.Len(t, s.byID, 4)
}

func TestDecisionKeys(t *testing.T) {
	id := common.Hash{0xab}
	key := string(decisionKey("BTC/USDC", 42, id))
	assert.Equal(t, "dec:BTC/USDC:00000000000000000042:"+id.Hex(), key)
	assert.Equal(t, "dec:BTC/USDC;", string(keyUpperBound(decisionPrefix("BTC/USDC"))))
}
