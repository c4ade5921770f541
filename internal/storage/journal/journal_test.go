package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	j, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndReplay(t *testing.T) {
	j := newTestJournal(t)

	events := []Event{
		{Pair: "BTC_USDT", Outcome: OutcomeSkipped, Reason: "liquidity below minimum", Timestamp: time.Now()},
		{Pair: "BTC_USDT", Outcome: OutcomeHold, Timestamp: time.Now()},
		{Pair: "ETH_USDT", Outcome: OutcomeSubmitted, Side: "buy", Size: decimal.NewFromInt(80), OrderID: "o-1", Timestamp: time.Now()},
	}
	for _, event := range events {
		require.NoError(t, j.Append(event))
	}

	replayed, err := j.Events()
	require.NoError(t, err)
	require.Len(t, replayed, 3)

	require.Equal(t, OutcomeSkipped, replayed[0].Outcome)
	require.Equal(t, "ETH_USDT", replayed[2].Pair)
	require.Equal(t, "o-1", replayed[2].OrderID)
	require.True(t, decimal.NewFromInt(80).Equal(replayed[2].Size))
}

func TestJournalEmptyReplay(t *testing.T) {
	j := newTestJournal(t)

	replayed, err := j.Events()
	require.NoError(t, err)
	require.Empty(t, replayed)
}

func TestJournalRejectsEventWithoutPair(t *testing.T) {
	j := newTestJournal(t)
	require.Error(t, j.Append(Event{Outcome: OutcomeHold, Timestamp: time.Now()}))
}
