package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"crypto-market-sentinel/internal/domain"
	"crypto-market-sentinel/internal/history"
)

func snapshotWithRSI(rsi float64) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		Pair:       "BTC_USDT",
		Price:      decimal.NewFromInt(50000),
		Indicators: domain.IndicatorBundle{RSI: rsi},
	}
}

func TestRSIOversoldStrategyTriggersBelowThreshold(t *testing.T) {
	s := NewRSIOversoldStrategy(30)

	signal := s.Evaluate(snapshotWithRSI(25), history.Snapshot{})
	require.True(t, signal.ShouldTrade)
	require.Equal(t, domain.SideBuy, signal.Direction)
	require.True(t, decimal.NewFromFloat(0.8).Equal(signal.Confidence))
}

func TestRSIOversoldStrategyHoldsAtOrAboveThreshold(t *testing.T) {
	s := NewRSIOversoldStrategy(30)

	require.False(t, s.Evaluate(snapshotWithRSI(30), history.Snapshot{}).ShouldTrade)
	require.False(t, s.Evaluate(snapshotWithRSI(55), history.Snapshot{}).ShouldTrade)
	require.False(t, s.Evaluate(snapshotWithRSI(90), history.Snapshot{}).ShouldTrade)
}

func TestRSIOversoldStrategyDirectionSplit(t *testing.T) {
	// With a trigger above the direction threshold the sell branch becomes
	// reachable: oversold fires below 45 but direction flips at 40.
	s := NewRSIOversoldStrategy(45)

	buy := s.Evaluate(snapshotWithRSI(35), history.Snapshot{})
	require.True(t, buy.ShouldTrade)
	require.Equal(t, domain.SideBuy, buy.Direction)

	sell := s.Evaluate(snapshotWithRSI(42), history.Snapshot{})
	require.True(t, sell.ShouldTrade)
	require.Equal(t, domain.SideSell, sell.Direction)
}
