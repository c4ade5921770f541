package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"crypto-market-sentinel/internal/domain"
)

var testPair = domain.Pair{Base: "BTC", Quote: "USDT"}

func TestDailyLimitPolicyBlocksAfterTradeBudget(t *testing.T) {
	p := NewDailyLimitPolicy(2, decimal.NewFromFloat(0.1), decimal.NewFromInt(10000))
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	ok, _ := p.Allow(testPair, now)
	require.True(t, ok)

	p.RecordTrade(testPair, now)
	ok, _ = p.Allow(testPair, now)
	require.True(t, ok)

	p.RecordTrade(testPair, now)
	ok, reason := p.Allow(testPair, now)
	require.False(t, ok)
	require.Equal(t, "daily trade limit reached", reason)
}

func TestDailyLimitPolicyResetsOnDayChange(t *testing.T) {
	p := NewDailyLimitPolicy(1, decimal.NewFromFloat(0.1), decimal.NewFromInt(10000))
	day1 := time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC)

	p.RecordTrade(testPair, day1)
	ok, _ := p.Allow(testPair, day1)
	require.False(t, ok)

	ok, _ = p.Allow(testPair, day2)
	require.True(t, ok)
}

func TestDailyLimitPolicyBlocksOnDrawdown(t *testing.T) {
	p := NewDailyLimitPolicy(100, decimal.NewFromFloat(0.1), decimal.NewFromInt(10000))
	now := time.Now()

	p.RecordPnL(decimal.NewFromInt(-999))
	ok, _ := p.Allow(testPair, now)
	require.True(t, ok)

	p.RecordPnL(decimal.NewFromInt(-1))
	ok, reason := p.Allow(testPair, now)
	require.False(t, ok)
	require.Equal(t, "drawdown limit reached", reason)
}

func TestDailyLimitPolicyDrawdownSurvivesDayRollover(t *testing.T) {
	p := NewDailyLimitPolicy(100, decimal.NewFromFloat(0.1), decimal.NewFromInt(10000))
	day1 := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	p.RecordPnL(decimal.NewFromInt(-2000))
	ok, _ := p.Allow(testPair, day1)
	require.False(t, ok)

	// capital is still gone the next day
	ok, _ = p.Allow(testPair, day2)
	require.False(t, ok)
}

func TestDailyLimitPolicyProfitOffsetsLosses(t *testing.T) {
	p := NewDailyLimitPolicy(100, decimal.NewFromFloat(0.1), decimal.NewFromInt(10000))

	p.RecordPnL(decimal.NewFromInt(-1500))
	p.RecordPnL(decimal.NewFromInt(600))

	ok, _ := p.Allow(testPair, time.Now())
	require.True(t, ok)
}

func TestAllowAllNeverBlocks(t *testing.T) {
	p := AllowAll{}
	p.RecordTrade(testPair, time.Now())
	p.RecordPnL(decimal.NewFromInt(-1000000))

	ok, reason := p.Allow(testPair, time.Now())
	require.True(t, ok)
	require.Empty(t, reason)
}
