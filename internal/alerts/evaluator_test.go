package alerts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/domain"
)

func testMonitoring() config.Monitoring {
	return config.Monitoring{
		VolumeThreshold: decimal.NewFromInt(1000000),
		AlertThresholds: config.AlertThresholds{
			PriceChange:  decimal.NewFromInt(10),
			VolumeSpike:  decimal.NewFromInt(3),
			LowLiquidity: decimal.NewFromInt(100000),
		},
	}
}

func quietSnapshot() domain.MarketSnapshot {
	return domain.MarketSnapshot{
		Pair:           "BTC_USDT",
		Price:          decimal.NewFromInt(50000),
		Timestamp:      1700000000000,
		Volume24h:      decimal.NewFromInt(2000000),
		Liquidity:      decimal.NewFromInt(500000),
		PriceChange24h: decimal.NewFromInt(2),
	}
}

func TestEvaluateQuietMarketRaisesNothing(t *testing.T) {
	e := NewEvaluator(testMonitoring())
	require.Empty(t, e.Evaluate(domain.Pair{Base: "BTC", Quote: "USDT"}, quietSnapshot()))
}

func TestEvaluatePriceChangeAlert(t *testing.T) {
	e := NewEvaluator(testMonitoring())
	pair := domain.Pair{Base: "BTC", Quote: "USDT"}

	snap := quietSnapshot()
	snap.PriceChange24h = decimal.NewFromInt(-15) // absolute value counts

	raised := e.Evaluate(pair, snap)
	require.Len(t, raised, 1)
	require.Equal(t, domain.AlertPriceChange, raised[0].Type)
	require.Equal(t, domain.SeverityHigh, raised[0].Severity)
	require.Equal(t, snap.Timestamp, raised[0].Timestamp)
}

func TestEvaluatePriceChangeExactlyAtThresholdDoesNotFire(t *testing.T) {
	e := NewEvaluator(testMonitoring())

	snap := quietSnapshot()
	snap.PriceChange24h = decimal.NewFromInt(10) // strictly-greater comparison

	require.Empty(t, e.Evaluate(domain.Pair{Base: "BTC", Quote: "USDT"}, snap))
}

func TestEvaluateVolumeSpikeAlert(t *testing.T) {
	e := NewEvaluator(testMonitoring())

	snap := quietSnapshot()
	snap.Volume24h = decimal.NewFromInt(4000000) // above 3x the 1M threshold

	raised := e.Evaluate(domain.Pair{Base: "BTC", Quote: "USDT"}, snap)
	require.Len(t, raised, 1)
	require.Equal(t, domain.AlertVolumeSpike, raised[0].Type)
	require.Equal(t, domain.SeverityMedium, raised[0].Severity)
}

func TestEvaluateLowLiquidityAlert(t *testing.T) {
	e := NewEvaluator(testMonitoring())

	snap := quietSnapshot()
	snap.Liquidity = decimal.NewFromInt(50000)

	raised := e.Evaluate(domain.Pair{Base: "BTC", Quote: "USDT"}, snap)
	require.Len(t, raised, 1)
	require.Equal(t, domain.AlertLowLiquidity, raised[0].Type)
	require.Equal(t, domain.SeverityHigh, raised[0].Severity)
}

func TestEvaluateConditionsAreIndependent(t *testing.T) {
	e := NewEvaluator(testMonitoring())

	snap := quietSnapshot()
	snap.PriceChange24h = decimal.NewFromInt(20)
	snap.Volume24h = decimal.NewFromInt(10000000)
	snap.Liquidity = decimal.NewFromInt(1)

	raised := e.Evaluate(domain.Pair{Base: "BTC", Quote: "USDT"}, snap)
	require.Len(t, raised, 3)

	types := map[domain.AlertType]bool{}
	for _, alert := range raised {
		types[alert.Type] = true
	}
	require.True(t, types[domain.AlertPriceChange])
	require.True(t, types[domain.AlertVolumeSpike])
	require.True(t, types[domain.AlertLowLiquidity])
}
