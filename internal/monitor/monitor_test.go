package monitor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/clients"
	"crypto-market-sentinel/internal/domain"
	"crypto-market-sentinel/internal/storage"
)

var testPair = domain.Pair{Base: "ETH", Quote: "USDT"}

func testMonitoring(interval time.Duration) config.Monitoring {
	return config.Monitoring{
		UpdateInterval:   interval,
		DecisionInterval: time.Minute,
		EMAPeriods:       []int{9, 21},
		RSIPeriod:        14,
		RSIOversold:      30,
		RSIOverbought:    70,
		BollingerPeriod:  20,
		BollingerStdDev:  2,
		ATRPeriod:        14,
		VolatilityPeriod: 20,
		SRWindow:         20,
		VolumeThreshold:  decimal.NewFromInt(1000000),
		AlertThresholds: config.AlertThresholds{
			PriceChange:  decimal.NewFromInt(10),
			VolumeSpike:  decimal.NewFromInt(3),
			LowLiquidity: decimal.NewFromInt(1000),
		},
	}
}

func quietMarket(price int64) domain.MarketData {
	p := decimal.NewFromInt(price)
	return domain.MarketData{
		Price:          p,
		BestBid:        p.Sub(decimal.NewFromInt(1)),
		BestAsk:        p.Add(decimal.NewFromInt(1)),
		Volume24h:      decimal.NewFromInt(500000),
		Liquidity:      decimal.NewFromInt(200000),
		PriceChange24h: decimal.NewFromInt(2),
	}
}

func startedMonitor(t *testing.T, interval time.Duration) (*Monitor, *clients.SimulateClient, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	sim := clients.NewSimulateClient(decimal.NewFromInt(10000), nil)

	m := New(sim, store, testMonitoring(interval), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx, []domain.Pair{testPair}))
	t.Cleanup(func() {
		cancel()
		m.Stop()
	})
	return m, sim, store
}

func TestCollectPersistsSnapshots(t *testing.T) {
	ctx := context.Background()
	m, sim, store := startedMonitor(t, time.Hour)

	sim.SetMarketData(testPair, quietMarket(3000))
	require.NoError(t, m.Collect(ctx, testPair))

	var current domain.MarketSnapshot
	require.NoError(t, store.Get(ctx, storage.CurrentSnapshotKey(testPair), &current))
	require.Equal(t, testPair.String(), current.Pair)
	require.True(t, decimal.NewFromInt(3000).Equal(current.Price))

	var historical domain.MarketSnapshot
	require.NoError(t, store.Get(ctx, storage.HistorySnapshotKey(testPair, current.Timestamp), &historical))
	require.Equal(t, current.Timestamp, historical.Timestamp)

	hist, ok := m.History(testPair)
	require.True(t, ok)
	require.Len(t, hist.Prices, 1)
}

func TestCollectOverwritesCurrentSnapshot(t *testing.T) {
	ctx := context.Background()
	m, sim, store := startedMonitor(t, time.Hour)

	sim.SetMarketData(testPair, quietMarket(3000))
	require.NoError(t, m.Collect(ctx, testPair))
	sim.SetMarketData(testPair, quietMarket(3100))
	require.NoError(t, m.Collect(ctx, testPair))

	var current domain.MarketSnapshot
	require.NoError(t, store.Get(ctx, storage.CurrentSnapshotKey(testPair), &current))
	require.True(t, decimal.NewFromInt(3100).Equal(current.Price))

	hist, ok := m.History(testPair)
	require.True(t, ok)
	require.Len(t, hist.Prices, 2)
}

func TestCollectRaisesAlerts(t *testing.T) {
	ctx := context.Background()
	m, sim, store := startedMonitor(t, time.Hour)

	data := quietMarket(3000)
	data.PriceChange24h = decimal.NewFromInt(-15) // beyond the 10% threshold
	sim.SetMarketData(testPair, data)
	require.NoError(t, m.Collect(ctx, testPair))

	raised, err := store.QueryByPrefix(ctx, storage.AlertPrefix(testPair), nil)
	require.NoError(t, err)
	require.Len(t, raised, 1)

	for key, payload := range raised {
		ts, ok := storage.AlertTimestamp(key)
		require.True(t, ok)
		require.Positive(t, ts)

		var alert domain.Alert
		require.NoError(t, json.Unmarshal(payload, &alert))
		require.Equal(t, domain.AlertPriceChange, alert.Type)
		require.Equal(t, domain.SeverityHigh, alert.Severity)
	}
}

func TestCollectUnmonitoredPairFails(t *testing.T) {
	m, _, _ := startedMonitor(t, time.Hour)

	err := m.Collect(context.Background(), domain.Pair{Base: "DOGE", Quote: "USDT"})
	require.Error(t, err)
}

func TestFetchFailureAbandonsCycle(t *testing.T) {
	ctx := context.Background()
	m, _, store := startedMonitor(t, time.Hour)

	// no market data installed, so the fetch fails
	require.Error(t, m.Collect(ctx, testPair))
	require.Zero(t, store.Len())

	hist, ok := m.History(testPair)
	require.True(t, ok)
	require.Empty(t, hist.Prices)
}

func TestStartTwiceFails(t *testing.T) {
	m, _, _ := startedMonitor(t, time.Hour)

	require.Error(t, m.Start(context.Background(), []domain.Pair{testPair}))
}

func TestPeriodicCollection(t *testing.T) {
	ctx := context.Background()
	_, sim, store := startedMonitor(t, 10*time.Millisecond)

	sim.SetMarketData(testPair, quietMarket(3000))

	require.Eventually(t, func() bool {
		var snap domain.MarketSnapshot
		return store.Get(ctx, storage.CurrentSnapshotKey(testPair), &snap) == nil
	}, 2*time.Second, 10*time.Millisecond, "ticker never persisted a snapshot")
}

func TestStopWaitsForTasks(t *testing.T) {
	store := storage.NewMemoryStore()
	sim := clients.NewSimulateClient(decimal.NewFromInt(10000), nil)
	sim.SetMarketData(testPair, quietMarket(3000))

	m := New(sim, store, testMonitoring(5*time.Millisecond), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx, []domain.Pair{testPair}))

	time.Sleep(30 * time.Millisecond)
	cancel()
	m.Stop()

	// no ticks may land after Stop returns
	before := store.Len()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, before, store.Len())
}
