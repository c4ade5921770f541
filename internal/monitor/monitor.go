// Package monitor schedules per-pair market data collection: each enabled
// pair gets an independent periodic task that fetches raw market data,
// updates the rolling history, derives indicators and persists the enriched
// snapshot together with any raised alerts.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/alerts"
	"crypto-market-sentinel/internal/domain"
	"crypto-market-sentinel/internal/history"
	"crypto-market-sentinel/internal/storage"
	"crypto-market-sentinel/pkg/indicators"
)

// MarketDataProvider returns a quote and auxiliary market statistics for a
// pair. A failed fetch means "no snapshot this cycle", never a crash.
type MarketDataProvider interface {
	Fetch(ctx context.Context, pair domain.Pair) (domain.MarketData, error)
}

// pairTask is the cancellable handle for one pair's periodic fetch loop.
type pairTask struct {
	cancel   context.CancelFunc
	inFlight atomic.Bool
}

// Monitor owns the registry of per-pair tasks and their rolling histories.
type Monitor struct {
	provider  MarketDataProvider
	store     storage.Store
	evaluator *alerts.Evaluator
	cfg       config.Monitoring
	maxPeriod int
	logger    *zap.Logger

	mu        sync.RWMutex
	histories map[string]*history.Rolling
	tasks     map[string]*pairTask
	wg        sync.WaitGroup
}

// New creates a monitor. Start must be called to begin collection.
func New(provider MarketDataProvider, store storage.Store, cfg config.Monitoring, logger *zap.Logger) *Monitor {
	return &Monitor{
		provider:  provider,
		store:     store,
		evaluator: alerts.NewEvaluator(cfg),
		cfg:       cfg,
		maxPeriod: history.MaxPeriod(cfg.EMAPeriods, cfg.BollingerPeriod),
		logger:    logger,
		histories: make(map[string]*history.Rolling),
		tasks:     make(map[string]*pairTask),
	}
}

// Start launches one periodic task per pair. Tasks for different pairs run
// fully independently; a failure in one never affects another.
func (m *Monitor) Start(ctx context.Context, pairs []domain.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tasks) > 0 {
		return errors.New("monitor already started")
	}

	for _, pair := range pairs {
		taskCtx, cancel := context.WithCancel(ctx)
		task := &pairTask{cancel: cancel}
		rolling := history.NewRolling(m.maxPeriod)

		m.tasks[pair.String()] = task
		m.histories[pair.String()] = rolling

		m.wg.Add(1)
		go m.run(taskCtx, pair, task, rolling)
	}

	m.logger.Info("monitor started",
		zap.Int("pairs", len(pairs)),
		zap.Duration("update_interval", m.cfg.UpdateInterval))
	return nil
}

// Stop cancels every task handle and waits for in-flight ticks to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	for _, task := range m.tasks {
		task.cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("monitor stopped")
}

// Collect runs one fetch cycle for the pair immediately, outside the
// periodic schedule. The pair must already be monitored.
func (m *Monitor) Collect(ctx context.Context, pair domain.Pair) error {
	m.mu.RLock()
	rolling, ok := m.histories[pair.String()]
	m.mu.RUnlock()

	if !ok {
		return errors.Errorf("pair %s is not monitored", pair)
	}
	return m.tick(ctx, pair, rolling)
}

// History returns an immutable copy of the pair's rolling history.
func (m *Monitor) History(pair domain.Pair) (history.Snapshot, bool) {
	m.mu.RLock()
	rolling, ok := m.histories[pair.String()]
	m.mu.RUnlock()

	if !ok {
		return history.Snapshot{}, false
	}
	return rolling.Snapshot(), true
}

func (m *Monitor) run(ctx context.Context, pair domain.Pair, task *pairTask, rolling *history.Rolling) {
	defer m.wg.Done()

	logger := m.logger.With(zap.String("pair", pair.String()))
	ticker := time.NewTicker(m.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("pair task stopped")
			return
		case <-ticker.C:
			// Ticks for the same pair must never overlap. If the previous
			// one is still in flight, this one is skipped.
			if !task.inFlight.CompareAndSwap(false, true) {
				logger.Warn("previous tick still in flight, skipping")
				continue
			}
			if err := m.tick(ctx, pair, rolling); err != nil {
				logger.Error("fetch cycle abandoned", zap.Error(err))
			}
			task.inFlight.Store(false)
		}
	}
}

// tick is one bounded unit of work: fetch, update history, compute
// indicators, persist, evaluate alerts.
func (m *Monitor) tick(ctx context.Context, pair domain.Pair, rolling *history.Rolling) error {
	data, err := m.provider.Fetch(ctx, pair)
	if err != nil {
		return errors.Wrap(err, "fetch market data")
	}

	rolling.Update(sampleFrom(data))

	snap := m.buildSnapshot(pair, data, rolling.Snapshot())

	if err := m.store.Set(ctx, storage.CurrentSnapshotKey(pair), snap); err != nil {
		return errors.Wrap(err, "persist current snapshot")
	}
	if err := m.store.Set(ctx, storage.HistorySnapshotKey(pair, snap.Timestamp), snap); err != nil {
		return errors.Wrap(err, "persist history snapshot")
	}

	raised := m.evaluator.Evaluate(pair, snap)
	for _, alert := range raised {
		if err := m.store.Set(ctx, storage.AlertKey(pair, alert.Timestamp), alert); err != nil {
			return errors.Wrap(err, "persist alert")
		}
		m.logger.Info("alert raised",
			zap.String("pair", pair.String()),
			zap.String("type", alert.Type.String()),
			zap.String("severity", alert.Severity.String()),
			zap.String("message", alert.Message))
	}

	if m.cfg.Debug {
		supports, resistances := indicators.SupportResistance(rolling.Snapshot().Prices, m.cfg.SRWindow)
		m.logger.Debug("snapshot persisted",
			zap.String("pair", pair.String()),
			zap.String("price", snap.Price.String()),
			zap.Float64("rsi", snap.Indicators.RSI),
			zap.Float64("volatility", snap.Volatility),
			zap.Float64s("supports", supports),
			zap.Float64s("resistances", resistances),
			zap.Int("alerts", len(raised)))
	}

	return nil
}

// sampleFrom derives the per-tick high/low from best ask/bid, falling back
// to the last price when the book sides are absent.
func sampleFrom(data domain.MarketData) history.Sample {
	price, _ := data.Price.Float64()

	high := price
	if data.BestAsk.IsPositive() {
		high, _ = data.BestAsk.Float64()
	}
	low := price
	if data.BestBid.IsPositive() {
		low, _ = data.BestBid.Float64()
	}
	volume, _ := data.Volume24h.Float64()

	return history.Sample{Price: price, High: high, Low: low, Volume: volume}
}

func (m *Monitor) buildSnapshot(pair domain.Pair, data domain.MarketData, hist history.Snapshot) domain.MarketSnapshot {
	ema := make(map[int]float64, len(m.cfg.EMAPeriods))
	for _, period := range m.cfg.EMAPeriods {
		ema[period] = indicators.EMA(hist.Prices, period)
	}

	bands := indicators.BollingerBands(hist.Prices, m.cfg.BollingerPeriod, m.cfg.BollingerStdDev)

	return domain.MarketSnapshot{
		Pair:           pair.String(),
		Price:          data.Price,
		Timestamp:      time.Now().UnixMilli(),
		Volume24h:      data.Volume24h,
		Liquidity:      data.Liquidity,
		PriceChange24h: data.PriceChange24h,
		Volatility:     indicators.Volatility(hist.Prices, m.cfg.VolatilityPeriod),
		Indicators: domain.IndicatorBundle{
			EMA: ema,
			RSI: indicators.RSI(hist.Prices, m.cfg.RSIPeriod),
			Bollinger: domain.BollingerBands{
				Upper:  bands.Upper,
				Middle: bands.Middle,
				Lower:  bands.Lower,
			},
			ATR: indicators.ATR(hist.Highs, hist.Lows, hist.Prices, m.cfg.ATRPeriod),
		},
	}
}
