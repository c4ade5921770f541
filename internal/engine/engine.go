// Package engine evaluates persisted market state against suitability gates,
// a trading signal strategy and conservative position sizing, and submits
// risk-bounded orders with attached stop-loss and take-profit levels.
package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/domain"
	"crypto-market-sentinel/internal/history"
	"crypto-market-sentinel/internal/storage"
	"crypto-market-sentinel/internal/storage/journal"
)

const alertWindow = 24 * time.Hour

// ExecutionVenue accepts an order specification and returns an order
// identifier. Submission failure is cycle-fatal for the pair.
type ExecutionVenue interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (string, error)
	CloseOrder(ctx context.Context, order *domain.Order) error
}

// BalanceSource reports the capital available for sizing a new position.
type BalanceSource interface {
	AvailableCapital(ctx context.Context, currency string) (decimal.Decimal, error)
}

// HistorySource exposes the rolling history collected by the monitor.
type HistorySource interface {
	History(pair domain.Pair) (history.Snapshot, bool)
}

// Engine drives the coarse-grained decision loop over all configured pairs.
type Engine struct {
	store      storage.Store
	venue      ExecutionVenue
	balance    BalanceSource
	histories  HistorySource
	strategy   SignalStrategy
	permission PermissionPolicy
	journal    *journal.Journal
	limits     config.Limits
	risk       domain.RiskConfig
	interval   time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	positions map[string]*domain.Order
}

// New wires a decision engine. The risk config is captured once here and
// never reassigned.
func New(
	store storage.Store,
	venue ExecutionVenue,
	balance BalanceSource,
	histories HistorySource,
	strategy SignalStrategy,
	permission PermissionPolicy,
	jrnl *journal.Journal,
	limits config.Limits,
	risk domain.RiskConfig,
	interval time.Duration,
	logger *zap.Logger,
) (*Engine, error) {
	if err := risk.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid risk config")
	}

	return &Engine{
		store:      store,
		venue:      venue,
		balance:    balance,
		histories:  histories,
		strategy:   strategy,
		permission: permission,
		journal:    jrnl,
		limits:     limits,
		risk:       risk,
		interval:   interval,
		logger:     logger,
		positions:  make(map[string]*domain.Order),
	}, nil
}

// Run iterates all pairs at the decision interval until the context is
// cancelled. A failure for one pair is logged and does not halt evaluation
// of the remaining pairs in the same cycle.
func (e *Engine) Run(ctx context.Context, pairs []domain.Pair) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("decision loop started",
		zap.Int("pairs", len(pairs)),
		zap.Duration("interval", e.interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("decision loop stopped")
			return
		case <-ticker.C:
			for _, pair := range pairs {
				if ctx.Err() != nil {
					return
				}
				if err := e.EvaluatePair(ctx, pair); err != nil {
					e.logger.Error("pair evaluation failed",
						zap.String("pair", pair.String()),
						zap.Error(err))
				}
			}
		}
	}
}

// EvaluatePair runs one decision cycle for one pair: suitability gate,
// permission gate, signal derivation, sizing, stop/take computation and
// submission. Every terminal outcome is journaled.
func (e *Engine) EvaluatePair(ctx context.Context, pair domain.Pair) error {
	logger := e.logger.With(zap.String("pair", pair.String()))

	var snap domain.MarketSnapshot
	err := e.store.Get(ctx, storage.CurrentSnapshotKey(pair), &snap)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Debug("no snapshot persisted yet")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read current snapshot")
	}

	active, err := e.activeAlerts(ctx, pair)
	if err != nil {
		return errors.Wrap(err, "read active alerts")
	}
	logAlertSummary(logger, active)

	// Suitability gate: an unsuitable market is a normal skip, not an error.
	if snap.Liquidity.LessThan(e.limits.MinLiquidity) {
		return e.record(journal.Event{Pair: pair.String(), Outcome: journal.OutcomeSkipped, Reason: "liquidity below minimum", Timestamp: time.Now()})
	}
	if snap.Volatility > e.limits.MaxVolatility {
		return e.record(journal.Event{Pair: pair.String(), Outcome: journal.OutcomeSkipped, Reason: "volatility above maximum", Timestamp: time.Now()})
	}

	now := time.Now()
	if ok, reason := e.permission.Allow(pair, now); !ok {
		logger.Info("trading blocked", zap.String("reason", reason))
		return e.record(journal.Event{Pair: pair.String(), Outcome: journal.OutcomeBlocked, Reason: reason, Timestamp: now})
	}

	hist, _ := e.histories.History(pair)
	signal := e.strategy.Evaluate(snap, hist)
	if !signal.ShouldTrade {
		return e.record(journal.Event{Pair: pair.String(), Outcome: journal.OutcomeHold, Timestamp: now})
	}

	capital, err := e.balance.AvailableCapital(ctx, pair.Quote)
	if err != nil {
		return errors.Wrap(err, "read available capital")
	}

	size := capital.Mul(e.risk.MaxPositionPercentage).Mul(signal.Confidence)
	if size.LessThanOrEqual(decimal.Zero) {
		return e.record(journal.Event{Pair: pair.String(), Outcome: journal.OutcomeHold, Reason: "zero position size", Timestamp: now})
	}

	stopLoss, takeProfit := e.exitLevels(snap.Price, signal.Direction)

	req := domain.OrderRequest{
		Pair:       pair,
		Side:       signal.Direction,
		Size:       size,
		Price:      snap.Price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	}

	// Submission failure indicates a possible partial monetary action and is
	// fatal for this cycle; no order record is persisted.
	orderID, err := e.venue.SubmitOrder(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "submit %s order for %s", signal.Direction, pair)
	}

	order, err := domain.NewOrder(orderID, req, now)
	if err != nil {
		return errors.Wrap(err, "build order record")
	}

	e.mu.Lock()
	e.positions[order.ID] = order
	e.mu.Unlock()

	e.permission.RecordTrade(pair, now)

	if err := e.store.Set(ctx, storage.OrderKey(order.ID), order); err != nil {
		return errors.Wrapf(err, "persist order %s", order.ID)
	}

	logger.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.String("side", order.Side),
		zap.String("size", order.Size.String()),
		zap.String("entry_price", order.EntryPrice.String()),
		zap.String("stop_loss", order.StopLoss.String()),
		zap.String("take_profit", order.TakeProfit.String()))

	return e.record(journal.Event{
		Pair:      pair.String(),
		Outcome:   journal.OutcomeSubmitted,
		Side:      order.Side,
		Size:      order.Size,
		OrderID:   order.ID,
		Timestamp: now,
	})
}

// exitLevels computes symmetric percentage offsets from the entry price:
// for a buy the stop sits below and the target above, mirrored for a sell.
func (e *Engine) exitLevels(price decimal.Decimal, side domain.Side) (stopLoss, takeProfit decimal.Decimal) {
	one := decimal.NewFromInt(1)
	if side == domain.SideBuy {
		return price.Mul(one.Sub(e.risk.StopLossPercentage)), price.Mul(one.Add(e.risk.TargetDailyReturn))
	}
	return price.Mul(one.Add(e.risk.StopLossPercentage)), price.Mul(one.Sub(e.risk.TargetDailyReturn))
}

// CloseAll attempts to close every tracked open position. Individual close
// failures are logged and do not abort the remaining closes.
func (e *Engine) CloseAll(ctx context.Context) {
	e.mu.Lock()
	open := make([]*domain.Order, 0, len(e.positions))
	for _, order := range e.positions {
		if order.Status == domain.OrderStatusOpen {
			open = append(open, order)
		}
	}
	e.mu.Unlock()

	for _, order := range open {
		if err := e.venue.CloseOrder(ctx, order); err != nil {
			e.logger.Error("failed to close position",
				zap.String("order_id", order.ID),
				zap.Error(err))
			continue
		}

		order.Close(time.Now(), "shutdown")
		if err := e.store.Set(ctx, storage.OrderKey(order.ID), order); err != nil {
			e.logger.Error("failed to persist closed order",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
		e.logger.Info("position closed", zap.String("order_id", order.ID))
	}
}

// OpenPositions returns the currently tracked open orders.
func (e *Engine) OpenPositions() []*domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := make([]*domain.Order, 0, len(e.positions))
	for _, order := range e.positions {
		if order.Status == domain.OrderStatusOpen {
			open = append(open, order)
		}
	}
	return open
}

// activeAlerts loads the pair's alerts from the trailing 24h window.
func (e *Engine) activeAlerts(ctx context.Context, pair domain.Pair) ([]domain.Alert, error) {
	cutoff := time.Now().Add(-alertWindow).UnixMilli()

	raw, err := e.store.QueryByPrefix(ctx, storage.AlertPrefix(pair), func(key string) bool {
		ts, ok := storage.AlertTimestamp(key)
		return ok && ts >= cutoff
	})
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(raw))
	for key, payload := range raw {
		var alert domain.Alert
		if err := json.Unmarshal(payload, &alert); err != nil {
			return nil, errors.Wrapf(err, "decode alert %s", key)
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func logAlertSummary(logger *zap.Logger, alerts []domain.Alert) {
	if len(alerts) == 0 {
		return
	}

	var priceChange, volumeSpike, lowLiquidity int
	for _, alert := range alerts {
		switch alert.Type {
		case domain.AlertPriceChange:
			priceChange++
		case domain.AlertVolumeSpike:
			volumeSpike++
		case domain.AlertLowLiquidity:
			lowLiquidity++
		}
	}

	logger.Debug("active alerts in window",
		zap.Int("price_change", priceChange),
		zap.Int("volume_spike", volumeSpike),
		zap.Int("low_liquidity", lowLiquidity))
}

func (e *Engine) record(event journal.Event) error {
	if e.journal == nil {
		return nil
	}
	if err := e.journal.Append(event); err != nil {
		e.logger.Warn("failed to journal decision", zap.Error(err))
	}
	return nil
}
