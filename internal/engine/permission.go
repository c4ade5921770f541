package engine

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"crypto-market-sentinel/internal/domain"
)

// PermissionPolicy decides whether trading is currently allowed for a pair.
// The engine reports executed trades and realized PnL back to the policy so
// stateful implementations can enforce daily limits.
type PermissionPolicy interface {
	// Allow returns false with a human-readable reason when trading must be
	// blocked for this cycle.
	Allow(pair domain.Pair, now time.Time) (bool, string)
	// RecordTrade notes one executed trade.
	RecordTrade(pair domain.Pair, now time.Time)
	// RecordPnL notes realized profit or loss.
	RecordPnL(pnl decimal.Decimal)
}

// AllowAll is the pass-through reference policy. It performs no accounting
// and should only back simulate runs.
type AllowAll struct{}

func (AllowAll) Allow(domain.Pair, time.Time) (bool, string) { return true, "" }
func (AllowAll) RecordTrade(domain.Pair, time.Time)          {}
func (AllowAll) RecordPnL(decimal.Decimal)                   {}

// DailyLimitPolicy is a stateful trade counter and drawdown tracker. It
// blocks trading once the daily trade budget is spent or cumulative realized
// losses exceed the drawdown fraction of starting capital. Counters reset on
// UTC day change.
type DailyLimitPolicy struct {
	mu              sync.Mutex
	maxDailyTrades  int
	maxDrawdown     decimal.Decimal
	startingCapital decimal.Decimal

	day    time.Time
	trades int
	pnl    decimal.Decimal
}

// NewDailyLimitPolicy builds the policy. maxDrawdown is a fraction of
// startingCapital (0.1 = block after losing 10%).
func NewDailyLimitPolicy(maxDailyTrades int, maxDrawdown, startingCapital decimal.Decimal) *DailyLimitPolicy {
	return &DailyLimitPolicy{
		maxDailyTrades:  maxDailyTrades,
		maxDrawdown:     maxDrawdown,
		startingCapital: startingCapital,
	}
}

func (p *DailyLimitPolicy) Allow(_ domain.Pair, now time.Time) (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rollDay(now)

	if p.trades >= p.maxDailyTrades {
		return false, "daily trade limit reached"
	}

	lossLimit := p.startingCapital.Mul(p.maxDrawdown)
	if p.pnl.IsNegative() && p.pnl.Neg().GreaterThanOrEqual(lossLimit) {
		return false, "drawdown limit reached"
	}

	return true, ""
}

func (p *DailyLimitPolicy) RecordTrade(_ domain.Pair, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rollDay(now)
	p.trades++
}

func (p *DailyLimitPolicy) RecordPnL(pnl decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pnl = p.pnl.Add(pnl)
}

// rollDay resets the daily counters when the UTC day changes. Cumulative PnL
// deliberately survives the rollover: drawdown protects capital, not a
// calendar day. Caller must hold the lock.
func (p *DailyLimitPolicy) rollDay(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if !day.Equal(p.day) {
		p.day = day
		p.trades = 0
	}
}
