package engine

import (
	"github.com/shopspring/decimal"

	"crypto-market-sentinel/internal/domain"
	"crypto-market-sentinel/internal/history"
)

// Signal is a trading signal produced by a strategy.
type Signal struct {
	ShouldTrade bool
	Direction   domain.Side
	Confidence  decimal.Decimal
}

// SignalStrategy derives a trading signal from the latest enriched snapshot
// and the pair's rolling history. Implementations must be stateless between
// cycles; the engine carries no strategy state across evaluations.
type SignalStrategy interface {
	Evaluate(snap domain.MarketSnapshot, hist history.Snapshot) Signal
}

// directionThreshold splits buy from sell once the oversold trigger fired.
const directionThreshold = 40

// RSIOversoldStrategy trades only on an oversold RSI reading. It is an
// intentionally minimal reference strategy: the oversold condition is the
// sole trigger, direction is buy below the direction threshold and sell
// above it, and confidence is a fixed constant.
type RSIOversoldStrategy struct {
	oversold   float64
	confidence decimal.Decimal
}

// NewRSIOversoldStrategy builds the reference strategy with the configured
// oversold trigger level.
func NewRSIOversoldStrategy(oversold float64) *RSIOversoldStrategy {
	return &RSIOversoldStrategy{
		oversold:   oversold,
		confidence: decimal.NewFromFloat(0.8),
	}
}

// Evaluate implements SignalStrategy.
func (s *RSIOversoldStrategy) Evaluate(snap domain.MarketSnapshot, _ history.Snapshot) Signal {
	rsi := snap.Indicators.RSI

	if rsi >= s.oversold {
		return Signal{}
	}

	direction := domain.SideSell
	if rsi < directionThreshold {
		direction = domain.SideBuy
	}

	return Signal{
		ShouldTrade: true,
		Direction:   direction,
		Confidence:  s.confidence,
	}
}
