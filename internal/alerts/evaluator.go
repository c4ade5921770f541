// Package alerts evaluates enriched market snapshots against configured
// thresholds and produces alert records.
package alerts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/domain"
)

// Evaluator is a stateless threshold comparator. The three conditions are
// checked independently, so a single snapshot can raise up to three alerts.
type Evaluator struct {
	thresholds      config.AlertThresholds
	volumeThreshold decimal.Decimal
}

// NewEvaluator builds an evaluator from the monitoring configuration.
func NewEvaluator(m config.Monitoring) *Evaluator {
	return &Evaluator{
		thresholds:      m.AlertThresholds,
		volumeThreshold: m.VolumeThreshold,
	}
}

// Evaluate returns zero or more alerts for the snapshot. Alert timestamps
// carry the snapshot's evaluation time.
func (e *Evaluator) Evaluate(pair domain.Pair, snap domain.MarketSnapshot) []domain.Alert {
	var out []domain.Alert

	if snap.PriceChange24h.Abs().GreaterThan(e.thresholds.PriceChange) {
		out = append(out, domain.Alert{
			Type:      domain.AlertPriceChange,
			Severity:  domain.SeverityHigh,
			Pair:      pair.String(),
			Message:   fmt.Sprintf("%s price moved %s%% in 24h (threshold %s%%)", pair, snap.PriceChange24h, e.thresholds.PriceChange),
			Timestamp: snap.Timestamp,
		})
	}

	if snap.Volume24h.GreaterThan(e.volumeThreshold.Mul(e.thresholds.VolumeSpike)) {
		out = append(out, domain.Alert{
			Type:      domain.AlertVolumeSpike,
			Severity:  domain.SeverityMedium,
			Pair:      pair.String(),
			Message:   fmt.Sprintf("%s 24h volume %s exceeds %sx volume threshold %s", pair, snap.Volume24h, e.thresholds.VolumeSpike, e.volumeThreshold),
			Timestamp: snap.Timestamp,
		})
	}

	if snap.Liquidity.LessThan(e.thresholds.LowLiquidity) {
		out = append(out, domain.Alert{
			Type:      domain.AlertLowLiquidity,
			Severity:  domain.SeverityHigh,
			Pair:      pair.String(),
			Message:   fmt.Sprintf("%s liquidity %s below floor %s", pair, snap.Liquidity, e.thresholds.LowLiquidity),
			Timestamp: snap.Timestamp,
		})
	}

	return out
}
