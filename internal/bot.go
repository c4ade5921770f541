// Package internal wires the monitor and decision engine into one runnable
// sentinel instance.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"crypto-market-sentinel/config"
	"crypto-market-sentinel/internal/engine"
	"crypto-market-sentinel/internal/monitor"
	"crypto-market-sentinel/internal/storage"
	"crypto-market-sentinel/internal/storage/journal"
)

// Venue bundles the capabilities a platform client must provide.
type Venue interface {
	monitor.MarketDataProvider
	engine.ExecutionVenue
	engine.BalanceSource
}

// Sentinel owns the per-pair monitoring tasks, the decision loop and the
// tracked open positions.
type Sentinel struct {
	cfg     config.Config
	monitor *monitor.Monitor
	engine  *engine.Engine
	journal *journal.Journal
	store   storage.Store
	logger  *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSentinel assembles a sentinel from its collaborators. The reference
// RSI-oversold strategy and the stateful daily-limit policy are wired here;
// both sit behind interfaces and can be substituted without touching the
// engine.
func NewSentinel(cfg config.Config, store storage.Store, venue Venue, jrnl *journal.Journal, logger *zap.Logger) (*Sentinel, error) {
	mon := monitor.New(venue, store, cfg.Monitoring, logger)

	var permission engine.PermissionPolicy
	if cfg.Platform == "simulate" {
		permission = engine.AllowAll{}
	} else {
		capital, err := venue.AvailableCapital(context.Background(), quoteCurrency(cfg))
		if err != nil {
			return nil, errors.Wrap(err, "read starting capital for drawdown tracking")
		}
		permission = engine.NewDailyLimitPolicy(cfg.Limits.MaxDailyTrades, cfg.Limits.MaxDrawdown, capital)
	}

	eng, err := engine.New(
		store,
		venue,
		venue,
		mon,
		engine.NewRSIOversoldStrategy(cfg.Monitoring.RSIOversold),
		permission,
		jrnl,
		cfg.Limits,
		cfg.Risk,
		cfg.Monitoring.DecisionInterval,
		logger,
	)
	if err != nil {
		return nil, errors.Wrap(err, "create decision engine")
	}

	return &Sentinel{
		cfg:     cfg,
		monitor: mon,
		engine:  eng,
		journal: jrnl,
		store:   store,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Run starts monitoring and the decision loop. It returns immediately after
// startup; a startup failure leaves nothing running.
func (s *Sentinel) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	pairs := s.cfg.EnabledPairs()
	if len(pairs) == 0 {
		cancel()
		return errors.New("no enabled trading pairs configured")
	}

	if err := s.monitor.Start(runCtx, pairs); err != nil {
		cancel()
		return errors.Wrap(err, "start monitor")
	}

	s.cancel = cancel
	go func() {
		defer close(s.done)
		s.engine.Run(runCtx, pairs)
	}()

	s.logger.Info("sentinel running", zap.String("platform", s.cfg.Platform), zap.Int("pairs", len(pairs)))
	return nil
}

// Shutdown stops scheduling new work, waits for in-flight cycles, closes all
// tracked open positions and releases resources. Individual close failures
// are logged, not escalated.
func (s *Sentinel) Shutdown(ctx context.Context) {
	s.logger.Info("sentinel shutting down")

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.monitor.Stop()

	s.engine.CloseAll(ctx)

	if err := s.journal.Close(); err != nil {
		s.logger.Warn("failed to close decision journal", zap.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close store", zap.Error(err))
	}
}

func quoteCurrency(cfg config.Config) string {
	for _, pc := range cfg.Pairs {
		if pc.Enabled {
			return pc.Pair.Quote
		}
	}
	return ""
}
