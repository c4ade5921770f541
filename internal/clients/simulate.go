package clients

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"crypto-market-sentinel/internal/domain"
)

// SimulateClient is an in-process market-data provider, execution venue and
// balance source for dry runs and tests. Market data is fed through
// SetMarketData; orders only move the simulated quote balance.
type SimulateClient struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	data    map[string]domain.MarketData
	capital decimal.Decimal
	orders  map[string]domain.OrderRequest
	closed  []string
}

// NewSimulateClient creates a simulator holding the given starting capital.
func NewSimulateClient(startingCapital decimal.Decimal, logger *zap.Logger) *SimulateClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulateClient{
		logger:  logger,
		data:    make(map[string]domain.MarketData),
		capital: startingCapital,
		orders:  make(map[string]domain.OrderRequest),
	}
}

// SetMarketData installs the next fetch result for a pair.
func (c *SimulateClient) SetMarketData(pair domain.Pair, data domain.MarketData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[pair.String()] = data
}

// Fetch implements the market-data provider contract.
func (c *SimulateClient) Fetch(_ context.Context, pair domain.Pair) (domain.MarketData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[pair.String()]
	if !ok {
		return domain.MarketData{}, errors.Errorf("no simulated market data for %s", pair)
	}
	return data, nil
}

// SubmitOrder records the order and deducts its quote size from capital.
func (c *SimulateClient) SubmitOrder(_ context.Context, req domain.OrderRequest) (string, error) {
	if req.Size.LessThanOrEqual(decimal.Zero) {
		return "", errors.New("order size must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Side == domain.SideBuy && req.Size.GreaterThan(c.capital) {
		return "", errors.Errorf("insufficient capital: need %s, have %s", req.Size, c.capital)
	}

	orderID := uuid.NewString()
	c.orders[orderID] = req
	if req.Side == domain.SideBuy {
		c.capital = c.capital.Sub(req.Size)
	}

	c.logger.Info("simulated order",
		zap.String("order_id", orderID),
		zap.String("pair", req.Pair.String()),
		zap.String("side", req.Side.String()),
		zap.String("size", req.Size.String()))
	return orderID, nil
}

// CloseOrder returns the order's quote size to capital.
func (c *SimulateClient) CloseOrder(_ context.Context, order *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.orders[order.ID]
	if !ok {
		return errors.Errorf("unknown order %s", order.ID)
	}

	if req.Side == domain.SideBuy {
		c.capital = c.capital.Add(req.Size)
	}
	delete(c.orders, order.ID)
	c.closed = append(c.closed, order.ID)
	return nil
}

// AvailableCapital implements the balance source contract.
func (c *SimulateClient) AvailableCapital(_ context.Context, _ string) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capital, nil
}

// SubmittedOrders returns the currently open simulated orders. Test helper.
func (c *SimulateClient) SubmittedOrders() map[string]domain.OrderRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]domain.OrderRequest, len(c.orders))
	for id, req := range c.orders {
		out[id] = req
	}
	return out
}

// ClosedOrders returns the IDs of closed orders in close sequence. Test helper.
func (c *SimulateClient) ClosedOrders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.closed...)
}
