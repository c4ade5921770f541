// Package clients implements the market-data provider, execution venue and
// balance source contracts against concrete exchanges, plus an in-process
// simulator for dry runs and tests.
package clients

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"crypto-market-sentinel/internal/domain"
)

// BinanceClient serves market data, order submission and balance queries
// through the Binance spot API.
type BinanceClient struct {
	client *binance.Client
}

// NewBinanceClient wraps an authenticated Binance API client.
func NewBinanceClient(apiKey, apiSecret string) *BinanceClient {
	return &BinanceClient{client: binance.NewClient(apiKey, apiSecret)}
}

// Fetch returns the 24h ticker statistics for the pair. Liquidity is
// approximated as the quote value resting at the top of the book.
func (c *BinanceClient) Fetch(ctx context.Context, pair domain.Pair) (domain.MarketData, error) {
	stats, err := c.client.NewListPriceChangeStatsService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.MarketData{}, errors.Wrapf(err, "fetch ticker stats for %s", pair)
	}
	if len(stats) == 0 {
		return domain.MarketData{}, errors.Errorf("binance returned no ticker stats for %s", pair)
	}
	s := stats[0]

	price, err := decimal.NewFromString(s.LastPrice)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse last price")
	}
	bid, err := decimal.NewFromString(s.BidPrice)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse bid price")
	}
	ask, err := decimal.NewFromString(s.AskPrice)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse ask price")
	}
	quoteVolume, err := decimal.NewFromString(s.QuoteVolume)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse quote volume")
	}
	changePct, err := decimal.NewFromString(s.PriceChangePercent)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse price change percent")
	}

	bidQty, _ := decimal.NewFromString(s.BidQty)
	askQty, _ := decimal.NewFromString(s.AskQty)

	return domain.MarketData{
		Price:          price,
		BestBid:        bid,
		BestAsk:        ask,
		Volume24h:      quoteVolume,
		Liquidity:      bidQty.Add(askQty).Mul(price),
		PriceChange24h: changePct,
	}, nil
}

// SubmitOrder places a market order. The order size is quote-denominated:
// buys spend it directly, sells convert it to base quantity at the entry
// price. The generated client order ID doubles as the order record ID.
func (c *BinanceClient) SubmitOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	orderID := uuid.NewString()

	svc := c.client.NewCreateOrderService().
		Symbol(req.Pair.Symbol()).
		Type(binance.OrderTypeMarket).
		NewClientOrderID(orderID)

	if req.Side == domain.SideBuy {
		svc = svc.Side(binance.SideTypeBuy).QuoteOrderQty(req.Size.String())
	} else {
		qty := req.Size.Div(req.Price).RoundFloor(6)
		svc = svc.Side(binance.SideTypeSell).Quantity(qty.String())
	}

	if _, err := svc.Do(ctx); err != nil {
		return "", errors.Wrapf(err, "create %s order for %s", req.Side, req.Pair)
	}

	return orderID, nil
}

// CloseOrder unwinds a tracked position with an opposite market order.
func (c *BinanceClient) CloseOrder(ctx context.Context, order *domain.Order) error {
	pair, err := domain.PairFromString(order.Pair)
	if err != nil {
		return errors.Wrap(err, "parse order pair")
	}

	svc := c.client.NewCreateOrderService().
		Symbol(pair.Symbol()).
		Type(binance.OrderTypeMarket).
		NewClientOrderID(uuid.NewString())

	qty := order.Size.Div(order.EntryPrice).RoundFloor(6)
	if order.Side == domain.SideBuy.String() {
		svc = svc.Side(binance.SideTypeSell).Quantity(qty.String())
	} else {
		svc = svc.Side(binance.SideTypeBuy).Quantity(qty.String())
	}

	if _, err := svc.Do(ctx); err != nil {
		return errors.Wrapf(err, "close order %s", order.ID)
	}
	return nil
}

// AvailableCapital returns the free balance of the given currency.
func (c *BinanceClient) AvailableCapital(ctx context.Context, currency string) (decimal.Decimal, error) {
	account, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "fetch account balances")
	}

	for _, balance := range account.Balances {
		if balance.Asset == currency {
			free, err := decimal.NewFromString(balance.Free)
			if err != nil {
				return decimal.Decimal{}, errors.Wrapf(err, "parse free balance for %s", currency)
			}
			return free, nil
		}
	}
	return decimal.Zero, nil
}
