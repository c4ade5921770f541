package clients

import (
	"context"

	"github.com/google/uuid"
	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"crypto-market-sentinel/internal/domain"
)

// BybitClient serves market data, order submission and balance queries
// through the Bybit v5 spot API.
type BybitClient struct {
	client *bybit.Client
}

// NewBybitClient wraps an authenticated Bybit API client.
func NewBybitClient(apiKey, apiSecret string) *BybitClient {
	return &BybitClient{client: bybit.NewClient().WithAuth(apiKey, apiSecret)}
}

// Fetch returns spot ticker data for the pair. Liquidity is approximated as
// the quote value resting at the top of the book; the 24h change percent is
// converted from bybit's fractional representation.
func (c *BybitClient) Fetch(ctx context.Context, pair domain.Pair) (domain.MarketData, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := c.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.MarketData{}, errors.Wrapf(err, "fetch tickers for %s", pair)
	}
	if len(result.Result.Spot.List) == 0 {
		return domain.MarketData{}, errors.Errorf("bybit returned no ticker data for %s", pair)
	}
	t := result.Result.Spot.List[0]

	price, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse last price")
	}
	bid, err := decimal.NewFromString(t.Bid1Price)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse bid price")
	}
	ask, err := decimal.NewFromString(t.Ask1Price)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse ask price")
	}
	turnover, err := decimal.NewFromString(t.Turnover24H)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse 24h turnover")
	}
	changeFraction, err := decimal.NewFromString(t.Price24HPcnt)
	if err != nil {
		return domain.MarketData{}, errors.Wrap(err, "parse 24h change")
	}

	bidSize, _ := decimal.NewFromString(t.Bid1Size)
	askSize, _ := decimal.NewFromString(t.Ask1Size)

	return domain.MarketData{
		Price:          price,
		BestBid:        bid,
		BestAsk:        ask,
		Volume24h:      turnover,
		Liquidity:      bidSize.Add(askSize).Mul(price),
		PriceChange24h: changeFraction.Mul(decimal.NewFromInt(100)),
	}, nil
}

// SubmitOrder places a spot market order. Bybit market buys take the quote
// amount directly; sells take base quantity, converted at the entry price.
func (c *BybitClient) SubmitOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	orderID := uuid.NewString()

	side := bybit.SideBuy
	qty := req.Size
	if req.Side == domain.SideSell {
		side = bybit.SideSell
		qty = req.Size.Div(req.Price).RoundFloor(6)
	}

	_, err := c.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(req.Pair.Symbol()),
		Side:        side,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         qty.String(),
		OrderLinkID: &orderID,
	})
	if err != nil {
		return "", errors.Wrapf(err, "create %s order for %s", req.Side, req.Pair)
	}

	return orderID, nil
}

// CloseOrder unwinds a tracked position with an opposite market order.
func (c *BybitClient) CloseOrder(ctx context.Context, order *domain.Order) error {
	pair, err := domain.PairFromString(order.Pair)
	if err != nil {
		return errors.Wrap(err, "parse order pair")
	}

	side := bybit.SideSell
	qty := order.Size.Div(order.EntryPrice).RoundFloor(6)
	if order.Side == domain.SideSell.String() {
		side = bybit.SideBuy
	}

	linkID := uuid.NewString()
	_, err = c.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    "spot",
		Symbol:      bybit.SymbolV5(pair.Symbol()),
		Side:        side,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         qty.String(),
		OrderLinkID: &linkID,
	})
	if err != nil {
		return errors.Wrapf(err, "close order %s", order.ID)
	}
	return nil
}

// AvailableCapital returns the unified wallet balance for the currency.
func (c *BybitClient) AvailableCapital(_ context.Context, currency string) (decimal.Decimal, error) {
	res, err := c.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "fetch wallet balance")
	}
	if len(res.Result.List) == 0 {
		return decimal.Zero, nil
	}

	for _, coin := range res.Result.List[0].Coin {
		if string(coin.Coin) == currency {
			balance, err := decimal.NewFromString(coin.WalletBalance)
			if err != nil {
				return decimal.Decimal{}, errors.Wrapf(err, "parse wallet balance for %s", currency)
			}
			return balance, nil
		}
	}
	return decimal.Zero, nil
}
