package domain

import "github.com/shopspring/decimal"

// MarketData is the raw result of a single market-data fetch for a pair.
type MarketData struct {
	Price          decimal.Decimal `json:"price"`
	BestBid        decimal.Decimal `json:"best_bid"`
	BestAsk        decimal.Decimal `json:"best_ask"`
	Volume24h      decimal.Decimal `json:"volume_24h"`
	Liquidity      decimal.Decimal `json:"liquidity"`
	PriceChange24h decimal.Decimal `json:"price_change_24h"`
}

// BollingerBands is a mean plus/minus k*stddev envelope over a trailing window.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorBundle holds the technical indicators derived from the rolling
// history at snapshot time.
type IndicatorBundle struct {
	// EMA values keyed by period.
	EMA       map[int]float64 `json:"ema"`
	RSI       float64         `json:"rsi"`
	Bollinger BollingerBands  `json:"bollinger"`
	ATR       float64         `json:"atr"`
}

// MarketSnapshot is the enriched market state for one pair produced once per
// fetch cycle. It is immutable once constructed; the next cycle supersedes it
// with a new snapshot rather than mutating this one.
type MarketSnapshot struct {
	Pair           string          `json:"pair"`
	Price          decimal.Decimal `json:"price"`
	Timestamp      int64           `json:"timestamp"` // unix milliseconds
	Volume24h      decimal.Decimal `json:"volume_24h"`
	Liquidity      decimal.Decimal `json:"liquidity"`
	PriceChange24h decimal.Decimal `json:"price_change_24h"`
	Volatility     float64         `json:"volatility"`
	Indicators     IndicatorBundle `json:"indicators"`
}
