package indicators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ascending(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestEMAFullHistoryRecurrence(t *testing.T) {
	// Seeded at prices[0] and smoothed across the whole sequence with
	// k = 2/(period+1): for [1..10] and period 5 this converges to
	// 158488/19683.
	got := EMA(ascending(10), 5)
	require.InDelta(t, 8.0520, got, 0.0001)
}

func TestEMAInsufficientDataReturnsLastPrice(t *testing.T) {
	require.Equal(t, 42.5, EMA([]float64{40, 41, 42.5}, 5))
	require.Equal(t, 7.0, EMA([]float64{7}, 2))
	require.Equal(t, 0.0, EMA(nil, 5))
}

func TestEMAWeighsRecentSamplesMoreHeavily(t *testing.T) {
	prices := ascending(10)
	sma := 5.5 // arithmetic mean of 1..10
	require.Greater(t, EMA(prices, 5), sma)
}

func TestRSIInsufficientDataIsNeutral(t *testing.T) {
	require.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14))
	require.Equal(t, 50.0, RSI(nil, 14))
	// exactly period samples is still one delta short
	require.Equal(t, 50.0, RSI(ascending(14), 14))
}

func TestRSIBounds(t *testing.T) {
	sequences := [][]float64{
		ascending(30),
		{100, 99, 98, 97, 96, 95, 94, 93, 92, 91, 90, 89, 88, 87, 86, 85},
		{50, 52, 48, 53, 47, 55, 45, 56, 44, 58, 43, 60, 41, 61, 40, 62},
	}
	for _, prices := range sequences {
		rsi := RSI(prices, 14)
		require.GreaterOrEqual(t, rsi, 0.0)
		require.LessOrEqual(t, rsi, 100.0)
	}
}

func TestRSIPureUptrendIsPinnedTo100(t *testing.T) {
	// All deltas are gains, so the smoothed average loss stays exactly zero.
	require.Equal(t, 100.0, RSI(ascending(20), 14))
}

func TestRSIPureDowntrendIsZero(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = float64(100 - i)
	}
	require.Equal(t, 0.0, RSI(prices, 14))
}

func TestBollingerBandsOrdering(t *testing.T) {
	prices := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16}
	bands := BollingerBands(prices, 10, 2)

	require.Less(t, bands.Lower, bands.Middle)
	require.Less(t, bands.Middle, bands.Upper)
}

func TestBollingerMiddleIsWindowMean(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 100, 200, 300, 400}
	bands := BollingerBands(prices, 4, 2)
	require.InDelta(t, 250.0, bands.Middle, 1e-9)
}

func TestBollingerUsesPopulationStdDev(t *testing.T) {
	// Window [2, 4, 4, 4, 5, 5, 7, 9] has population stddev exactly 2.
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	bands := BollingerBands(prices, 8, 2)
	require.InDelta(t, 5.0, bands.Middle, 1e-9)
	require.InDelta(t, 9.0, bands.Upper, 1e-9)
	require.InDelta(t, 1.0, bands.Lower, 1e-9)
}

func TestBollingerInsufficientDataCollapsesToLastPrice(t *testing.T) {
	bands := BollingerBands([]float64{5, 6, 7}, 20, 2)
	require.Equal(t, 7.0, bands.Upper)
	require.Equal(t, 7.0, bands.Middle)
	require.Equal(t, 7.0, bands.Lower)
}

func TestATRInsufficientDataIsZero(t *testing.T) {
	require.Equal(t, 0.0, ATR(nil, nil, nil, 14))
	require.Equal(t, 0.0, ATR([]float64{10}, []float64{9}, []float64{9.5}, 14))
}

func TestATRNonNegative(t *testing.T) {
	highs := []float64{10, 12, 11, 14, 13, 15}
	lows := []float64{9, 10, 10, 11, 12, 13}
	closes := []float64{9.5, 11, 10.5, 13, 12.5, 14}

	require.GreaterOrEqual(t, ATR(highs, lows, closes, 14), 0.0)
	require.GreaterOrEqual(t, ATR(highs, lows, closes, 3), 0.0)
}

func TestATRIncludesGapsAgainstPreviousClose(t *testing.T) {
	// Second bar gaps far above the first close: true range must use
	// |high-prevClose|, not just high-low.
	highs := []float64{10, 20}
	lows := []float64{9, 19.5}
	closes := []float64{9.5, 19.8}

	withGap := ATR(highs, lows, closes, 2)
	// seed 1.0, then (1.0*1 + 10.5)/2
	require.InDelta(t, 5.75, withGap, 1e-9)
}

func TestATRUsesFixedPeriodDivisorDuringWarmup(t *testing.T) {
	// Two bars but period 14: the second true range is still divided by 14.
	highs := []float64{10, 11}
	lows := []float64{9, 10}
	closes := []float64{9.5, 10.5}

	// seed 1.0, then (1.0*13 + 1.5)/14
	require.InDelta(t, 14.5/14.0, ATR(highs, lows, closes, 14), 1e-9)
}

func TestVolatilityInsufficientDataIsZero(t *testing.T) {
	require.Equal(t, 0.0, Volatility(ascending(19), 20))
	require.Equal(t, 0.0, Volatility(nil, 20))
}

func TestVolatilityOfConstantSequenceIsZero(t *testing.T) {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 100
	}
	require.Equal(t, 0.0, Volatility(prices, 20))
}

func TestVolatilityKnownValue(t *testing.T) {
	// Population stddev of [2,4,4,4,5,5,7,9] is exactly 2.
	prices := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	require.InDelta(t, 2.0, Volatility(prices, 8), 1e-9)
}

func TestSupportResistanceDetectsZigzagLevels(t *testing.T) {
	// 2-wide windows around a valley at 1 and a peak at 9.
	prices := []float64{5, 4, 1, 4, 5, 6, 7, 9, 7, 6, 5}
	supports, resistances := SupportResistance(prices, 2)

	require.NotEmpty(t, supports)
	require.NotEmpty(t, resistances)
	require.Contains(t, supports, 1.0)
	require.Contains(t, resistances, 9.0)

	for _, level := range supports {
		require.Less(t, level, 4.0)
	}
	for _, level := range resistances {
		require.Greater(t, level, 7.0)
	}
}

func TestSupportResistanceTooShortSequence(t *testing.T) {
	supports, resistances := SupportResistance([]float64{1, 2, 3}, 20)
	require.Empty(t, supports)
	require.Empty(t, resistances)
}
