// Package indicators provides technical analysis indicators (EMA, RSI,
// Bollinger Bands, ATR, volatility, support/resistance).
//
// All functions are pure: they take a history slice and a period and return
// a deterministic result. Insufficient data is never an error; each function
// falls back to a documented neutral value instead so that a freshly started
// monitor produces usable snapshots from the first tick.
package indicators

import "math"

// EMA calculates the Exponential Moving Average for the given period.
//
// The recurrence is seeded with prices[0] and applied across the entire
// available sequence, not just the trailing period window. With fewer than
// period samples the last price is returned verbatim.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	k := 2.0 / float64(period+1)
	ema := prices[0]
	for _, price := range prices[1:] {
		ema = price*k + ema*(1-k)
	}
	return ema
}

// RSI calculates the Relative Strength Index for the given period using
// Wilder smoothing. With fewer than period+1 samples the neutral value 50 is
// returned. When the smoothed average loss reaches exactly zero the result
// is pinned to 100 (pure uptrend).
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain = (avgGain*float64(period-1) + delta) / float64(period)
			avgLoss = avgLoss * float64(period-1) / float64(period)
		} else {
			avgGain = avgGain * float64(period-1) / float64(period)
			avgLoss = (avgLoss*float64(period-1) - delta) / float64(period)
		}
	}

	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// Bands is the result of a Bollinger Bands computation.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands computes a mean +/- stdDevMultiplier*stddev envelope over
// the last period prices. The standard deviation is the population one
// (divide by period). With fewer than period samples all three bands equal
// the last price.
func BollingerBands(prices []float64, period int, stdDevMultiplier float64) Bands {
	if len(prices) == 0 {
		return Bands{}
	}
	if len(prices) < period {
		last := prices[len(prices)-1]
		return Bands{Upper: last, Middle: last, Lower: last}
	}

	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}
	middle := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - middle
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  middle + stdDevMultiplier*stddev,
		Middle: middle,
		Lower:  middle - stdDevMultiplier*stddev,
	}
}

// ATR calculates the Average True Range. The true range at index 0 is
// high-low; later indexes include gaps versus the previous close. The
// smoothing divisor is always period, even while fewer than period true
// ranges have accumulated. With fewer than 2 samples the result is 0.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) < 2 {
		return 0
	}

	trueRanges := make([]float64, len(highs))
	trueRanges[0] = highs[0] - lows[0]
	for i := 1; i < len(highs); i++ {
		tr := highs[i] - lows[i]
		if hc := math.Abs(highs[i] - closes[i-1]); hc > tr {
			tr = hc
		}
		if lc := math.Abs(lows[i] - closes[i-1]); lc > tr {
			tr = lc
		}
		trueRanges[i] = tr
	}

	atr := trueRanges[0]
	for _, tr := range trueRanges[1:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr
}

// Volatility returns the population standard deviation of the last period
// prices, or 0 when fewer than period samples are available.
func Volatility(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}

	window := prices[len(prices)-period:]

	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(period))
}

// SupportResistance scans for local extrema: a price is a support level when
// it sits strictly below the minimum of the window prices on both sides, and
// a resistance level when strictly above both sides' maxima. Returns the
// detected level values in sequence order.
func SupportResistance(prices []float64, window int) (supports, resistances []float64) {
	for i := window; i < len(prices)-window; i++ {
		leftMin, leftMax := minMax(prices[i-window : i])
		rightMin, rightMax := minMax(prices[i+1 : i+window+1])

		if prices[i] < leftMin && prices[i] < rightMin {
			supports = append(supports, prices[i])
		}
		if prices[i] > leftMax && prices[i] > rightMax {
			resistances = append(resistances, prices[i])
		}
	}
	return supports, resistances
}

func minMax(window []float64) (min, max float64) {
	min, max = window[0], window[0]
	for _, p := range window[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}
