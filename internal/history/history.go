// Package history maintains bounded per-pair rolling sequences of market
// samples used as input for indicator computation.
package history

import "sync"

// Sample is one fetch cycle's contribution to the rolling history.
type Sample struct {
	Price  float64
	High   float64
	Low    float64
	Volume float64
}

// Snapshot is an immutable copy of the four parallel sequences, newest last.
type Snapshot struct {
	Prices  []float64
	Highs   []float64
	Lows    []float64
	Volumes []float64
}

// Rolling holds four parallel insertion-ordered sequences for one pair.
// The sequences always have equal length, bounded by maxPeriod; the oldest
// elements are evicted first. An update (append plus truncate) is atomic
// with respect to readers.
type Rolling struct {
	mu        sync.RWMutex
	maxPeriod int
	prices    []float64
	highs     []float64
	lows      []float64
	volumes   []float64
}

// MaxPeriod returns the retention bound required to serve all configured
// indicator periods: the largest EMA period or twice the Bollinger period,
// whichever is greater.
func MaxPeriod(emaPeriods []int, bollingerPeriod int) int {
	max := 2 * bollingerPeriod
	for _, p := range emaPeriods {
		if p > max {
			max = p
		}
	}
	return max
}

// NewRolling creates an empty rolling history bounded to maxPeriod samples.
func NewRolling(maxPeriod int) *Rolling {
	return &Rolling{
		maxPeriod: maxPeriod,
		prices:    make([]float64, 0, maxPeriod),
		highs:     make([]float64, 0, maxPeriod),
		lows:      make([]float64, 0, maxPeriod),
		volumes:   make([]float64, 0, maxPeriod),
	}
}

// Update appends one sample to each sequence and evicts the oldest entries
// once the bound is exceeded, keeping all four sequences index-aligned.
func (r *Rolling) Update(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prices = append(r.prices, s.Price)
	r.highs = append(r.highs, s.High)
	r.lows = append(r.lows, s.Low)
	r.volumes = append(r.volumes, s.Volume)

	if excess := len(r.prices) - r.maxPeriod; excess > 0 {
		r.prices = r.prices[excess:]
		r.highs = r.highs[excess:]
		r.lows = r.lows[excess:]
		r.volumes = r.volumes[excess:]
	}
}

// Len returns the current sequence length.
func (r *Rolling) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prices)
}

// Snapshot returns an independent copy of all four sequences so that
// indicator computation never observes a partially updated set.
func (r *Rolling) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Snapshot{
		Prices:  append([]float64(nil), r.prices...),
		Highs:   append([]float64(nil), r.highs...),
		Lows:    append([]float64(nil), r.lows...),
		Volumes: append([]float64(nil), r.volumes...),
	}
}
