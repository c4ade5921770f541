// Package domain defines the core data structures shared by the monitoring
// and trading components.
package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Pair is a tradable instrument pair.
type Pair struct {
	// Base is the base instrument symbol.
	Base string
	// Quote is the quote instrument symbol.
	Quote string
}

// String returns the underscore-separated representation, e.g. "BTC_USDT".
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.Base, p.Quote)
}

// Symbol returns the concatenated exchange symbol, e.g. "BTCUSDT".
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.Base, p.Quote)
}

// PairFromString parses a "BASE_QUOTE" string into a Pair.
func PairFromString(s string) (Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, errors.Errorf("invalid pair format %q, expected BASE_QUOTE", s)
	}
	return Pair{Base: parts[0], Quote: parts[1]}, nil
}

// PairConfig is a configured trading pair. Immutable after configuration load.
type PairConfig struct {
	Pair    Pair
	Enabled bool
}
