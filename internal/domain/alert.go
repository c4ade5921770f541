package domain

// AlertType is a closed set of market alert kinds.
type AlertType int

const (
	// AlertPriceChange fires when the absolute 24h price change exceeds the
	// configured threshold.
	AlertPriceChange AlertType = iota
	// AlertVolumeSpike fires when 24h volume exceeds the spike multiple of
	// the volume threshold.
	AlertVolumeSpike
	// AlertLowLiquidity fires when liquidity drops below the configured floor.
	AlertLowLiquidity
)

// String returns the persisted wire name of the alert type.
func (t AlertType) String() string {
	switch t {
	case AlertPriceChange:
		return "PRICE_CHANGE"
	case AlertVolumeSpike:
		return "VOLUME_SPIKE"
	case AlertLowLiquidity:
		return "LOW_LIQUIDITY"
	default:
		return "UNKNOWN"
	}
}

// AlertSeverity classifies how urgent an alert is.
type AlertSeverity int

const (
	SeverityMedium AlertSeverity = iota
	SeverityHigh
)

// String returns the persisted wire name of the severity.
func (s AlertSeverity) String() string {
	if s == SeverityHigh {
		return "HIGH"
	}
	return "MEDIUM"
}

// Alert is an append-only record produced by threshold evaluation. Alerts are
// never mutated after creation; Timestamp is the evaluation time.
type Alert struct {
	Type      AlertType     `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Pair      string        `json:"pair"`
	Message   string        `json:"message"`
	Timestamp int64         `json:"timestamp"` // unix milliseconds
}
