// Package config loads and validates the sentinel configuration from YAML.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"crypto-market-sentinel/internal/domain"
)

// AlertThresholds bound the conditions that raise market alerts.
type AlertThresholds struct {
	PriceChange  decimal.Decimal
	VolumeSpike  decimal.Decimal
	LowLiquidity decimal.Decimal
}

// Limits are the trading guard rails consulted by the decision engine.
type Limits struct {
	MaxDailyTrades int
	MaxDrawdown    decimal.Decimal
	MinLiquidity   decimal.Decimal
	MaxVolatility  float64
	MaxSpread      decimal.Decimal
}

// Monitoring holds fetch cadence and indicator parameters.
type Monitoring struct {
	UpdateInterval   time.Duration
	DecisionInterval time.Duration
	EMAPeriods       []int
	RSIPeriod        int
	RSIOversold      float64
	RSIOverbought    float64
	BollingerPeriod  int
	BollingerStdDev  float64
	ATRPeriod        int
	VolatilityPeriod int
	SRWindow         int
	VolumeThreshold  decimal.Decimal
	AlertThresholds  AlertThresholds
	Debug            bool
}

// Redis is the persistent store connection configuration.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Config is the immutable configuration for one sentinel process.
type Config struct {
	Platform   string
	Redis      Redis
	Pairs      []domain.PairConfig
	Limits     Limits
	Risk       domain.RiskConfig
	Monitoring Monitoring
}

// EnabledPairs returns the pairs that should be monitored and traded.
func (c Config) EnabledPairs() []domain.Pair {
	pairs := make([]domain.Pair, 0, len(c.Pairs))
	for _, pc := range c.Pairs {
		if pc.Enabled {
			pairs = append(pairs, pc.Pair)
		}
	}
	return pairs
}

type yamlAlertThresholds struct {
	PriceChange  string `yaml:"price_change"`
	VolumeSpike  string `yaml:"volume_spike"`
	LowLiquidity string `yaml:"low_liquidity"`
}

type yamlPair struct {
	Pair    string `yaml:"pair"`
	Enabled bool   `yaml:"enabled"`
}

type yamlConfig struct {
	Platform string `yaml:"platform"`
	Redis    struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Pairs  []yamlPair `yaml:"pairs"`
	Limits struct {
		MaxDailyTrades int     `yaml:"max_daily_trades"`
		MaxDrawdown    string  `yaml:"max_drawdown"`
		MinLiquidity   string  `yaml:"min_liquidity"`
		MaxVolatility  float64 `yaml:"max_volatility"`
		MaxSpread      string  `yaml:"max_spread"`
	} `yaml:"limits"`
	Risk struct {
		MaxPositionPercentage string `yaml:"max_position_percentage"`
		MaxLeverage           string `yaml:"max_leverage"`
		TargetDailyReturn     string `yaml:"target_daily_return"`
		StopLossPercentage    string `yaml:"stop_loss_percentage"`
		DailyLossLimit        string `yaml:"daily_loss_limit"`
	} `yaml:"risk"`
	Monitoring struct {
		UpdateInterval   time.Duration       `yaml:"update_interval"`
		DecisionInterval time.Duration       `yaml:"decision_interval"`
		EMAPeriods       []int               `yaml:"ema_periods"`
		RSIPeriod        int                 `yaml:"rsi_period"`
		RSIOversold      float64             `yaml:"rsi_oversold"`
		RSIOverbought    float64             `yaml:"rsi_overbought"`
		BollingerPeriod  int                 `yaml:"bollinger_period"`
		BollingerStdDev  float64             `yaml:"bollinger_std_dev"`
		ATRPeriod        int                 `yaml:"atr_period"`
		VolatilityPeriod int                 `yaml:"volatility_period"`
		SRWindow         int                 `yaml:"sr_window"`
		VolumeThreshold  string              `yaml:"volume_threshold"`
		AlertThresholds  yamlAlertThresholds `yaml:"alert_thresholds"`
		Debug            bool                `yaml:"debug"`
	} `yaml:"monitoring"`
}

// Get parses the --config flag and loads the configuration.
func Get() (Config, error) {
	path := flag.String("config", "config.yaml", "path to yaml config")
	flag.Parse()
	return Load(*path)
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return Config{}, errors.Wrap(err, "parse yaml config")
	}

	return fromYaml(yc)
}

func fromYaml(yc yamlConfig) (Config, error) {
	cfg := Config{Platform: yc.Platform}

	switch cfg.Platform {
	case "binance", "bybit", "simulate":
	case "":
		return Config{}, errors.New("'platform' is required (binance, bybit or simulate)")
	default:
		return Config{}, errors.Errorf("unsupported platform %q", cfg.Platform)
	}

	cfg.Redis = Redis(yc.Redis)

	if len(yc.Pairs) == 0 {
		return Config{}, errors.New("at least one trading pair must be configured")
	}
	for _, yp := range yc.Pairs {
		pair, err := domain.PairFromString(yp.Pair)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect 'pair' param in yaml config")
		}
		cfg.Pairs = append(cfg.Pairs, domain.PairConfig{Pair: pair, Enabled: yp.Enabled})
	}

	var err error
	if cfg.Limits.MaxDrawdown, err = parseDecimal(yc.Limits.MaxDrawdown, "limits.max_drawdown", "0.1"); err != nil {
		return Config{}, err
	}
	if cfg.Limits.MinLiquidity, err = parseDecimal(yc.Limits.MinLiquidity, "limits.min_liquidity", "0"); err != nil {
		return Config{}, err
	}
	if cfg.Limits.MaxSpread, err = parseDecimal(yc.Limits.MaxSpread, "limits.max_spread", "0.05"); err != nil {
		return Config{}, err
	}
	cfg.Limits.MaxDailyTrades = yc.Limits.MaxDailyTrades
	if cfg.Limits.MaxDailyTrades <= 0 {
		cfg.Limits.MaxDailyTrades = 10
	}
	cfg.Limits.MaxVolatility = yc.Limits.MaxVolatility
	if cfg.Limits.MaxVolatility <= 0 {
		return Config{}, errors.New("limits.max_volatility must be positive")
	}

	if cfg.Risk.MaxPositionPercentage, err = parseDecimal(yc.Risk.MaxPositionPercentage, "risk.max_position_percentage", "0.01"); err != nil {
		return Config{}, err
	}
	if cfg.Risk.MaxLeverage, err = parseDecimal(yc.Risk.MaxLeverage, "risk.max_leverage", "1"); err != nil {
		return Config{}, err
	}
	if cfg.Risk.TargetDailyReturn, err = parseDecimal(yc.Risk.TargetDailyReturn, "risk.target_daily_return", "0.02"); err != nil {
		return Config{}, err
	}
	if cfg.Risk.StopLossPercentage, err = parseDecimal(yc.Risk.StopLossPercentage, "risk.stop_loss_percentage", "0.05"); err != nil {
		return Config{}, err
	}
	if cfg.Risk.DailyLossLimit, err = parseDecimal(yc.Risk.DailyLossLimit, "risk.daily_loss_limit", "0.05"); err != nil {
		return Config{}, err
	}
	if err := cfg.Risk.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid risk config")
	}

	m := &cfg.Monitoring
	m.UpdateInterval = yc.Monitoring.UpdateInterval
	if m.UpdateInterval <= 0 {
		m.UpdateInterval = 30 * time.Second
	}
	m.DecisionInterval = yc.Monitoring.DecisionInterval
	if m.DecisionInterval <= 0 {
		m.DecisionInterval = time.Minute
	}
	m.EMAPeriods = yc.Monitoring.EMAPeriods
	if len(m.EMAPeriods) == 0 {
		m.EMAPeriods = []int{9, 21, 50}
	}
	m.RSIPeriod = defaultInt(yc.Monitoring.RSIPeriod, 14)
	m.RSIOversold = defaultFloat(yc.Monitoring.RSIOversold, 30)
	m.RSIOverbought = defaultFloat(yc.Monitoring.RSIOverbought, 70)
	m.BollingerPeriod = defaultInt(yc.Monitoring.BollingerPeriod, 20)
	m.BollingerStdDev = defaultFloat(yc.Monitoring.BollingerStdDev, 2)
	m.ATRPeriod = defaultInt(yc.Monitoring.ATRPeriod, 14)
	m.VolatilityPeriod = defaultInt(yc.Monitoring.VolatilityPeriod, 20)
	m.SRWindow = defaultInt(yc.Monitoring.SRWindow, 20)
	m.Debug = yc.Monitoring.Debug
	if m.VolumeThreshold, err = parseDecimal(yc.Monitoring.VolumeThreshold, "monitoring.volume_threshold", "1000000"); err != nil {
		return Config{}, err
	}
	if m.AlertThresholds.PriceChange, err = parseDecimal(yc.Monitoring.AlertThresholds.PriceChange, "monitoring.alert_thresholds.price_change", "10"); err != nil {
		return Config{}, err
	}
	if m.AlertThresholds.VolumeSpike, err = parseDecimal(yc.Monitoring.AlertThresholds.VolumeSpike, "monitoring.alert_thresholds.volume_spike", "3"); err != nil {
		return Config{}, err
	}
	if m.AlertThresholds.LowLiquidity, err = parseDecimal(yc.Monitoring.AlertThresholds.LowLiquidity, "monitoring.alert_thresholds.low_liquidity", "100000"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseDecimal(raw, name, fallback string) (decimal.Decimal, error) {
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "incorrect '%s' param in yaml config", name)
	}
	return d, nil
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultFloat(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
