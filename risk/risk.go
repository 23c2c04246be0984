// Package risk holds the per-analysis risk configuration: the account's
// starting balance and the dollar value of one R.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is matched by every *ConfigError.
var ErrInvalidConfig = errors.New("invalid risk config")

// ConfigError names the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Config is the account context for one analysis. RiskAmount is the dollar
// value of 1R.
type Config struct {
	InitialBalance float64
	RiskAmount     float64
}

// FromPercent derives a Config where 1R is pct percent of balance
// (pct = 1 means 1%).
func FromPercent(balance, pct float64) Config {
	return Config{
		InitialBalance: balance,
		RiskAmount:     balance * pct / 100,
	}
}

// Percent returns RiskAmount as a percentage of InitialBalance.
func (c Config) Percent() float64 {
	if c.InitialBalance <= 0 {
		return 0
	}
	return c.RiskAmount / c.InitialBalance * 100
}

// Validate rejects non-positive or non-finite values.
func (c Config) Validate() error {
	if !(c.InitialBalance > 0) || math.IsInf(c.InitialBalance, 0) {
		return &ConfigError{Field: "initial_balance", Reason: "must be positive"}
	}
	if !(c.RiskAmount > 0) || math.IsInf(c.RiskAmount, 0) {
		return &ConfigError{Field: "risk_amount", Reason: "must be positive"}
	}
	return nil
}

// PnL converts an R result into dollars.
func (c Config) PnL(r float64) float64 {
	return r * c.RiskAmount
}
