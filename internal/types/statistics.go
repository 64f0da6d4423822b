package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MetricsBundle summarizes an equity curve and its period returns.
type MetricsBundle struct {
	// TotalReturn is equity_last / equity_first - 1.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// AnnualizedVolatility is the population std of returns scaled by sqrt(PeriodsPerYear).
	AnnualizedVolatility float64 `yaml:"volatility" json:"volatility"`
	// Sharpe is the annualized mean excess return over its std.
	Sharpe float64 `yaml:"sharpe" json:"sharpe"`
	// MaxDrawdown is the largest peak-to-trough decline as a non-positive fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// PeriodsPerYear is the compounding frequency inferred from timestamp spacing.
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year"`
}

// StrategyStats is a persisted summary of one strategy run over one symbol.
type StrategyStats struct {
	Symbol    string        `yaml:"symbol" json:"symbol"`
	Strategy  string        `yaml:"strategy" json:"strategy"`
	Timestamp time.Time     `yaml:"timestamp" json:"timestamp"`
	Start     time.Time     `yaml:"start" json:"start"`
	End       time.Time     `yaml:"end" json:"end"`
	Bars      int           `yaml:"bars" json:"bars"`
	Metrics   MetricsBundle `yaml:"metrics" json:"metrics"`
}

func WriteStrategyStats(path string, stats []StrategyStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write strategy stats to file: %w", err)
	}

	return nil
}
