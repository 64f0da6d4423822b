// Package config loads the YAML file shared by the CLI, the report scheduler and
// the dashboard server.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-analytics/internal/forecast"
	"github.com/rxtech-lab/argo-analytics/internal/portfolio"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/version"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// MomentumConfig configures the momentum strategy.
type MomentumConfig struct {
	Lookback int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,description=Bars between the compared closes,minimum=1,default=20" validate:"min=1"`
}

// CacheConfig configures the provider cache.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" json:"ttl" jsonschema:"title=TTL,description=How long fetched series are reused" validate:"gte=0"`
}

// Config is the application configuration.
type Config struct {
	// Version is the release the file was written for. Files from a newer minor release are rejected.
	Version      string             `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version"`
	Assets       []string           `yaml:"assets" json:"assets" jsonschema:"title=Assets,description=Symbols of the portfolio,minItems=1" validate:"required,min=1,unique,dive,required"`
	Weights      types.WeightVector `yaml:"weights" json:"weights" jsonschema:"title=Weights,description=Raw allocation weight per asset"`
	InitialValue float64            `yaml:"initial_value" json:"initial_value" jsonschema:"title=Initial Value,description=Starting value of every equity curve,exclusiveMinimum=0,default=100" validate:"gt=0"`
	Momentum     MomentumConfig     `yaml:"momentum" json:"momentum"`
	Forecast     forecast.Config    `yaml:"forecast" json:"forecast"`
	Provider     provider.Config    `yaml:"provider" json:"provider"`
	// DataPath is the parquet file backing the candle store. Empty keeps candles in memory.
	DataPath  string      `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path"`
	ReportDir string      `yaml:"report_dir" json:"report_dir" jsonschema:"title=Report Directory,default=reports" validate:"required"`
	Schedule  string      `yaml:"schedule" json:"schedule" jsonschema:"title=Schedule,description=Cron spec of the report job,default=0 18 * * 1-5"`
	Cache     CacheConfig `yaml:"cache" json:"cache"`
	LogLevel  string      `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the three-asset AAPL/MSFT/KO setup.
func Default() Config {
	return Config{
		Version:      version.GetVersion(),
		Assets:       []string{"AAPL", "MSFT", "KO"},
		Weights:      types.WeightVector{"AAPL": 0.33, "MSFT": 0.33, "KO": 0.34},
		InitialValue: 100,
		Momentum:     MomentumConfig{Lookback: 20},
		Forecast:     forecast.DefaultConfig(),
		Provider:     provider.Config{Type: provider.ProviderYahoo, Timeout: 30 * time.Second},
		DataPath:     "data/candles.parquet",
		ReportDir:    "reports",
		Schedule:     "0 18 * * 1-5",
		Cache:        CacheConfig{TTL: 5 * time.Minute},
		LogLevel:     "info",
	}
}

// Validate checks the file version, field bounds, the provider and forecast sections, the cron
// schedule and that the weights resolve against the assets.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Version != "" {
		if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
			return err
		}
	}

	if err := c.Forecast.Validate(); err != nil {
		return err
	}

	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid schedule %q", c.Schedule)
		}
	}

	if len(c.Weights) > 0 {
		if _, err := portfolio.NormalizeWeights(c.Assets, c.Weights); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid weights", err)
		}
	}

	return nil
}

// PortfolioWeights returns the configured weights, or equal weights when none are set.
func (c Config) PortfolioWeights() types.WeightVector {
	if len(c.Weights) == 0 {
		return portfolio.EqualWeights(c.Assets)
	}

	return c.Weights
}

// Load reads a YAML file over the defaults and validates the result.
// ${VAR} references are expanded from the environment, so API keys can stay out of the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML over the defaults and validates the result. Sections that
// are present replace the defaults field by field.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	// A weights block replaces the default weights rather than merging into them.
	var probe struct {
		Assets  []string           `yaml:"assets"`
		Weights types.WeightVector `yaml:"weights"`
	}

	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if probe.Assets != nil || probe.Weights != nil {
		cfg.Weights = nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to write config %s", path)
	}

	return nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() (string, error) {
	return ToJSONSchema(Config{})
}
