package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	// Intervals are the bar intervals the provider can serve.
	Intervals []string `json:"intervals"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderYahoo: {
		Name:         string(provider.ProviderYahoo),
		DisplayName:  "Yahoo Finance",
		Description:  "Public chart API with intraday and daily OHLCV data for equities, ETFs and indices",
		RequiresAuth: false,
	},
	provider.ProviderPolygon: {
		Name:         string(provider.ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US stock market data provider with real-time and historical OHLCV data",
		RequiresAuth: true,
	},
	provider.ProviderBinance: {
		Name:         string(provider.ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with extensive market data for crypto trading pairs",
		RequiresAuth: false,
	},
	provider.ProviderFinnhub: {
		Name:         string(provider.ProviderFinnhub),
		DisplayName:  "Finnhub",
		Description:  "Stock quotes and candles; requires an API key",
		RequiresAuth: true,
	},
}

// GetSupportedProviders returns the sorted names of all supported providers.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	for _, t := range provider.ProviderType(providerName).Intervals() {
		info.Intervals = append(info.Intervals, string(t))
	}

	return info, nil
}

// GetProviderConfigSchema returns the JSON schema of the provider configuration.
func GetProviderConfigSchema() (string, error) {
	return config.ToJSONSchema(provider.Config{})
}
