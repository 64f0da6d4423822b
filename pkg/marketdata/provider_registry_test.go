package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"binance", "finnhub", "polygon", "yahoo"}, GetSupportedProviders())
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo() {
	tests := []struct {
		name         string
		displayName  string
		requiresAuth bool
	}{
		{"yahoo", "Yahoo Finance", false},
		{"polygon", "Polygon.io", true},
		{"binance", "Binance", false},
		{"finnhub", "Finnhub", true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			info, err := GetProviderInfo(tc.name)
			suite.NoError(err)
			suite.Equal(tc.name, info.Name)
			suite.Equal(tc.displayName, info.DisplayName)
			suite.Equal(tc.requiresAuth, info.RequiresAuth)
			suite.NotEmpty(info.Description)
			suite.Contains(info.Intervals, "1d")
		})
	}
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfoIntervals() {
	yahoo, err := GetProviderInfo("yahoo")
	suite.Require().NoError(err)
	suite.NotContains(yahoo.Intervals, "4h")

	binance, err := GetProviderInfo("binance")
	suite.Require().NoError(err)
	suite.Contains(binance.Intervals, "4h")
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_InvalidProvider() {
	_, err := GetProviderInfo("invalid")

	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidProvider, errors.GetCode(err))
	suite.Contains(err.Error(), "unsupported provider")
}

func (suite *ProviderRegistryTestSuite) TestGetProviderConfigSchema() {
	schema, err := GetProviderConfigSchema()
	suite.Require().NoError(err)

	var parsed map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &parsed))

	properties, ok := parsed["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "type")
	suite.Contains(properties, "api_key")
}
