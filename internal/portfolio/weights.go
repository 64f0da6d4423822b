// Package portfolio blends aligned multi-asset price series into a weighted
// portfolio and derives correlation and volatility tables.
package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// TradingDaysPerYear annualizes daily portfolio statistics. It is fixed and does
// not adapt to the data frequency.
const TradingDaysPerYear = 252.0

// NormalizeWeights resolves one weight per asset by key and scales them to sum
// to 1. When the raw sum is not positive every asset gets 1/len(assets).
// Negative or non-finite weights, a priced asset without a weight, and a weight
// for an asset without prices are invalid.
func NormalizeWeights(assets []string, weights types.WeightVector) ([]float64, error) {
	if len(assets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWeights, "no assets selected")
	}

	known := make(map[string]bool, len(assets))
	for _, asset := range assets {
		known[asset] = true
	}

	for asset := range weights {
		if !known[asset] {
			return nil, errors.Newf(errors.ErrCodeInvalidWeights, "weight given for asset %s without prices", asset)
		}
	}

	raw := make([]float64, len(assets))
	sum := 0.0

	for i, asset := range assets {
		w, ok := weights[asset]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidWeights, "missing weight for asset %s", asset)
		}

		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.Newf(errors.ErrCodeInvalidWeights, "weight for asset %s must be a non-negative number, got %v", asset, w)
		}

		raw[i] = w
		sum += w
	}

	if sum <= 0 {
		equal := 1 / float64(len(assets))
		for i := range raw {
			raw[i] = equal
		}

		return raw, nil
	}

	for i := range raw {
		raw[i] /= sum
	}

	return raw, nil
}

// EqualWeights returns a vector giving every asset the same raw weight.
func EqualWeights(assets []string) types.WeightVector {
	weights := make(types.WeightVector, len(assets))
	for _, asset := range assets {
		weights[asset] = 1 / float64(len(assets))
	}

	return weights
}

func toWeightVector(assets []string, normalized []float64) types.WeightVector {
	out := make(types.WeightVector, len(assets))
	for i, asset := range assets {
		out[asset] = normalized[i]
	}

	return out
}
