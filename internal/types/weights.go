package types

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-analytics/pkg/errors"
)

// WeightVector maps an asset symbol to its raw allocation weight.
type WeightVector map[string]float64

// Assets returns the asset keys in sorted order.
func (w WeightVector) Assets() []string {
	assets := make([]string, 0, len(w))
	for asset := range w {
		assets = append(assets, asset)
	}

	sort.Strings(assets)

	return assets
}

// Sum returns the sum of all raw weights.
func (w WeightVector) Sum() float64 {
	sum := 0.0
	for _, weight := range w {
		sum += weight
	}

	return sum
}

// ParseWeightVector reads "AAPL:0.4,MSFT:0.6". Values are not validated beyond
// being numbers; normalization rejects negative ones.
func ParseWeightVector(raw string) (WeightVector, error) {
	weights := WeightVector{}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		asset, value, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(asset) == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidWeights, "weight %q is not ASSET:VALUE", pair)
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidWeights, err, "weight %q is not a number", pair)
		}

		weights[strings.TrimSpace(asset)] = w
	}

	return weights, nil
}
