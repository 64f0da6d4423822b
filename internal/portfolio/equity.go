package portfolio

import (
	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ComputeEquity aligns the series on their common timestamps, blends per-asset
// returns with the normalized weights and compounds them from initialValue. The
// first aligned timestamp has no return, so the table starts at the second one.
func ComputeEquity(prices map[string]types.PriceSeries, weights types.WeightVector, initialValue float64) (types.PortfolioTable, error) {
	if initialValue <= 0 {
		return types.PortfolioTable{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"initial value must be positive, got %v", initialValue)
	}

	aligned := series.Align(prices)

	w, err := NormalizeWeights(aligned.Assets, weights)
	if err != nil {
		return types.PortfolioTable{}, err
	}

	returns := returnMatrix(aligned)
	table := types.PortfolioTable{Weights: toWeightVector(aligned.Assets, w)}

	if returns == nil {
		return table, nil
	}

	portReturns := mat.NewVecDense(returns.RawMatrix().Rows, nil)
	portReturns.MulVec(returns, mat.NewVecDense(len(w), w))

	table.Rows = make([]types.PortfolioRow, portReturns.Len())
	equity := initialValue

	for i := 0; i < portReturns.Len(); i++ {
		r := portReturns.AtVec(i)
		equity *= 1 + r
		table.Rows[i] = types.PortfolioRow{
			Time:        aligned.Times[i+1],
			PortReturn:  r,
			EquityCurve: equity,
		}
	}

	return table, nil
}

// returnMatrix builds a (periods x assets) matrix of simple returns in
// aligned.Assets column order. It returns nil when fewer than two timestamps
// survive alignment.
func returnMatrix(aligned series.Aligned) *mat.Dense {
	periods := aligned.Len() - 1
	if periods < 1 {
		return nil
	}

	m := mat.NewDense(periods, len(aligned.Assets), nil)

	for j, asset := range aligned.Assets {
		closes := aligned.Closes[asset]
		col := make([]float64, periods)
		floats.DivTo(col, closes[1:], closes[:periods])
		floats.AddConst(-1, col)
		m.SetCol(j, col)
	}

	return m
}
