package portfolio

import (
	"math"

	"github.com/rxtech-lab/argo-analytics/internal/series"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ComputeRiskMetrics returns the Pearson correlation matrix of daily returns and a
// volatility table with each asset's annualized volatility plus a PORTFOLIO row
// computed as sqrt(wᵀ Σ w) on the annualized covariance matrix Σ with the same
// normalized weights as ComputeEquity. Sample (N-1) estimators are used for both
// so an all-identical portfolio has exactly the single-asset volatility.
func ComputeRiskMetrics(prices map[string]types.PriceSeries, weights types.WeightVector) (types.CorrelationMatrix, types.VolatilityTable, error) {
	aligned := series.Align(prices)

	w, err := NormalizeWeights(aligned.Assets, weights)
	if err != nil {
		return types.CorrelationMatrix{}, types.VolatilityTable{}, err
	}

	n := len(aligned.Assets)
	corr := types.CorrelationMatrix{Assets: aligned.Assets, Values: make([][]float64, n)}
	vols := types.VolatilityTable{Entries: make([]types.VolatilityEntry, 0, n+1)}

	returns := returnMatrix(aligned)
	if returns == nil || returns.RawMatrix().Rows < 2 {
		for i, asset := range aligned.Assets {
			corr.Values[i] = make([]float64, n)
			vols.Entries = append(vols.Entries, types.VolatilityEntry{Asset: asset})
		}

		vols.Entries = append(vols.Entries, types.VolatilityEntry{Asset: types.PortfolioRowName})

		return corr, vols, nil
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, returns, nil)

	var corrSym mat.SymDense
	stat.CorrelationMatrix(&corrSym, returns, nil)

	for i, asset := range aligned.Assets {
		corr.Values[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			// a constant-price asset has no defined correlation; report 0
			if c := corrSym.At(i, j); !math.IsNaN(c) {
				corr.Values[i][j] = c
			}
		}

		vols.Entries = append(vols.Entries, types.VolatilityEntry{
			Asset:      asset,
			Volatility: math.Sqrt(cov.At(i, i)) * math.Sqrt(TradingDaysPerYear),
		})
	}

	cov.ScaleSym(TradingDaysPerYear, &cov)

	wv := mat.NewVecDense(n, w)
	variance := mat.Inner(wv, &cov, wv)

	portVol := 0.0
	if variance > 0 {
		portVol = math.Sqrt(variance)
	}

	vols.Entries = append(vols.Entries, types.VolatilityEntry{Asset: types.PortfolioRowName, Volatility: portVol})

	return corr, vols, nil
}
