package forecast

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxCondition bounds the condition number of XᵀX before the design is
// treated as singular.
const maxCondition = 1e12

// OLSModel is an ordinary least squares fit with an intercept.
type OLSModel struct {
	// Coef holds the intercept followed by one coefficient per feature.
	Coef []float64
	// Sigma2 is the residual variance RSS/(n-p).
	Sigma2 float64
	NObs   int
	DF     int
	R2     optional.Option[float64]

	xtxInv *mat.SymDense
}

// FitOLS regresses y on the columns of x plus an intercept.
func FitOLS(x [][]float64, y []float64) (*OLSModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, errors.Newf(errors.ErrCodeModelFit, "design has %d rows and target has %d", n, len(y))
	}

	p := len(x[0]) + 1
	if n <= p {
		return nil, errors.Newf(errors.ErrCodeModelFit, "need more than %d observations, got %d", p, n)
	}

	design := mat.NewDense(n, p, nil)
	for i, row := range x {
		design.Set(i, 0, 1)

		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}

	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.SymDense
	xtx.SymOuterK(1, design.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok || chol.Cond() > maxCondition {
		return nil, errors.New(errors.ErrCodeSingularMatrix, "design matrix is singular")
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), target)

	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, errors.Wrap(errors.ErrCodeSingularMatrix, "failed to solve normal equations", err)
		}
	}

	inv := mat.NewSymDense(p, nil)
	if err := chol.InverseTo(inv); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, errors.Wrap(errors.ErrCodeSingularMatrix, "failed to invert XᵀX", err)
		}
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	rss := 0.0
	for i := 0; i < n; i++ {
		e := y[i] - fitted.AtVec(i)
		rss += e * e
	}

	model := &OLSModel{
		Coef:   append([]float64(nil), beta.RawVector().Data...),
		Sigma2: rss / float64(n-p),
		NObs:   n,
		DF:     n - p,
		R2:     optional.None[float64](),
		xtxInv: inv,
	}

	if r2 := stat.RSquaredFrom(fitted.RawVector().Data, y, nil); !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		model.R2 = optional.Some(r2)
	}

	return model, nil
}

// Predict returns the fitted value for one feature row.
func (m *OLSModel) Predict(x []float64) float64 {
	return mat.Dot(mat.NewVecDense(len(m.Coef), m.Coef), m.withIntercept(x))
}

// PredictionInterval returns the point prediction and the (1-alpha) interval
// for a new observation:
//
//	ŷ ± t_{1-alpha/2, n-p} · sqrt(s² (1 + x₀ᵀ(XᵀX)⁻¹x₀))
func (m *OLSModel) PredictionInterval(x []float64, alpha float64) (mean, lower, upper float64) {
	x0 := m.withIntercept(x)
	mean = mat.Dot(mat.NewVecDense(len(m.Coef), m.Coef), x0)

	se := math.Sqrt(m.Sigma2 * (1 + mat.Inner(x0, m.xtxInv, x0)))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.DF)}.Quantile(1 - alpha/2)

	return mean, mean - t*se, mean + t*se
}

func (m *OLSModel) withIntercept(x []float64) *mat.VecDense {
	v := make([]float64, 0, len(x)+1)
	v = append(v, 1)
	v = append(v, x...)

	return mat.NewVecDense(len(v), v)
}
