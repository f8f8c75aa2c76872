package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooShort is returned when a series has too few observations for a test.
	ErrTooShort = errors.New("series too short for test")
	// ErrSingular is returned when a test regression has collinear regressors
	// or fits the data exactly, so its t statistic is undefined.
	ErrSingular = errors.New("singular test regression")
)

// maxCondition bounds the condition number of the scaled normal equations.
const maxCondition = 1e10

// olsResult holds an ordinary least squares fit.
type olsResult struct {
	Coeffs    []float64
	StdErrors []float64
	Residuals []float64
	Sigma2    float64
	SSE       float64
	TSS       float64 // uncentered sum of squares of y
}

// olsRegression performs ordinary least squares regression of y on the rows of x.
// Columns are scaled to unit norm before the normal equations are factorized.
func olsRegression(x [][]float64, y []float64) (*olsResult, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, ErrTooShort
	}
	k := len(x[0])
	if n <= k {
		return nil, ErrTooShort
	}

	design := mat.NewDense(n, k, nil)
	for i, row := range x {
		design.SetRow(i, row)
	}

	scale := make([]float64, k)
	col := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(col, j, design)
		scale[j] = floats.Norm(col, 2)
		if scale[j] == 0 {
			return nil, ErrSingular
		}
		floats.Scale(1/scale[j], col)
		design.SetCol(j, col)
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, design.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, ErrSingular
	}
	if chol.Cond() > maxCondition {
		return nil, ErrSingular
	}

	yv := mat.NewVecDense(n, y)
	var xty, beta mat.VecDense
	xty.MulVec(design.T(), yv)
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, ErrSingular
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	residuals := make([]float64, n)
	sse, tss := 0.0, 0.0
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - fitted.AtVec(i)
		sse += residuals[i] * residuals[i]
		tss += y[i] * y[i]
	}
	sigma2 := sse / float64(n-k)

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, ErrSingular
	}

	coeffs := make([]float64, k)
	stdErrors := make([]float64, k)
	for j := 0; j < k; j++ {
		coeffs[j] = beta.AtVec(j) / scale[j]
		stdErrors[j] = math.Sqrt(sigma2*inv.At(j, j)) / scale[j]
	}

	return &olsResult{
		Coeffs:    coeffs,
		StdErrors: stdErrors,
		Residuals: residuals,
		Sigma2:    sigma2,
		SSE:       sse,
		TSS:       tss,
	}, nil
}

// exactFit is the residual share of the sum of squares below which a fit is
// treated as exact; what remains is rounding noise.
const exactFit = 1e-20

// tStat returns the t statistic of coefficient j, or ErrSingular when the
// regression left no residual variance.
func (r *olsResult) tStat(j int) (float64, error) {
	if r.SSE <= exactFit*r.TSS {
		return 0, ErrSingular
	}
	t := r.Coeffs[j] / r.StdErrors[j]
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, ErrSingular
	}
	return t, nil
}
