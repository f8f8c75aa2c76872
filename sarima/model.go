package sarima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/tehqua/crypto-predict/stats"
	"github.com/tehqua/crypto-predict/timeseries"
)

// ErrModelFit is returned when a model cannot be estimated or produces a
// degenerate forecast. No partial result accompanies it.
var ErrModelFit = errors.New("model fit failed")

// penalty replaces non-finite objective values so the simplex moves away.
const penalty = 1e300

// FitOptions configures estimation.
type FitOptions struct {
	MaxIterations int     // Nelder-Mead major iterations (default: 500)
	Tolerance     float64 // Objective convergence tolerance (default: 1e-10)
}

// DefaultFitOptions returns the default estimation settings.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations: 500,
		Tolerance:     1e-10,
	}
}

// Model is a fitted SARIMA model. It is produced by Fit and is read-only
// afterwards.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64   // Mean of the differenced series
	Variance  float64   // Innovation variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64
	NObs      int // Observations entering the conditional likelihood
	Evals     int // Objective evaluations spent by the optimizer

	// Degenerate is set when the differenced series has no variation. The
	// model then continues the series deterministically with zero variance.
	Degenerate bool

	data      *timeseries.Series
	arFull    []float64 // AR polynomial including differencing
	maFull    []float64 // Seasonal times non-seasonal MA polynomial
	constant  float64   // Intercept times the stationary AR polynomial at B=1
	residuals []float64 // Aligned with data; zero outside the likelihood window
}

// Fit estimates a SARIMA model on series by conditional sum of squares, which
// is the conditional Gaussian maximum likelihood with the variance
// concentrated out. AR and MA polynomials are kept stationary and invertible
// by optimizing over unconstrained values mapped through partial
// autocorrelations. The same inputs always produce the same model.
//
// Fit fails with ErrModelFit when the series is too short for the order, has
// no variation, or the likelihood is not finite.
func Fit(series *timeseries.Series, order Order, opts FitOptions) (*Model, error) {
	return FitContext(context.Background(), series, order, opts)
}

// FitContext is Fit bounded by ctx. The optimizer stops at the next iteration
// once ctx is done and the fit fails with ErrModelFit.
func FitContext(ctx context.Context, series *timeseries.Series, order Order, opts FitOptions) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultFitOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultFitOptions().Tolerance
	}

	n := series.Len()
	if minLen := order.minLength(); n < minLen {
		return nil, fmt.Errorf("%w: %s needs at least %d observations, got %d", ErrModelFit, order, minLen, n)
	}
	for _, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: series contains non-finite values", ErrModelFit)
		}
	}
	if series.IsConstant() {
		return nil, fmt.Errorf("%w: series has no variation", ErrModelFit)
	}

	m := &Model{
		Order:     order,
		ARCoeffs:  make([]float64, order.P),
		MACoeffs:  make([]float64, order.Q),
		SARCoeffs: make([]float64, order.SP),
		SMACoeffs: make([]float64, order.SQ),
		data:      series.Copy(),
	}

	diff := diffPoly(order.D, order.SD, order.M)
	w := applyPoly(diff, m.data.Values)

	if isFlat(w, m.data) {
		m.fitDegenerate(diff, w)
		return m, nil
	}

	if err := m.fitCSS(ctx, diff, w, opts); err != nil {
		return nil, err
	}
	return m, nil
}

// isFlat reports whether w is constant up to rounding relative to the level
// of the original series.
func isFlat(w []float64, y *timeseries.Series) bool {
	if len(w) == 0 {
		return false
	}
	scale := math.Max(1, math.Max(math.Abs(y.Max()), math.Abs(y.Min())))
	return floats.Max(w)-floats.Min(w) <= 1e-10*scale
}

// fitDegenerate handles a differenced series without variation: every
// coefficient is zero and the series is continued exactly.
func (m *Model) fitDegenerate(diff, w []float64) {
	m.Degenerate = true
	m.Intercept = stat.Mean(w, nil)
	m.arFull = diff
	m.maFull = []float64{1}
	m.constant = m.Intercept
	m.residuals = make([]float64, m.data.Len())
	m.NObs = len(w)
	m.LogLik = math.Inf(1)
	m.AIC = math.Inf(-1)
	m.AICc = math.Inf(-1)
	m.BIC = math.Inf(-1)
}

// objective holds the pieces shared by every CSS evaluation.
type objective struct {
	order Order
	w     []float64
	mu    float64
	start int // First index of w entering the likelihood
}

// unpack maps the optimizer vector to model coefficients.
func (o *objective) unpack(x []float64) (ar, ma, sar, sma []float64) {
	p, q, sp := o.order.P, o.order.Q, o.order.SP
	ar = constrainStationary(x[:p])
	ma = negate(constrainStationary(x[p : p+q]))
	sar = constrainStationary(x[p+q : p+q+sp])
	sma = negate(constrainStationary(x[p+q+sp:]))
	return ar, ma, sar, sma
}

// polys returns the stationary AR and full MA polynomials for x.
func (o *objective) polys(x []float64) (arStat, maFull []float64) {
	ar, ma, sar, sma := o.unpack(x)
	arStat = polyMul(arPoly(ar, 1), arPoly(sar, o.order.M))
	maFull = polyMul(maPoly(ma, 1), maPoly(sma, o.order.M))
	return arStat, maFull
}

// residuals computes conditional residuals e_t for t >= start, treating
// residuals before the window as zero.
func (o *objective) residuals(arStat, maFull []float64) []float64 {
	e := make([]float64, len(o.w))
	for t := o.start; t < len(o.w); t++ {
		v := 0.0
		for i, c := range arStat {
			if c != 0 {
				v += c * (o.w[t-i] - o.mu)
			}
		}
		for j := 1; j < len(maFull) && j <= t; j++ {
			if maFull[j] != 0 {
				v -= maFull[j] * e[t-j]
			}
		}
		e[t] = v
	}
	return e
}

// mse is the minimized objective: the mean squared conditional residual.
func (o *objective) mse(x []float64) float64 {
	arStat, maFull := o.polys(x)
	e := o.residuals(arStat, maFull)
	sse := 0.0
	for _, v := range e[o.start:] {
		sse += v * v
	}
	val := sse / float64(len(o.w)-o.start)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return penalty
	}
	return val
}

// ctxConverger stops the optimizer once ctx is done.
type ctxConverger struct {
	optimize.Converger
	ctx context.Context
}

func (c *ctxConverger) Converge(loc *optimize.Location) optimize.Status {
	if c.ctx.Err() != nil {
		return optimize.RuntimeLimit
	}
	return c.Converger.Converged(loc)
}

// fitCSS fits the model using Conditional Sum of Squares estimation.
func (m *Model) fitCSS(ctx context.Context, diff, w []float64, opts FitOptions) error {
	order := m.Order
	obj := &objective{
		order: order,
		w:     w,
		start: order.P + order.SP*order.M,
	}
	if order.D+order.SD == 0 {
		obj.mu = stat.Mean(w, nil)
	}
	if len(w)-obj.start < order.numParams()+2 {
		return fmt.Errorf("%w: %d usable observations after differencing", ErrModelFit, len(w)-obj.start)
	}

	x0 := m.initialValues(w)
	best := x0
	evals := 0
	if len(x0) > 0 {
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				evals++
				return obj.mse(x)
			},
		}
		settings := &optimize.Settings{
			MajorIterations: opts.MaxIterations,
			Converger: &ctxConverger{
				ctx: ctx,
				Converger: &optimize.FunctionConverge{
					Absolute:   opts.Tolerance,
					Relative:   opts.Tolerance,
					Iterations: 50,
				},
			},
		}
		result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %v", ErrModelFit, ctxErr)
		}
		if result == nil {
			return fmt.Errorf("%w: optimizer: %v", ErrModelFit, err)
		}
		if result.F <= obj.mse(x0) {
			best = result.X
		}
	}

	sse := 0.0
	arStat, maFull := obj.polys(best)
	e := obj.residuals(arStat, maFull)
	for _, v := range e[obj.start:] {
		sse += v * v
	}
	nEff := len(w) - obj.start
	variance := sse / float64(nEff)

	logLik := -float64(nEff) / 2 * (math.Log(2*math.Pi*variance) + 1)
	if math.IsNaN(logLik) || math.IsInf(logLik, 0) {
		return fmt.Errorf("%w: likelihood is not finite", ErrModelFit)
	}

	m.ARCoeffs, m.MACoeffs, m.SARCoeffs, m.SMACoeffs = obj.unpack(best)
	m.Intercept = obj.mu
	m.Variance = variance
	m.NObs = nEff
	m.Evals = evals
	m.arFull = polyMul(arStat, diff)
	m.maFull = maFull
	m.constant = obj.mu * floats.Sum(arStat)

	// Residuals on the original index: w[k] lines up with y[k+len(diff)-1].
	offset := len(diff) - 1
	m.residuals = make([]float64, m.data.Len())
	for k := obj.start; k < len(e); k++ {
		m.residuals[k+offset] = e[k]
	}

	nParams := order.numParams() + 1
	if order.D+order.SD == 0 {
		nParams++
	}
	ic := stats.CalculateIC(logLik, nEff, nParams)
	m.LogLik = ic.LogLik
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
	return nil
}

// initialValues starts AR terms at half the sample autocorrelation at their
// lag and MA terms at 0.1.
func (m *Model) initialValues(w []float64) []float64 {
	order := m.Order
	x := make([]float64, order.numParams())

	maxLag := 1
	if order.SP > 0 {
		maxLag = order.M
	}
	acf := stats.ACF(timeseries.New(w), maxLag)

	if order.P > 0 && len(acf) > 1 {
		x[0] = unconstrainPartial(0.5 * acf[1])
	}
	for i := 0; i < order.Q; i++ {
		x[order.P+i] = unconstrainPartial(-0.1)
	}
	if order.SP > 0 && len(acf) > order.M {
		x[order.P+order.Q] = unconstrainPartial(0.5 * acf[order.M])
	}
	for i := 0; i < order.SQ; i++ {
		x[order.P+order.Q+order.SP+i] = unconstrainPartial(-0.1)
	}
	return x
}

func negate(v []float64) []float64 {
	for i := range v {
		v[i] = -v[i]
	}
	return v
}

// Residuals returns the in-sample conditional residuals, aligned with the
// fitted series. Entries outside the likelihood window are zero.
func (m *Model) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// Summary represents a model summary.
type Summary struct {
	Order        Order
	ARCoeffs     []float64
	MACoeffs     []float64
	SARCoeffs    []float64
	SMACoeffs    []float64
	Intercept    float64
	Variance     float64
	AIC          float64
	AICc         float64
	BIC          float64
	LogLik       float64
	NObs         int
	Degenerate   bool
	LjungBox     *stats.LjungBoxResult     // nil when residuals are too short or constant
	DurbinWatson *stats.DurbinWatsonResult // nil when residuals are all zero
}

// Summary returns a summary of the fitted model with residual diagnostics.
func (m *Model) Summary() *Summary {
	window := m.residuals[len(m.residuals)-m.NObs:]
	residSeries := timeseries.New(window)

	return &Summary{
		Order:        m.Order,
		ARCoeffs:     m.ARCoeffs,
		MACoeffs:     m.MACoeffs,
		SARCoeffs:    m.SARCoeffs,
		SMACoeffs:    m.SMACoeffs,
		Intercept:    m.Intercept,
		Variance:     m.Variance,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LogLik:       m.LogLik,
		NObs:         m.NObs,
		Degenerate:   m.Degenerate,
		LjungBox:     stats.LjungBox(residSeries, 10, m.Order.numParams()),
		DurbinWatson: stats.DurbinWatson(window),
	}
}
