package sarima

import "math"

// Lag polynomials are stored as coefficient slices: p[i] multiplies B^i and
// p[0] is always 1.

// polyMul multiplies two lag polynomials.
func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// arPoly builds 1 - c1 B^s - c2 B^2s - ...
func arPoly(coeffs []float64, s int) []float64 {
	p := make([]float64, len(coeffs)*s+1)
	p[0] = 1
	for i, c := range coeffs {
		p[(i+1)*s] = -c
	}
	return p
}

// maPoly builds 1 + c1 B^s + c2 B^2s + ...
func maPoly(coeffs []float64, s int) []float64 {
	p := make([]float64, len(coeffs)*s+1)
	p[0] = 1
	for i, c := range coeffs {
		p[(i+1)*s] = c
	}
	return p
}

// diffPoly builds (1-B)^d (1-B^m)^D.
func diffPoly(d, sd, m int) []float64 {
	p := []float64{1}
	for i := 0; i < d; i++ {
		p = polyMul(p, []float64{1, -1})
	}
	for i := 0; i < sd; i++ {
		p = polyMul(p, arPoly([]float64{1}, m))
	}
	return p
}

// applyPoly filters x through p, returning p(B) x_t for every t where all
// lags are available. The result is shorter than x by len(p)-1.
func applyPoly(p, x []float64) []float64 {
	lag := len(p) - 1
	if len(x) <= lag {
		return nil
	}
	out := make([]float64, len(x)-lag)
	for t := lag; t < len(x); t++ {
		v := 0.0
		for i, c := range p {
			if c != 0 {
				v += c * x[t-i]
			}
		}
		out[t-lag] = v
	}
	return out
}

// constrainStationary maps unconstrained reals to the coefficients of a
// stationary AR polynomial. Each value is squashed to a partial
// autocorrelation in (-1, 1) and the Durbin-Levinson recursion turns the
// partial autocorrelations into AR coefficients.
func constrainStationary(u []float64) []float64 {
	n := len(u)
	if n == 0 {
		return nil
	}
	prev := make([]float64, 0, n)
	cur := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		r := u[k] / math.Sqrt(1+u[k]*u[k])
		cur = cur[:0]
		for i := 0; i < k; i++ {
			cur = append(cur, prev[i]-r*prev[k-1-i])
		}
		cur = append(cur, r)
		prev, cur = cur, prev
	}
	out := make([]float64, n)
	copy(out, prev)
	return out
}

// unconstrainPartial is the inverse of the squashing step for a single
// partial autocorrelation.
func unconstrainPartial(r float64) float64 {
	const limit = 0.99
	if r > limit {
		r = limit
	}
	if r < -limit {
		r = -limit
	}
	return r / math.Sqrt(1-r*r)
}
