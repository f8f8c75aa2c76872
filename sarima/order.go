package sarima

import (
	"errors"
	"fmt"
)

// DefaultPeriod is the seasonal period used when none is configured. It is
// not derived from the sampling interval.
const DefaultPeriod = 12

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// SeasonalOrder returns the (1,d,1)x(1,d,1,m) order used by the forecasting
// pipeline: the differencing order applies to both the regular and seasonal
// parts.
func SeasonalOrder(d, m int) Order {
	return Order{P: 1, D: d, Q: 1, SP: 1, SD: d, SQ: 1, M: m}
}

// String formats the order as SARIMA(p,d,q)(P,D,Q)[m].
func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// Validate checks that every component is non-negative and that a seasonal
// period is set whenever a seasonal component is used.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return errors.New("order components must be non-negative")
	}
	if o.hasSeasonal() && o.M < 2 {
		return fmt.Errorf("seasonal period must be at least 2, got %d", o.M)
	}
	return nil
}

func (o Order) hasSeasonal() bool {
	return o.SP > 0 || o.SD > 0 || o.SQ > 0
}

// minLength is the shortest series the order can be fitted on.
func (o Order) minLength() int {
	return o.P + o.Q + o.D + o.SP*o.M + o.SD*o.M + o.SQ*o.M + 20
}

// numParams is the number of ARMA coefficients.
func (o Order) numParams() int {
	return o.P + o.Q + o.SP + o.SQ
}
