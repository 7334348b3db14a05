// Package fit provides bounded one-parameter nonlinear least squares for the
// approach-curve models. The optimizer minimizes the residual sum of squares
// over an unconstrained variable u with the physical parameter recovered as
// lower + u², so the fit can never leave its physical domain.
package fit

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

// ErrDiverged is returned when the optimizer fails to converge or the model
// is not finite over the data. Callers report it as an unavailable quantity,
// not a fatal condition.
var ErrDiverged = errors.New("fit: optimizer did not converge")

// Model is a one-parameter curve model y = f(x; param).
type Model func(x, param float64) float64

// Result holds a converged fit.
type Result struct {
	Param    float64 // fitted parameter, ≥ the requested lower bound
	Residual float64 // residual sum of squares at the optimum
}

// residual start points for the bound transform; several deterministic
// restarts guard against the flat regions of the feedback models.
var seeds = []float64{0.05, 0.3, 1, 2, 4, 8}

// Curve fits model to (xs, ys) with the parameter constrained to
// [lower, +inf). At least two samples are required.
func Curve(model Model, xs, ys []float64, lower float64) (Result, error) {
	if len(xs) != len(ys) {
		return Result{}, errors.Errorf("fit: x has %d points, y has %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Result{}, errors.Errorf("fit: need at least 2 points, got %d", len(xs))
	}

	rss := func(param float64) float64 {
		sum := 0.0
		for i, x := range xs {
			r := model(x, param) - ys[i]
			sum += r * r
		}
		return sum
	}

	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			v := rss(lower + u[0]*u[0])
			if math.IsNaN(v) {
				// NaN poisons Nelder-Mead; treat as a very bad point so the
				// simplex retreats into the finite region.
				return math.Inf(1)
			}
			return v
		},
	}

	best := Result{Residual: math.Inf(1)}
	converged := false
	for _, u0 := range seeds {
		res, err := optimize.Minimize(problem, []float64{u0}, nil, &optimize.NelderMead{})
		if err != nil || res == nil {
			continue
		}
		if res.Status != optimize.GradientThreshold && res.Status != optimize.FunctionConvergence &&
			res.Status != optimize.StepConvergence && res.Status != optimize.Success {
			continue
		}
		param := lower + res.X[0]*res.X[0]
		v := rss(param)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		converged = true
		if v < best.Residual {
			best = Result{Param: param, Residual: v}
		}
	}
	if !converged {
		return Result{}, ErrDiverged
	}
	return best, nil
}
