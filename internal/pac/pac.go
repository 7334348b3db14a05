// Package pac processes probe approach curves: zero-distance calibration,
// current/distance normalization, and feedback-model fitting of the sheath
// ratio Rg and the dimensionless rate constant kappa.
package pac

import (
	"math"

	"github.com/pkg/errors"

	"secm-flux/internal/dataset"
	"secm-flux/internal/electrode"
	"secm-flux/internal/feedback"
	"secm-flux/internal/fit"
)

// Calibration selects how the zero tip-substrate distance is determined.
type Calibration int

const (
	// CalibrateFirstPoint makes the closest recorded point d = 0.
	CalibrateFirstPoint Calibration = iota
	// CalibrateDerivative drops everything before the |di/dx| peak (bent
	// electrode region) and then zeroes on the remaining minimum.
	CalibrateDerivative
	// CalibrateNone leaves the imported distances untouched.
	CalibrateNone
)

func (c Calibration) String() string {
	switch c {
	case CalibrateDerivative:
		return "first derivative analysis"
	case CalibrateNone:
		return "no calibration"
	default:
		return "first point with data"
	}
}

// fitTailMin is the smallest normalized distance retained for fitting; the
// approach region below it is dominated by contact artifacts.
const fitTailMin = 0.1

// Options configures one reshape pass.
type Options struct {
	Calibration Calibration

	Normalize       bool // derive L = d/a and I = i/iss
	UseExperimental bool // normalize with the measured iss instead of the model
	ExperimentalIss float64
	Electrode       electrode.Params

	FitRg    bool // estimate Rg from the negative-feedback model
	FitKappa bool // estimate kappa from the mixed-kinetics model
	Feedback bool // evaluate the pure feedback reference curves
}

// DefaultOptions returns the pass configuration matching a plain plot: first
// point calibration, no normalization, no fits.
func DefaultOptions() Options {
	return Options{Calibration: CalibrateFirstPoint}
}

// Result is the outcome of one reshape pass. Slice fields are nil when the
// corresponding toggle was off or the computation was unavailable.
type Result struct {
	Distances []float64 // calibrated distances, µm
	Currents  []float64 // currents, nA

	NormDistances []float64 // L = d/a
	NormCurrents  []float64 // I = i/iss over the same axis

	TheoreticalIss dataset.Quantity // nA
	Rg             dataset.Quantity // fitted estimate, Err on divergence
	Kappa          dataset.Quantity
	RateK          dataset.Quantity // k = 1e8·kappa·D/a, cm/s

	FitCurve      []float64 // mixed-kinetics model at the fitted kappa
	NegativeCurve []float64 // pure negative feedback at the active Rg
	PositiveCurve []float64 // pure positive feedback at the active Rg

	PointsOriginal int
	Points         int
}

// Process runs one reshape pass over the raw imported trace. The input is
// never mutated; repeated calls with the same options are idempotent.
func Process(raw dataset.Trace, opts Options) (Result, error) {
	if err := raw.Validate(); err != nil {
		return Result{}, err
	}
	res := Result{PointsOriginal: raw.Len()}

	tr := raw.StripLeadingNaN()
	if tr.Len() == 0 {
		return Result{}, errors.New("pac: trace contains no finite currents")
	}
	calibrate(&tr, opts.Calibration)
	res.Distances = tr.X
	res.Currents = tr.Y
	res.Points = tr.Len()

	if !opts.Normalize {
		res.TheoreticalIss = dataset.NotCalculated(nil)
		res.Rg = dataset.NotCalculated(nil)
		res.Kappa = dataset.NotCalculated(nil)
		res.RateK = dataset.NotCalculated(nil)
		return res, nil
	}

	normalize(&res, tr, opts)
	if res.NormDistances != nil {
		fitModels(&res, opts)
		referenceCurves(&res, opts)
	} else {
		res.Rg = dataset.NotCalculated(nil)
		res.Kappa = dataset.NotCalculated(nil)
		res.RateK = dataset.NotCalculated(nil)
	}
	return res, nil
}

// calibrate applies the zero-distance correction in place on the copy.
func calibrate(tr *dataset.Trace, mode Calibration) {
	if mode == CalibrateDerivative {
		deriv := gradient(tr.Y)
		peak := 0
		for i, v := range deriv {
			if math.Abs(v) > math.Abs(deriv[peak]) {
				peak = i
			}
		}
		tr.X = tr.X[peak:]
		tr.Y = tr.Y[peak:]
	}
	if mode != CalibrateNone {
		min := tr.X[0]
		for _, v := range tr.X {
			if v < min {
				min = v
			}
		}
		for i := range tr.X {
			tr.X[i] -= min
		}
	}
}

// normalize derives the dimensionless axes when the electrode parameters
// allow it; partial failures leave the raw arrays intact.
func normalize(res *Result, tr dataset.Trace, opts Options) {
	a := opts.Electrode.RadiusUM
	if a <= 0 {
		err := errors.New("pac: electrode radius required for normalization")
		res.TheoreticalIss = dataset.NotCalculated(err)
		return
	}

	src := electrode.IssTheoretical
	if opts.UseExperimental {
		src = electrode.IssExperimental
	}
	iss, err := electrode.Iss(src, opts.Electrode, opts.ExperimentalIss)
	if err != nil {
		res.TheoreticalIss = dataset.NotCalculated(err)
		return
	}
	if opts.UseExperimental {
		res.TheoreticalIss = dataset.NotCalculated(nil)
	} else {
		res.TheoreticalIss = dataset.Calculated(iss)
	}

	res.NormDistances = make([]float64, tr.Len())
	res.NormCurrents = make([]float64, tr.Len())
	for i := range tr.X {
		res.NormDistances[i] = tr.X[i] / a
		res.NormCurrents[i] = tr.Y[i] / iss
	}
}

// fitModels runs the requested Rg and kappa fits on the curve tail.
func fitModels(res *Result, opts Options) {
	res.Rg = dataset.NotCalculated(nil)
	res.Kappa = dataset.NotCalculated(nil)
	res.RateK = dataset.NotCalculated(nil)
	if !opts.FitRg && !opts.FitKappa {
		return
	}

	// Discard the contact-dominated approach region before fitting. Only
	// the fit sees the trimmed axes; the result keeps the full ones so all
	// exported columns stay aligned.
	l, i := tail(res.NormDistances, res.NormCurrents)
	if len(l) < 2 {
		err := errors.New("pac: too few points beyond L >= 0.1 to fit")
		if opts.FitRg {
			res.Rg = dataset.NotCalculated(err)
		}
		if opts.FitKappa {
			res.Kappa = dataset.NotCalculated(err)
		}
		return
	}

	if opts.FitRg {
		r, err := fit.Curve(func(x, rg float64) float64 {
			return feedback.Negative(x, rg)
		}, l, i, 1)
		if err != nil {
			res.Rg = dataset.NotCalculated(err)
		} else {
			res.Rg = dataset.Calculated(r.Param)
		}
	}

	if opts.FitKappa {
		rg, ok := activeRg(*res, opts)
		if !ok {
			res.Kappa = dataset.NotCalculated(errors.New("pac: no Rg available for kappa fit"))
			return
		}
		r, err := fit.Curve(func(x, kappa float64) float64 {
			return feedback.Mixed(x, rg, kappa)
		}, l, i, 0)
		if err != nil {
			res.Kappa = dataset.NotCalculated(err)
			return
		}
		res.Kappa = dataset.Calculated(r.Param)
		res.FitCurve = feedback.MixedCurve(res.NormDistances, rg, r.Param)

		// Heterogeneous rate constant in cm/s.
		if opts.Electrode.DiffusionM2S > 0 && opts.Electrode.RadiusUM > 0 {
			res.RateK = dataset.Calculated(1e8 * r.Param * opts.Electrode.DiffusionM2S / opts.Electrode.RadiusUM)
		} else {
			res.RateK = dataset.NotCalculated(errors.New("pac: diffusion coefficient required for rate constant"))
		}
	}
}

// referenceCurves evaluates the pure feedback cases over the normalized
// axis using the fitted Rg when available.
func referenceCurves(res *Result, opts Options) {
	if !opts.Feedback {
		return
	}
	rg, ok := activeRg(*res, opts)
	if !ok {
		return
	}
	res.NegativeCurve = feedback.NegativeCurve(res.NormDistances, rg)
	res.PositiveCurve = feedback.PositiveCurve(res.NormDistances, rg)
}

// activeRg resolves the sheath ratio in effect: the fitted estimate when the
// Rg fit ran and converged, the user-supplied value otherwise.
func activeRg(res Result, opts Options) (float64, bool) {
	if opts.FitRg && res.Rg.OK {
		return res.Rg.Value, true
	}
	if opts.Electrode.Rg > 0 {
		return opts.Electrode.Rg, true
	}
	return 0, false
}

// tail returns the samples with L >= fitTailMin.
func tail(l, i []float64) ([]float64, []float64) {
	start := 0
	for start < len(l) && l[start] < fitTailMin {
		start++
	}
	return append([]float64(nil), l[start:]...), append([]float64(nil), i[start:]...)
}

// gradient is the second-order central difference, matching numpy.gradient.
func gradient(y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = y[1] - y[0]
	out[n-1] = y[n-1] - y[n-2]
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / 2
	}
	return out
}
