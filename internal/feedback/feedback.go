// Package feedback implements the closed-form approximations for the
// normalized SECM approach-curve current response. All models take the
// normalized tip-substrate distance L = d/a and the sheath ratio Rg and
// return the normalized current I = i/iss.
//
// The expressions are empirical fits; they assume Rg ≥ 1 and lose accuracy
// outside the parameter ranges of the original publications.
package feedback

import "math"

// Negative returns the normalized current over an insulating substrate
// (hindered-diffusion negative feedback).
func Negative(l, rg float64) float64 {
	scale := 2.08 / math.Pow(rg, 0.358)
	num := scale*(l-0.145/rg) + 1.585
	den := scale*(l+0.0023*rg) + 1.57 +
		math.Log(rg)/l +
		(2/(math.Pi*rg))*math.Log(1+(math.Pi*rg)/(2*l))
	return num / den
}

// posCoefficients returns the alpha/beta coefficients of the conductive-
// substrate model, functions of c = (2/π)·arccos(1/Rg). Note the last term
// of each coefficient is taken at 1-c², not (1-c)².
func posCoefficients(rg float64) (alpha, beta float64) {
	c := (2 / math.Pi) * math.Acos(1 / rg)
	alpha = math.Ln2 + math.Ln2*(1-c) - math.Ln2*(1-c*c)
	beta = 1 + 0.639*(1-c) - 0.186*(1-c*c)
	return alpha, beta
}

// positiveAt evaluates the conductive-substrate expression at an effective
// distance argument. Positive feedback uses L itself; the mixed-kinetics
// model shifts the argument by 1/kappa.
func positiveAt(arg, rg float64) float64 {
	alpha, beta := posCoefficients(rg)
	return alpha +
		(1/beta)*(math.Pi/(4*math.Atan(arg))) +
		(1-alpha-0.5/beta)*(2/math.Pi)*math.Atan(arg)
}

// Positive returns the normalized current over a conductive substrate
// (mediator-regeneration positive feedback).
func Positive(l, rg float64) float64 {
	return positiveAt(l, rg)
}

// Mixed returns the normalized current over a substrate with finite
// heterogeneous kinetics, blending the pure feedback cases through the
// dimensionless rate constant kappa.
func Mixed(l, rg, kappa float64) float64 {
	ins := Negative(l, rg)
	cond := positiveAt(l+1/kappa, rg)
	den1 := 1 + 2.47*l*kappa*math.Pow(rg, 0.31)
	den2 := 1 + math.Pow(l, 0.006*rg+0.113)*math.Pow(kappa, -0.0236*rg+0.91)
	return cond + (ins-1)/(den1*den2)
}

// NegativeCurve evaluates the negative-feedback model over a distance axis.
func NegativeCurve(l []float64, rg float64) []float64 {
	out := make([]float64, len(l))
	for i, v := range l {
		out[i] = Negative(v, rg)
	}
	return out
}

// PositiveCurve evaluates the positive-feedback model over a distance axis.
func PositiveCurve(l []float64, rg float64) []float64 {
	out := make([]float64, len(l))
	for i, v := range l {
		out[i] = Positive(v, rg)
	}
	return out
}

// MixedCurve evaluates the mixed-kinetics model over a distance axis.
func MixedCurve(l []float64, rg, kappa float64) []float64 {
	out := make([]float64, len(l))
	for i, v := range l {
		out[i] = Mixed(v, rg, kappa)
	}
	return out
}
