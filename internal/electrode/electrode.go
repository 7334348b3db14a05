// Package electrode models the SECM tip geometry and its diffusion-limited
// steady-state current.
package electrode

import (
	"fmt"
	"math"
)

// Faraday constant, C/mol.
const Faraday = 96485.0

// Params describes the ultramicroelectrode and the mediator solution.
type Params struct {
	RadiusUM       float64 // electrode radius a, µm
	Rg             float64 // sheath/electrode radius ratio
	ConcentrationM float64 // mediator concentration, mM
	DiffusionM2S   float64 // diffusion coefficient, m²/s
}

// Validate reports the first missing or non-physical field. Rg must satisfy
// Rg³ > 0.81 or the beta correction is undefined; physically Rg > 1.
func (p Params) Validate() error {
	if p.RadiusUM <= 0 {
		return fmt.Errorf("electrode: radius must be positive, got %g", p.RadiusUM)
	}
	if math.Pow(p.Rg, 3) <= 0.81 {
		return fmt.Errorf("electrode: Rg %g out of domain (Rg^3 must exceed 0.81)", p.Rg)
	}
	if p.ConcentrationM <= 0 {
		return fmt.Errorf("electrode: concentration must be positive, got %g", p.ConcentrationM)
	}
	if p.DiffusionM2S <= 0 {
		return fmt.Errorf("electrode: diffusion coefficient must be positive, got %g", p.DiffusionM2S)
	}
	return nil
}

// Beta returns the finite-sheath correction factor for the given Rg.
func Beta(rg float64) float64 {
	return 1 + 0.23/math.Pow(math.Pow(rg, 3)-0.81, 0.36)
}

// TheoreticalIss returns the diffusion-limited steady-state current in nA
// for a disk electrode far from the substrate:
//
//	iss = 4e9 · F · beta(Rg) · D · (a/1e6) · c
//
// with a in µm and c in mM. An error is returned when the parameters are
// outside the physical domain; callers surface it rather than guessing.
func TheoreticalIss(p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return 4 * 1e9 * Faraday * Beta(p.Rg) * p.DiffusionM2S * (p.RadiusUM / 1e6) * p.ConcentrationM, nil
}

// IssSource selects where the steady-state current used for normalization
// comes from.
type IssSource int

const (
	IssTheoretical IssSource = iota
	IssExperimental
)

func (s IssSource) String() string {
	if s == IssExperimental {
		return "experimental"
	}
	return "theoretical"
}

// Iss resolves the active steady-state current: the theoretical model value
// or a measured one, depending on the source flag. The experimental value
// must be nonzero to be usable as a normalization reference.
func Iss(src IssSource, p Params, experimental float64) (float64, error) {
	if src == IssExperimental {
		if experimental == 0 {
			return 0, fmt.Errorf("electrode: experimental iss is zero")
		}
		return experimental, nil
	}
	return TheoreticalIss(p)
}
