// Package voltammetry reshapes continuous cyclic-voltammetry sweeps into
// per-cycle matrices and extracts the formal potential and the experimental
// steady-state current from the first cycle.
//
// The experimental-iss extraction is a plateau heuristic: it assumes a
// sigmoidal, steady-state-limited voltammogram with exactly one anodic and
// one cathodic wave. On peak-shaped or multi-wave voltammograms the plateau
// search has no meaning and the result is undefined; callers are expected to
// know the shape of their data.
package voltammetry

import (
	"math"

	"github.com/pkg/errors"

	"secm-flux/internal/dataset"
	"secm-flux/internal/electrode"
)

// CountBoundaries counts the sweep boundaries in a flat potential trace:
// the number of times the potential touches its maximum (each cycle turns
// around at the upper vertex exactly once).
func CountBoundaries(potential []float64) int {
	if len(potential) == 0 {
		return 0
	}
	max := potential[0]
	for _, v := range potential {
		if v > max {
			max = v
		}
	}
	n := 0
	for _, v := range potential {
		if v == max {
			n++
		}
	}
	return n
}

// Reshape splits a flat sweep into ncycles rows sharing one potential axis.
// A single trailing extra point (sweep start repeated at the end) is
// trimmed; any other remainder is a reshape error.
func Reshape(potential, currents []float64, ncycles int) (dataset.CycleMatrix, error) {
	if len(potential) != len(currents) {
		return dataset.CycleMatrix{}, errors.Errorf(
			"voltammetry: potential has %d points, currents %d", len(potential), len(currents))
	}
	if ncycles < 1 {
		return dataset.CycleMatrix{}, errors.Errorf("voltammetry: invalid cycle count %d", ncycles)
	}
	total := len(currents)
	npts := total / ncycles
	if npts == 0 {
		return dataset.CycleMatrix{}, errors.Errorf(
			"voltammetry: %d points cannot form %d cycles", total, ncycles)
	}
	switch total % npts {
	case 0:
	case 1:
		// duplicate start/end vertex point
		potential = potential[:total-1]
		currents = currents[:total-1]
		total--
	default:
		return dataset.CycleMatrix{}, errors.Errorf(
			"voltammetry: %d points is not a multiple of %d points per cycle", total, npts)
	}
	if total != ncycles*npts {
		return dataset.CycleMatrix{}, errors.Errorf(
			"voltammetry: %d points does not divide into %d cycles of %d", total, ncycles, npts)
	}

	m := dataset.CycleMatrix{
		Potential: append([]float64(nil), potential[:npts]...),
		Currents:  make([][]float64, ncycles),
	}
	for c := 0; c < ncycles; c++ {
		m.Currents[c] = append([]float64(nil), currents[c*npts:(c+1)*npts]...)
	}
	return m, nil
}

// Options configures one reshape pass over a cycle matrix.
type Options struct {
	Normalize bool // compute the theoretical iss from the electrode model
	Electrode electrode.Params

	FormalPotential bool // extract E0' from the first cycle
	ExperimentalIss bool // extract iss from the plateau difference

	// TimeAxis optionally carries one cycle's worth of timestamps (s) for
	// the scan-rate report; nil when the import had no time column.
	TimeAxis []float64
}

// DefaultOptions returns a pass with every extraction disabled.
func DefaultOptions() Options {
	return Options{}
}

// Result is the outcome of one reshape pass.
type Result struct {
	Potential []float64   // shared axis, V
	Currents  [][]float64 // cycles × points, nA

	TheoreticalIss  dataset.Quantity // nA
	ExperimentalIss dataset.Quantity // nA, plateau difference
	FormalPotential dataset.Quantity // V
	ScanRate        dataset.Quantity // mV/s
}

// Process runs one pass over the raw imported matrix. The input is never
// mutated; derived quantities are recomputed from scratch every call.
func Process(raw dataset.CycleMatrix, opts Options) (Result, error) {
	if err := raw.Validate(); err != nil {
		return Result{}, err
	}
	m := raw.Copy()
	res := Result{
		Potential:       m.Potential,
		Currents:        m.Currents,
		TheoreticalIss:  dataset.NotCalculated(nil),
		ExperimentalIss: dataset.NotCalculated(nil),
		FormalPotential: dataset.NotCalculated(nil),
		ScanRate:        dataset.NotCalculated(nil),
	}

	if opts.Normalize {
		if iss, err := electrode.TheoreticalIss(opts.Electrode); err != nil {
			res.TheoreticalIss = dataset.NotCalculated(err)
		} else {
			res.TheoreticalIss = dataset.Calculated(iss)
		}
	}

	if opts.FormalPotential || opts.ExperimentalIss {
		extractWaves(&res, m, opts)
	}

	if opts.TimeAxis != nil {
		res.ScanRate = scanRate(m.Potential, opts.TimeAxis)
	}
	return res, nil
}

// extractWaves locates the voltammetric peak pair on the first cycle and
// derives the formal potential and, when requested, the experimental iss.
func extractWaves(res *Result, m dataset.CycleMatrix, opts Options) {
	first := m.Currents[0]
	if len(first) < 3 {
		err := errors.New("voltammetry: first cycle too short for derivative analysis")
		if opts.FormalPotential {
			res.FormalPotential = dataset.NotCalculated(err)
		}
		if opts.ExperimentalIss {
			res.ExperimentalIss = dataset.NotCalculated(err)
		}
		return
	}
	deriv := gradient(first)

	maxIdx, minIdx := 0, 0
	for i, v := range deriv {
		if v > deriv[maxIdx] {
			maxIdx = i
		}
		if v < deriv[minIdx] {
			minIdx = i
		}
	}

	if opts.FormalPotential {
		res.FormalPotential = dataset.Calculated((m.Potential[maxIdx] + m.Potential[minIdx]) / 2)
	}

	if opts.ExperimentalIss {
		res.ExperimentalIss = plateauIss(first, deriv, maxIdx, minIdx)
	}
}

// plateauIss finds the flattest segment between the two waves and a second
// one before the first wave, and reports their current difference. Assumes a
// sigmoidal steady-state voltammogram (see package doc).
func plateauIss(first, deriv []float64, maxIdx, minIdx int) dataset.Quantity {
	lo, hi := maxIdx, minIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == 0 || lo == hi {
		return dataset.NotCalculated(errors.New("voltammetry: waves too close to the sweep edge for plateau search"))
	}

	absDeriv := make([]float64, len(deriv))
	for i, v := range deriv {
		absDeriv[i] = math.Abs(v)
	}

	// Flattest point between the waves; on ties keep the last, matching the
	// plateau farthest from the first wave.
	mid := lo
	for i := lo; i < hi; i++ {
		if absDeriv[i] <= absDeriv[mid] {
			mid = i
		}
	}
	// Flattest point before the first wave.
	head := 0
	for i := 0; i < lo; i++ {
		if absDeriv[i] < absDeriv[head] {
			head = i
		}
	}
	return dataset.Calculated(first[mid] - first[head])
}

// scanRate derives the sweep rate in mV/s from a quarter cycle.
func scanRate(potential, time []float64) dataset.Quantity {
	npts := len(potential)
	if len(time) < npts {
		npts = len(time)
	}
	crit := npts / 4
	if crit < 1 {
		return dataset.NotCalculated(errors.New("voltammetry: too few points for scan rate"))
	}
	dt := time[crit] - time[0]
	if dt == 0 {
		return dataset.NotCalculated(errors.New("voltammetry: zero time span for scan rate"))
	}
	return dataset.Calculated(1000 * (potential[crit] - potential[0]) / dt)
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
