// Package chrono analyzes chronoamperometry transients: current versus time
// at fixed potential after a concentration or potential step.
package chrono

import (
	"math"

	"github.com/pkg/errors"

	"secm-flux/internal/dataset"
	"secm-flux/internal/electrode"
)

// Options configures one chronoamperometry pass.
type Options struct {
	Normalize bool // compute the theoretical iss from the electrode model
	Electrode electrode.Params

	ExperimentalIss bool // estimate iss from the transient tail
	ResponseTime    bool // locate the 110% settling point
}

// DefaultOptions returns a pass with every extraction disabled.
func DefaultOptions() Options {
	return Options{}
}

// Result is the outcome of one chronoamperometry pass.
type Result struct {
	Time     []float64 // s
	Currents []float64 // nA

	TheoreticalIss  dataset.Quantity // nA
	ExperimentalIss dataset.Quantity // nA, mean of the transient tail
	ResponseTime    dataset.Quantity // s
}

// Process runs one pass over the raw imported transient. The input is never
// mutated; derived quantities are recomputed from scratch every call.
func Process(raw dataset.Trace, opts Options) (Result, error) {
	if err := raw.Validate(); err != nil {
		return Result{}, err
	}
	tr := raw.Copy()
	res := Result{
		Time:            tr.X,
		Currents:        tr.Y,
		TheoreticalIss:  dataset.NotCalculated(nil),
		ExperimentalIss: dataset.NotCalculated(nil),
		ResponseTime:    dataset.NotCalculated(nil),
	}

	if opts.Normalize {
		if iss, err := electrode.TheoreticalIss(opts.Electrode); err != nil {
			res.TheoreticalIss = dataset.NotCalculated(err)
		} else {
			res.TheoreticalIss = dataset.Calculated(iss)
		}
	}

	if opts.ExperimentalIss || opts.ResponseTime {
		res.ExperimentalIss = tailIss(tr.Y)
	}
	if opts.ResponseTime {
		if !res.ExperimentalIss.OK {
			res.ResponseTime = dataset.NotCalculated(errors.Wrap(
				res.ExperimentalIss.Err, "chrono: response time needs the tail iss"))
		} else {
			res.ResponseTime = responseTime(tr.X, tr.Y, res.ExperimentalIss.Value)
		}
	}
	return res, nil
}

// tailIss estimates the steady-state current as the mean of the last 5% of
// the transient, at least one sample.
func tailIss(currents []float64) dataset.Quantity {
	n := len(currents)
	if n == 0 {
		return dataset.NotCalculated(errors.New("chrono: empty transient"))
	}
	tail := n / 20
	if tail < 1 {
		tail = 1
	}
	sum := 0.0
	for _, v := range currents[n-tail:] {
		sum += v
	}
	return dataset.Calculated(sum / float64(tail))
}

// responseTime scans backward from the end of the transient for the last
// sample whose magnitude exceeds 110% of the settled current, and reports
// the timestamp where the signal re-entered the band.
func responseTime(time, currents []float64, iss float64) dataset.Quantity {
	if iss == 0 {
		return dataset.NotCalculated(errors.New("chrono: settled current is zero"))
	}
	band := 1.1 * math.Abs(iss)
	for i := len(currents) - 1; i >= 0; i-- {
		if math.Abs(currents[i]) > band {
			if i == len(currents)-1 {
				return dataset.NotCalculated(errors.New("chrono: transient never settles inside 110% band"))
			}
			return dataset.Calculated(time[i+1])
		}
	}
	// Whole transient is already inside the band.
	return dataset.Calculated(time[0])
}
