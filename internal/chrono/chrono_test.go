package chrono

import (
	"math"
	"testing"

	"secm-flux/internal/dataset"
	"secm-flux/internal/electrode"
)

// syntheticStep builds a decaying transient that steps at t=5s and settles
// exponentially toward iss.
func syntheticStep(n int, iss float64) dataset.Trace {
	tr := dataset.Trace{X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		t := float64(i) * 0.01
		tr.X[i] = t
		if t < 5 {
			tr.Y[i] = 0.01
		} else {
			tr.Y[i] = iss * (1 + 2*math.Exp(-(t-5)/0.5))
		}
	}
	return tr
}

func TestProcessTailIss(t *testing.T) {
	const iss = 1.8
	tr := syntheticStep(2000, iss)

	res, err := Process(tr, Options{ExperimentalIss: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.ExperimentalIss.OK {
		t.Fatalf("tail iss not calculated: %v", res.ExperimentalIss.Err)
	}
	// last 5% of a 20s record starts at t=19s, 14 time constants after the step
	if got := res.ExperimentalIss.Value; math.Abs(got-iss) > 0.01*iss {
		t.Fatalf("tail iss: got %v want %v", got, iss)
	}
}

func TestProcessResponseTime(t *testing.T) {
	const iss = 1.8
	tr := syntheticStep(2000, iss)

	res, err := Process(tr, Options{ExperimentalIss: true, ResponseTime: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.ResponseTime.OK {
		t.Fatalf("response time not calculated: %v", res.ResponseTime.Err)
	}
	// i(t) = iss*(1+2exp(-(t-5)/0.5)) crosses 1.1*iss at t = 5 + 0.5*ln(20)
	want := 5 + 0.5*math.Log(20)
	if got := res.ResponseTime.Value; math.Abs(got-want) > 0.02 {
		t.Fatalf("response time: got %v want %v", got, want)
	}
}

func TestProcessResponseTimeNeedsTail(t *testing.T) {
	// a steep exponential ramp never settles: the last sample sits far
	// above 110% of the tail mean
	tr := dataset.Trace{X: make([]float64, 40), Y: make([]float64, 40)}
	for i := range tr.X {
		tr.X[i] = float64(i)
		tr.Y[i] = math.Exp(float64(i))
	}
	res, err := Process(tr, Options{ResponseTime: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.ResponseTime.OK {
		t.Fatal("expected response time to degrade on an unsettled transient")
	}
	if res.ResponseTime.Err == nil {
		t.Fatal("degraded response time should carry its reason")
	}
}

func TestProcessAlreadySettled(t *testing.T) {
	tr := dataset.Trace{X: []float64{0, 1, 2, 3}, Y: []float64{1, 1, 1, 1}}
	res, err := Process(tr, Options{ResponseTime: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.ResponseTime.OK || res.ResponseTime.Value != 0 {
		t.Fatalf("settled transient: got %+v want t=0", res.ResponseTime)
	}
}

func TestProcessNormalize(t *testing.T) {
	tr := syntheticStep(200, 1.8)
	p := electrode.Params{RadiusUM: 5, Rg: 10, ConcentrationM: 1e-3, DiffusionM2S: 1e-9}

	res, err := Process(tr, Options{Normalize: true, Electrode: p})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want, err := electrode.TheoreticalIss(p)
	if err != nil {
		t.Fatalf("iss: %v", err)
	}
	if !res.TheoreticalIss.OK || res.TheoreticalIss.Value != want {
		t.Fatalf("theoretical iss: got %+v want %v", res.TheoreticalIss, want)
	}
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	tr := syntheticStep(200, 1.8)
	orig := tr.Copy()

	res, err := Process(tr, Options{ExperimentalIss: true, ResponseTime: true})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	res.Currents[0] = 999
	for i := range orig.Y {
		if tr.Y[i] != orig.Y[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}
