// Package export writes processed experiments to the canonical text format:
// '#'-prefixed header lines carrying the treatment summary, then
// comma-separated data columns. The data blocks use the same layout the
// dataset readers accept, so exported files re-import cleanly.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"secm-flux/internal/chrono"
	"secm-flux/internal/pac"
	"secm-flux/internal/scanimage"
	"secm-flux/internal/voltammetry"
)

// Meta carries the provenance lines every export starts with.
type Meta struct {
	OriginalFile  string
	CurrentUnit   string
	DistanceUnit  string
	TimeUnit      string
	PotentialUnit string

	// Image-only treatment summary. Normalization overrides the default
	// Yes/No line (e.g. "Theoretical iss"); the slope flags report the tilt
	// corrections that ran.
	Normalization string
	SlopeX        bool
	SlopeY        bool
}

// PAC writes an approach-curve result. Optional columns appear only for the
// quantities the pass produced.
func PAC(w io.Writer, res pac.Result, meta Meta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#FLUX: APPROACH CURVE\n")
	fmt.Fprintf(bw, "#Original file: %s\n", meta.OriginalFile)
	fmt.Fprintf(bw, "#Units of current: %s\n", meta.CurrentUnit)
	fmt.Fprintf(bw, "#Units of distance: %s\n", meta.DistanceUnit)
	fmt.Fprintf(bw, "#Theoretical steady state current (nA): %s\n", res.TheoreticalIss.Format("%.3f"))
	fmt.Fprintf(bw, "#Rg (fit): %s\n", res.Rg.Format("%.1f"))
	fmt.Fprintf(bw, "#kappa (fit): %s\n", res.Kappa.Format("%.3E"))
	fmt.Fprintf(bw, "#k (cm/s): %s\n", res.RateK.Format("%.3E"))
	fmt.Fprintf(bw, "#\n")

	normalized := len(res.NormDistances) > 0
	hasFit := len(res.FitCurve) > 0
	hasFeedback := len(res.PositiveCurve) > 0 && len(res.NegativeCurve) > 0

	fmt.Fprintf(bw, "#Distance, Current")
	if normalized {
		fmt.Fprintf(bw, ", Normalized distance, Normalized current")
	}
	if hasFit {
		fmt.Fprintf(bw, ", Theoretical fit")
	}
	if hasFeedback {
		fmt.Fprintf(bw, ", Positive feedback, Negative feedback")
	}
	fmt.Fprintf(bw, "\n")

	for i := range res.Distances {
		fmt.Fprintf(bw, "%1.4E,%1.4E", res.Distances[i], res.Currents[i])
		if normalized {
			fmt.Fprintf(bw, ",%1.4E,%1.4E", res.NormDistances[i], res.NormCurrents[i])
		}
		if hasFit {
			fmt.Fprintf(bw, ",%1.4E", res.FitCurve[i])
		}
		if hasFeedback {
			fmt.Fprintf(bw, ",%1.4E,%1.4E", res.PositiveCurve[i], res.NegativeCurve[i])
		}
		fmt.Fprintf(bw, "\n")
	}
	return errors.Wrap(bw.Flush(), "export: approach curve")
}

// CV writes a cyclic-voltammetry result: one potential axis line, then one
// line of currents per selected cycle.
func CV(w io.Writer, res voltammetry.Result, cycles [][]float64, meta Meta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#FLUX: CV\n")
	fmt.Fprintf(bw, "#Original file: %s\n", meta.OriginalFile)
	fmt.Fprintf(bw, "#Units of current: %s\n", meta.CurrentUnit)
	fmt.Fprintf(bw, "#Units of potential: %s\n", meta.PotentialUnit)
	fmt.Fprintf(bw, "#Theoretical steady state current (nA): %s\n", res.TheoreticalIss.Format("%.3f"))
	fmt.Fprintf(bw, "#Experimental steady state current (nA): %s\n", res.ExperimentalIss.Format("%.3f"))
	fmt.Fprintf(bw, "#Standard potential (V vs. ref): %s\n", res.FormalPotential.Format("%.3f"))
	fmt.Fprintf(bw, "#Scan rate (mV/s): %s\n", res.ScanRate.Format("%.1f"))
	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "#Potential, then current per cycle (%d cycles)\n", len(cycles))

	writeRow(bw, res.Potential)
	for _, cyc := range cycles {
		writeRow(bw, cyc)
	}
	return errors.Wrap(bw.Flush(), "export: cyclic voltammetry")
}

// CA writes a chronoamperometry result as time and current columns.
func CA(w io.Writer, res chrono.Result, meta Meta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#FLUX: CA\n")
	fmt.Fprintf(bw, "#Original file: %s\n", meta.OriginalFile)
	fmt.Fprintf(bw, "#Units of current: %s\n", meta.CurrentUnit)
	fmt.Fprintf(bw, "#Units of time: %s\n", meta.TimeUnit)
	fmt.Fprintf(bw, "#Theoretical steady state current (nA): %s\n", res.TheoreticalIss.Format("%.3f"))
	fmt.Fprintf(bw, "#Experimental steady state current (nA): %s\n", res.ExperimentalIss.Format("%.3f"))
	fmt.Fprintf(bw, "#Response time (s): %s\n", res.ResponseTime.Format("%.3f"))
	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "#Time, Current\n")

	for i := range res.Time {
		fmt.Fprintf(bw, "%1.4E,%1.4E\n", res.Time[i], res.Currents[i])
	}
	return errors.Wrap(bw.Flush(), "export: chronoamperometry")
}

// Image writes a 2D scan: both axes, the current matrix row by row, and the
// edge mask when one was detected.
func Image(w io.Writer, res scanimage.Result, meta Meta) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#FLUX: IMAGE\n")
	fmt.Fprintf(bw, "#Original file: %s\n", meta.OriginalFile)
	fmt.Fprintf(bw, "#Units of current: %s\n", meta.CurrentUnit)
	fmt.Fprintf(bw, "#Units of distance: %s\n", meta.DistanceUnit)
	norm := meta.Normalization
	if norm == "" {
		norm = "No"
		if res.Normalized {
			norm = "Yes"
		}
	}
	fmt.Fprintf(bw, "#Currents normalized: %s\n", norm)
	fmt.Fprintf(bw, "#X-slope corrected: %s\n", yesNo(meta.SlopeX))
	fmt.Fprintf(bw, "#Y-slope corrected: %s\n", yesNo(meta.SlopeY))
	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "#X pts: %d\n", res.Grid.NX())
	writeRow(bw, res.Grid.X)
	fmt.Fprintf(bw, "#Y pts: %d\n", res.Grid.NY())
	writeRow(bw, res.Grid.Y)
	fmt.Fprintf(bw, "#Matrix of currents: %d\n", res.Grid.NX()*res.Grid.NY())
	for _, row := range res.Grid.Currents {
		writeRow(bw, row)
	}
	if res.EdgeMask != nil {
		fmt.Fprintf(bw, "#Detected edges:\n")
		for _, row := range res.EdgeMask {
			for i, on := range row {
				if i > 0 {
					fmt.Fprintf(bw, ",")
				}
				if on {
					fmt.Fprintf(bw, "1")
				} else {
					fmt.Fprintf(bw, "0")
				}
			}
			fmt.Fprintf(bw, "\n")
		}
	}
	return errors.Wrap(bw.Flush(), "export: image")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func writeRow(w io.Writer, vals []float64) {
	for i, v := range vals {
		if i > 0 {
			fmt.Fprintf(w, ",")
		}
		fmt.Fprintf(w, "%1.4E", v)
	}
	fmt.Fprintf(w, "\n")
}
