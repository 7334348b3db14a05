package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"secm-flux/internal/dataset"
	"secm-flux/internal/export"
	"secm-flux/internal/voltammetry"
	"secm-flux/pkg/units"
)

// NewCVCommand .
func NewCVCommand() *cobra.Command {
	var (
		input         string
		output        string
		currentUnit   string
		potentialUnit string
		iupac         bool
		flat          bool
		ncycles       int
		normalize     bool
		formalPot     bool
		expIss        bool
		cycleSel      string
		elec          electrodeFlags
	)

	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Process a cyclic voltammogram",
		Long: `Process a cyclic voltammogram: reshape a continuous sweep into cycles and
extract the formal potential and the experimental steady-state current.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cu, err := units.ParseCurrent(currentUnit)
			if err != nil {
				return err
			}
			pu, err := units.ParsePotential(potentialUnit)
			if err != nil {
				return err
			}

			var m dataset.CycleMatrix
			if flat {
				tr, err := dataset.ReadTrace(input)
				if err != nil {
					return err
				}
				n := ncycles
				if n == 0 {
					n = voltammetry.CountBoundaries(tr.X)
					logrus.Infof("detected %d cycles", n)
				}
				m, err = voltammetry.Reshape(tr.X, tr.Y, n)
				if err != nil {
					return err
				}
			} else {
				m, err = dataset.ReadCycleMatrix(input)
				if err != nil {
					return err
				}
			}
			logrus.Infof("imported %d cycles of %d points from %s", m.Cycles(), m.PointsPerCycle(), input)

			m.Potential = units.ConvertPotential(m.Potential, pu, units.Volt)
			for i, cyc := range m.Currents {
				cyc = units.ConvertCurrent(cyc, cu, units.Nanoamp)
				if iupac {
					cyc = units.ToIUPAC(cyc)
				}
				m.Currents[i] = cyc
			}

			res, err := voltammetry.Process(m, voltammetry.Options{
				Normalize:       normalize,
				Electrode:       elec.params(),
				FormalPotential: formalPot,
				ExperimentalIss: expIss,
			})
			if err != nil {
				return err
			}
			printCVSummary(cmd, res)

			sel, cycle, err := parseCycleSelection(cycleSel)
			if err != nil {
				return err
			}
			cycles, err := voltammetry.SelectCycles(res.Currents, sel, cycle)
			if err != nil {
				return err
			}

			w, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOutput(w)
			return export.CV(w, res, cycles, export.Meta{
				OriginalFile:  input,
				CurrentUnit:   units.Nanoamp.String(),
				PotentialUnit: units.Volt.String(),
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "input cycle file, or a flat trace with --flat")
	fs.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fs.StringVar(&currentUnit, "current-unit", "nA", "unit of the imported currents (nA, uA, pA)")
	fs.StringVar(&potentialUnit, "potential-unit", "V", "unit of the imported potentials (V, mV)")
	fs.BoolVar(&iupac, "iupac", false, "flip current sign to the IUPAC convention")
	fs.BoolVar(&flat, "flat", false, "input is a flat (potential, current) sweep to reshape")
	fs.IntVar(&ncycles, "cycles", 0, "cycle count for --flat, 0 to detect from the sweep vertices")
	fs.BoolVar(&normalize, "normalize", false, "report the theoretical iss for the electrode")
	fs.BoolVar(&formalPot, "formal-potential", false, "extract the formal potential from the first cycle")
	fs.BoolVar(&expIss, "experimental-iss", false, "extract the experimental iss from the wave plateaus")
	fs.StringVar(&cycleSel, "cycle", "all", "cycles to export (all, first, rest, or a 1-based index)")
	elec.register(fs)
	cmd.MarkFlagRequired("input")

	return cmd
}

func parseCycleSelection(s string) (voltammetry.Selection, int, error) {
	switch s {
	case "all":
		return voltammetry.SelectAll, 0, nil
	case "first":
		return voltammetry.SelectFirst, 0, nil
	case "rest":
		return voltammetry.SelectSecondOnward, 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, fmt.Errorf("unknown cycle selection %q", s)
	}
	return voltammetry.SelectSpecific, n, nil
}

func printCVSummary(cmd *cobra.Command, res voltammetry.Result) {
	bold := func(format string, a ...interface{}) string { return color.New(color.Bold).Sprintf(format, a...) }
	cmd.Printf("Cycles: %s\n", bold("%d", len(res.Currents)))
	cmd.Printf("Theoretical iss (nA): %s\n", bold("%s", res.TheoreticalIss.Format("%.3f")))
	cmd.Printf("Experimental iss (nA): %s\n", bold("%s", res.ExperimentalIss.Format("%.3f")))
	cmd.Printf("Standard potential (V): %s\n", bold("%s", res.FormalPotential.Format("%.3f")))
	cmd.Printf("Scan rate (mV/s): %s\n", bold("%s", res.ScanRate.Format("%.1f")))
}
