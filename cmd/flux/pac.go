package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"secm-flux/internal/dataset"
	"secm-flux/internal/export"
	"secm-flux/internal/pac"
	"secm-flux/pkg/units"
)

// NewPACCommand .
func NewPACCommand() *cobra.Command {
	var (
		input        string
		output       string
		currentUnit  string
		distanceUnit string
		iupac        bool
		calibration  string
		normalize    bool
		expIss       float64
		fitRg        bool
		fitKappa     bool
		feedback     bool
		elec         electrodeFlags
	)

	cmd := &cobra.Command{
		Use:   "pac",
		Short: "Process a probe approach curve",
		Long: `Process a probe approach curve: calibrate the zero distance, normalize by
the steady-state current, and fit the feedback models for Rg and kappa.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cu, err := units.ParseCurrent(currentUnit)
			if err != nil {
				return err
			}
			du, err := units.ParseDistance(distanceUnit)
			if err != nil {
				return err
			}
			cal, err := parseCalibration(calibration)
			if err != nil {
				return err
			}

			raw, err := dataset.ReadTrace(input)
			if err != nil {
				return err
			}
			logrus.Infof("imported %d points from %s", raw.Len(), input)

			tr := dataset.Trace{
				X: units.ConvertDistance(raw.X, du, units.Micrometer),
				Y: units.ConvertCurrent(raw.Y, cu, units.Nanoamp),
			}
			if iupac {
				tr.Y = units.ToIUPAC(tr.Y)
			}

			opts := pac.DefaultOptions()
			opts.Calibration = cal
			opts.Normalize = normalize
			opts.Electrode = elec.params()
			opts.FitRg = fitRg
			opts.FitKappa = fitKappa
			opts.Feedback = feedback
			if expIss != 0 {
				opts.UseExperimental = true
				opts.ExperimentalIss = expIss
			}

			res, err := pac.Process(tr, opts)
			if err != nil {
				return err
			}
			if res.Points < res.PointsOriginal {
				logrus.Infof("dropped %d unusable leading points", res.PointsOriginal-res.Points)
			}
			printPACSummary(cmd, res)

			w, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOutput(w)
			return export.PAC(w, res, export.Meta{
				OriginalFile: input,
				CurrentUnit:  units.Nanoamp.String(),
				DistanceUnit: units.Micrometer.String(),
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "input trace file (distance, current)")
	fs.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fs.StringVar(&currentUnit, "current-unit", "nA", "unit of the imported currents (nA, uA, pA)")
	fs.StringVar(&distanceUnit, "distance-unit", "um", "unit of the imported distances (um, mm, nm)")
	fs.BoolVar(&iupac, "iupac", false, "flip current sign to the IUPAC convention")
	fs.StringVar(&calibration, "calibrate", "first-point", "zero-distance calibration (first-point, derivative, none)")
	fs.BoolVar(&normalize, "normalize", false, "normalize distance by a and current by iss")
	fs.Float64Var(&expIss, "experimental-iss", 0, "measured iss (nA) to normalize with instead of the model")
	fs.BoolVar(&fitRg, "fit-rg", false, "fit Rg with the negative-feedback model")
	fs.BoolVar(&fitKappa, "fit-kappa", false, "fit kappa with the mixed-kinetics model")
	fs.BoolVar(&feedback, "feedback", false, "export the pure feedback reference curves")
	elec.register(fs)
	cmd.MarkFlagRequired("input")

	return cmd
}

func parseCalibration(s string) (pac.Calibration, error) {
	switch s {
	case "first-point":
		return pac.CalibrateFirstPoint, nil
	case "derivative":
		return pac.CalibrateDerivative, nil
	case "none":
		return pac.CalibrateNone, nil
	}
	return 0, fmt.Errorf("unknown calibration %q", s)
}

func printPACSummary(cmd *cobra.Command, res pac.Result) {
	bold := func(format string, a ...interface{}) string { return color.New(color.Bold).Sprintf(format, a...) }
	cmd.Printf("Points: %s\n", bold("%d", res.Points))
	cmd.Printf("Theoretical iss (nA): %s\n", bold("%s", res.TheoreticalIss.Format("%.3f")))
	cmd.Printf("Rg (fit): %s\n", bold("%s", res.Rg.Format("%.1f")))
	cmd.Printf("kappa (fit): %s\n", bold("%s", res.Kappa.Format("%.3E")))
	cmd.Printf("k (cm/s): %s\n", bold("%s", res.RateK.Format("%.3E")))
}
