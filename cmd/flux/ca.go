package main

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"secm-flux/internal/chrono"
	"secm-flux/internal/dataset"
	"secm-flux/internal/export"
	"secm-flux/pkg/units"
)

// NewCACommand .
func NewCACommand() *cobra.Command {
	var (
		input        string
		output       string
		currentUnit  string
		timeUnit     string
		iupac        bool
		normalize    bool
		expIss       bool
		responseTime bool
		elec         electrodeFlags
	)

	cmd := &cobra.Command{
		Use:   "ca",
		Short: "Process a chronoamperometry transient",
		Long: `Process a chronoamperometry transient: estimate the settled steady-state
current from the tail and locate the 110% response time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cu, err := units.ParseCurrent(currentUnit)
			if err != nil {
				return err
			}
			tu, err := units.ParseTime(timeUnit)
			if err != nil {
				return err
			}

			raw, err := dataset.ReadTrace(input)
			if err != nil {
				return err
			}
			logrus.Infof("imported %d samples from %s", raw.Len(), input)

			tr := dataset.Trace{
				X: units.ConvertTime(raw.X, tu, units.Second),
				Y: units.ConvertCurrent(raw.Y, cu, units.Nanoamp),
			}
			if iupac {
				tr.Y = units.ToIUPAC(tr.Y)
			}

			res, err := chrono.Process(tr, chrono.Options{
				Normalize:       normalize,
				Electrode:       elec.params(),
				ExperimentalIss: expIss,
				ResponseTime:    responseTime,
			})
			if err != nil {
				return err
			}
			printCASummary(cmd, res)

			w, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOutput(w)
			return export.CA(w, res, export.Meta{
				OriginalFile: input,
				CurrentUnit:  units.Nanoamp.String(),
				TimeUnit:     units.Second.String(),
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&input, "input", "i", "", "input trace file (time, current)")
	fs.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fs.StringVar(&currentUnit, "current-unit", "nA", "unit of the imported currents (nA, uA, pA)")
	fs.StringVar(&timeUnit, "time-unit", "s", "unit of the imported times (s, min, ms)")
	fs.BoolVar(&iupac, "iupac", false, "flip current sign to the IUPAC convention")
	fs.BoolVar(&normalize, "normalize", false, "report the theoretical iss for the electrode")
	fs.BoolVar(&expIss, "experimental-iss", false, "estimate iss from the transient tail")
	fs.BoolVar(&responseTime, "response-time", false, "locate the 110% settling time")
	elec.register(fs)
	cmd.MarkFlagRequired("input")

	return cmd
}

func printCASummary(cmd *cobra.Command, res chrono.Result) {
	bold := func(format string, a ...interface{}) string { return color.New(color.Bold).Sprintf(format, a...) }
	cmd.Printf("Samples: %s\n", bold("%d", len(res.Time)))
	cmd.Printf("Theoretical iss (nA): %s\n", bold("%s", res.TheoreticalIss.Format("%.3f")))
	cmd.Printf("Experimental iss (nA): %s\n", bold("%s", res.ExperimentalIss.Format("%.3f")))
	cmd.Printf("Response time (s): %s\n", bold("%s", res.ResponseTime.Format("%.3f")))
}
