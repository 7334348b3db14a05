package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"secm-flux/internal/electrode"
	"secm-flux/internal/version"
)

var (
	logLevel = "info"
)

// NewCommand .
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flux",
		Short: "flux reshapes and fits scanning electrochemical microscopy data",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")

	cmd.AddCommand(
		NewPACCommand(),
		NewCVCommand(),
		NewCACommand(),
		NewImageCommand(),
		NewVersionCommand(),
	)

	return cmd
}

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s\n", version.String())
		},
	}
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})
	return nil
}

// openOutput maps the --output flag to a writer: stdout for "-", a fresh
// file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func closeOutput(w io.WriteCloser) {
	if w != os.Stdout {
		w.Close()
	}
}

// electrodeFlags groups the probe parameters shared by every experiment
// command.
type electrodeFlags struct {
	radius    float64
	rg        float64
	conc      float64
	diffusion float64
}

func (e *electrodeFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&e.radius, "radius", 0, "electrode radius a (µm)")
	fs.Float64Var(&e.rg, "rg", 0, "sheath/electrode radius ratio Rg")
	fs.Float64Var(&e.conc, "conc", 0, "mediator concentration (mM)")
	fs.Float64Var(&e.diffusion, "diffusion", 0, "diffusion coefficient (m²/s)")
}

func (e *electrodeFlags) params() electrode.Params {
	return electrode.Params{
		RadiusUM:       e.radius,
		Rg:             e.rg,
		ConcentrationM: e.conc,
		DiffusionM2S:   e.diffusion,
	}
}
