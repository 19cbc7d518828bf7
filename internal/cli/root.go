// Package cli implements the energyctl operator commands.
package cli

import (
	"context"
	"os"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/config"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCommand builds the energyctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "energyctl",
		Short: "Operate the Seattle building energy prediction service",
		Long: "energyctl predicts offline against an artifact directory, checks artifact " +
			"consistency before a deploy and drives a running service with verified load.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.InitWithOptions(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithFormat(opts.logFormat),
				logger.WithLevel(opts.logLevel),
			)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logger.FormatText, "Log format: text|json")

	cmd.AddCommand(newPredictCommand(), newCheckCommand(), newLoadgenCommand())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// artifactFlags are shared by the commands that load artifacts.
type artifactFlags struct {
	dir           string
	referenceYear int
	centerLat     float64
	centerLon     float64
}

func (f *artifactFlags) register(cmd *cobra.Command) {
	d := config.New()
	cmd.Flags().StringVarP(&f.dir, "artifacts", "a", d.ArtifactDir, "Artifact directory")
	cmd.Flags().IntVar(&f.referenceYear, "reference-year", d.ReferenceYear, "Reference year for building age")
	cmd.Flags().Float64Var(&f.centerLat, "center-lat", d.CenterLat, "Latitude of the city centre")
	cmd.Flags().Float64Var(&f.centerLon, "center-lon", d.CenterLon, "Longitude of the city centre")
}

func (f *artifactFlags) config() *config.Config {
	cfg := config.New()
	cfg.ArtifactDir = f.dir
	cfg.ReferenceYear = f.referenceYear
	cfg.CenterLat = f.centerLat
	cfg.CenterLon = f.centerLon
	cfg.WorkerCount = 1
	return cfg
}
