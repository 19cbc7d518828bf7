package cli

import (
	"fmt"
	"strings"

	app "github.com/BehramKo-WistyApp/seattle-energy-api/internal/app"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/config"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	var artifacts artifactFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load an artifact directory and run the start-up consistency checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := app.New(appOptions(artifacts.config())...)
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()

			d, err := svc.Model()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok       %s %s (%s)\n", d.Info.Name, d.Info.Version, d.Info.Kind)
			fmt.Fprintf(out, "numeric  %s\n", strings.Join(d.Schema.Numeric, ", "))
			fmt.Fprintf(out, "binary   %s\n", strings.Join(d.Schema.Binary, ", "))
			fmt.Fprintf(out, "category %s\n", strings.Join(d.Schema.Categorical, ", "))
			fmt.Fprintf(out, "encoded  %d columns\n", len(d.EncodedColumns))
			fmt.Fprintf(out, "width    %d features\n", d.Width)
			return nil
		},
	}
	artifacts.register(cmd)
	return cmd
}

func appOptions(cfg *config.Config) []app.Option {
	return []app.Option{
		app.WithArtifactDir(cfg.ArtifactDir),
		app.WithConstants(cfg.Constants()),
		app.WithWorkerCount(cfg.WorkerCount),
	}
}
