package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/loadgen"
	"github.com/spf13/cobra"
)

// Default load settings.
const (
	defaultRequests       = 1000
	defaultWorkersPerCPU  = 2
	defaultRequestTimeout = 30 * time.Second
)

func newLoadgenCommand() *cobra.Command {
	cfg := &loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Post random in-bounds buildings to a running service and verify every answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadgen.Run(cmd.Context(), cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"submitted %d, successful %d, rejected %d, failed %d, violations %d in %s\n",
					stats.Submitted, stats.Successful, stats.Rejected, stats.Failed, stats.Violations,
					stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Base URL of the service")
	cmd.Flags().IntVarP(&cfg.Requests, "requests", "n", defaultRequests, "Number of buildings to predict")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU()*defaultWorkersPerCPU, "Number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultRequestTimeout, "HTTP request timeout")
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "Save the generated buildings to this file")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every failed request")
	return cmd
}
