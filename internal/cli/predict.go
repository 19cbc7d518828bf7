package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	app "github.com/BehramKo-WistyApp/seattle-energy-api/internal/app"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/pkg/logger"
	"github.com/spf13/cobra"
)

// predictItem is one line of predict output.
type predictItem struct {
	Index  int              `json:"index"`
	Status string           `json:"status"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  *apperr.Detail   `json:"error,omitempty"`
}

func newPredictCommand() *cobra.Command {
	var (
		artifacts artifactFlags
		input     string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict buildings offline from a JSON file or stdin",
		Long: "Reads one building object or an array of them and prints one JSON result " +
			"per building. Invalid buildings are reported inline; the command fails only " +
			"when the artifacts cannot be loaded or the input is not JSON.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			inputs, err := decodeBuildings(data)
			if err != nil {
				return err
			}

			svc := app.New(appOptions(artifacts.config())...)
			if err := svc.Start(cmd.Context()); err != nil {
				return err
			}
			defer svc.Stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for i, in := range inputs {
				ctx := logger.WithRequestID(cmd.Context(), fmt.Sprintf("cli-%d", i))
				item := predictItem{Index: i, Status: pipeline.StatusSuccess}
				res, err := svc.Predict(ctx, in)
				if err != nil {
					detail := apperr.DetailOf(err)
					item.Status = apperr.Status(err)
					item.Error = &detail
				} else {
					item.Result = &res
				}
				if err := enc.Encode(item); err != nil {
					return err
				}
			}
			return nil
		},
	}
	artifacts.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Input file, - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// decodeBuildings accepts a single building object or an array of them.
func decodeBuildings(data []byte) ([]building.Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no input")
	}
	if data[0] == '[' {
		var inputs []building.Input
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("decode buildings: %w", err)
		}
		return inputs, nil
	}
	var in building.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode building: %w", err)
	}
	return []building.Input{in}, nil
}
