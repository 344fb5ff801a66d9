package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
	"qms-console/internal/view"
)

// NewRiskMatrixCommand creates the `risks matrix` subcommand.
func NewRiskMatrixCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Render the 5x5 risk heat map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			var raw json.RawMessage
			if err := runtime.Client.Get(cmd.Context(), "/risks/", &raw); err != nil {
				return errors.New(api.UserMessage(err, "could not load risks"))
			}
			risks := view.DecodeCollection[view.Risk](raw)
			matrix := view.BuildMatrix(risks)

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(matrix)
			}

			renderMatrix(formatter, matrix)
			for p := 4; p >= 0; p-- {
				for s := 0; s < 5; s++ {
					cell := matrix[p][s]
					for _, risk := range cell.Items {
						formatter.Line("  level %2d (%s): %s", cell.Level, cell.Zone, risk.Title)
					}
				}
			}
			return nil
		},
	}
}
