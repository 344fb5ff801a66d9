package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"qms-console/app"
	"qms-console/internal/resource"
)

// RootOptions holds global flags plus the lazily-built runtime shared by all
// commands.
type RootOptions struct {
	Format string
	Quiet  bool

	runtime *app.Runtime
}

var validFormats = []string{"text", "json"}

// Runtime builds the application wiring on first use.
func (o *RootOptions) Runtime() (*app.Runtime, error) {
	if o.runtime != nil {
		return o.runtime, nil
	}
	runtime, err := app.Build(app.Options{LoadDotEnv: true, Quiet: o.Quiet})
	if err != nil {
		return nil, err
	}
	o.runtime = runtime
	return runtime, nil
}

// NewRootCommand creates the qms console root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "qms",
		Short:        "Hospital quality-management console",
		Long:         "Terminal console for the hospital quality-management system: documents, risks, action plans, indicators, committees and configuration.",
		Version:      app.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.runtime != nil {
				opts.runtime.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress request logs")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewPasswdCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewDashboardCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewMyWorkCommand(opts))

	for _, descriptor := range resource.Registry() {
		resourceCmd := newResourceCommand(opts, descriptor)
		if descriptor.Key == "risks" {
			resourceCmd.AddCommand(NewRiskMatrixCommand(opts))
		}
		cmd.AddCommand(resourceCmd)
	}

	return cmd
}

func isValidFormat(format string) bool {
	for _, valid := range validFormats {
		if format == valid {
			return true
		}
	}
	return false
}
