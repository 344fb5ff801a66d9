package cli

import (
	"github.com/spf13/cobra"
)

// NewLogoutCommand creates the logout command. The backend call is best
// effort; the local session always ends.
func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}

			runtime.Session.Logout(cmd.Context())
			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(map[string]string{"status": "logged_out"})
			}
			formatter.Line("Logged out")
			return nil
		},
	}
}
