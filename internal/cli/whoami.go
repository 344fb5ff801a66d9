package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
	"qms-console/internal/view"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}

			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}
			if !runtime.Session.IsAuthenticated() {
				return errors.New("not authenticated, run `qms login` first")
			}

			user := runtime.Session.User()
			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(user)
			}

			display := user.Name
			if display == "" {
				display = user.Username
			}
			formatter.Line("%s  %s", view.Initials(display), display)
			formatter.Line("Username: %s", user.Username)
			if user.Email != "" {
				formatter.Line("Email: %s", user.Email)
			}
			formatter.Line("Roles: %s", strings.Join(user.Roles, ", "))
			if expiry, ok := runtime.Session.TokenExpiry(); ok {
				formatter.Line("Token expires: %s", expiry.UTC().Format(time.RFC3339))
			}
			if user.MustChangePassword {
				formatter.Line("Password change required: run `qms passwd`")
			}
			return nil
		},
	}
}
