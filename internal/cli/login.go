package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
	"qms-console/internal/session"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate against the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			runtime.SetRoute(session.RouteLogin)

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			result, err := runtime.Session.Login(cmd.Context(), args[0], password)
			if err != nil {
				return errors.New(api.UserMessage(err, "login failed"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(result)
			}

			name := args[0]
			if result.User != nil && result.User.Name != "" {
				name = result.User.Name
			}
			formatter.Line("Logged in as %s", name)
			if result.MustChangePassword {
				formatter.Line("Your password must be changed before continuing: run `qms passwd`")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}
