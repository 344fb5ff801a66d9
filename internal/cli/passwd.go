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

// NewPasswdCommand creates the change-password command.
func NewPasswdCommand(opts *RootOptions) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the current user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			runtime.SetRoute(session.RouteChangePassword)

			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}
			if !runtime.Session.IsAuthenticated() {
				return errors.New("not authenticated, run `qms login` first")
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if current == "" {
				current, err = promptLine(cmd, reader, "Current password: ")
				if err != nil {
					return err
				}
			}
			if next == "" {
				next, err = promptLine(cmd, reader, "New password: ")
				if err != nil {
					return err
				}
			}
			if current == "" || next == "" {
				return errors.New("both passwords are required")
			}

			if err := runtime.Session.ChangePassword(cmd.Context(), current, next); err != nil {
				return errors.New(api.UserMessage(err, "could not change password"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(map[string]string{"status": "password_changed"})
			}
			formatter.Line("Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "current password (prompted when omitted)")
	cmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")
	return cmd
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
