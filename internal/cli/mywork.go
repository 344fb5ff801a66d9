package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
)

type myWorkSection struct {
	Pending int              `json:"pending"`
	Overdue int              `json:"overdue"`
	Open    int              `json:"open"`
	Items   []map[string]any `json:"items"`
}

type myWorkResponse struct {
	Actions        myWorkSection `json:"actions"`
	Commitments    myWorkSection `json:"commitments"`
	SupportTickets myWorkSection `json:"supportTickets"`
}

// NewMyWorkCommand creates the my-work command: the signed-in user's assigned
// actions, commitments and support tickets.
func NewMyWorkCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "my-work",
		Short: "Show your assigned work",
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

			var response myWorkResponse
			if err := runtime.Client.Get(cmd.Context(), "/my-work", &response); err != nil {
				return errors.New(api.UserMessage(err, "could not load your work"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(response)
			}

			formatter.Line("Actions: %d pending, %d overdue", response.Actions.Pending, response.Actions.Overdue)
			printItems(formatter, response.Actions.Items, "title")
			formatter.Line("Commitments: %d pending, %d overdue", response.Commitments.Pending, response.Commitments.Overdue)
			printItems(formatter, response.Commitments.Items, "description")
			formatter.Line("Support tickets: %d open", response.SupportTickets.Open)
			printItems(formatter, response.SupportTickets.Items, "subject")
			return nil
		},
	}
}

func printItems(formatter *Formatter, items []map[string]any, titleKey string) {
	for _, item := range items {
		title, _ := item[titleKey].(string)
		if title == "" {
			continue
		}
		formatter.Line("  - %s", title)
	}
}
