package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"

	"qms-console/internal/api"
)

type searchResponse struct {
	Query   string `json:"query"`
	Count   int    `json:"count"`
	Results []struct {
		Type  string `json:"type"`
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"results"`
}

// NewSearchCommand creates the global search command.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search across processes, documents, risks, actions and indicators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			var response searchResponse
			path := "/search?q=" + url.QueryEscape(args[0])
			if err := runtime.Client.Get(cmd.Context(), path, &response); err != nil {
				return errors.New(api.UserMessage(err, "search failed"))
			}

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(response)
			}

			if len(response.Results) == 0 {
				formatter.Line("no results for %q", args[0])
				return nil
			}
			rows := make([][]string, 0, len(response.Results))
			for _, result := range response.Results {
				rows = append(rows, []string{result.Type, result.ID, result.Title})
			}
			formatter.Table([]string{"type", "id", "title"}, rows)
			return nil
		},
	}
}
