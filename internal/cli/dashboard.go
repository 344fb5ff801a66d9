package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"qms-console/app"
	"qms-console/internal/api"
	"qms-console/internal/view"
)

type dashboardSummary struct {
	Documents struct {
		Total int `json:"total"`
	} `json:"documents"`
	Indicators struct {
		Total int `json:"total"`
	} `json:"indicators"`
	Risks struct {
		Open int `json:"open"`
	} `json:"risks"`
	Commitments struct {
		Pending int `json:"pending"`
	} `json:"commitments"`
}

// NewDashboardCommand creates the executive dashboard command: KPIs, risks
// grouped by process, the 5x5 matrix and upcoming deadlines.
func NewDashboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Executive overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := opts.Runtime()
			if err != nil {
				return err
			}
			if err := runtime.Session.EnsureProfile(cmd.Context()); err != nil {
				return errors.New(api.UserMessage(err, "could not load profile"))
			}

			summary, risks, actions, commitments, err := loadDashboard(cmd.Context(), runtime)
			if err != nil {
				return errors.New(api.UserMessage(err, "could not load dashboard data"))
			}

			byProcess := view.GroupByProcess(risks, 8)
			matrix := view.BuildMatrix(risks)
			deadlines := view.UpcomingDeadlines(actions, commitments, time.Now())

			formatter := &Formatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if formatter.IsJSON() {
				return formatter.JSON(map[string]any{
					"summary":           summary,
					"risksByProcess":    byProcess,
					"matrix":            matrix,
					"upcomingDeadlines": deadlines,
				})
			}

			formatter.Line("Documents: %d  Indicators: %d  Open risks: %d  Pending commitments: %d",
				summary.Documents.Total, summary.Indicators.Total, summary.Risks.Open, summary.Commitments.Pending)

			if len(byProcess) > 0 {
				formatter.Line("")
				formatter.Line("Risks by process:")
				for _, group := range byProcess {
					formatter.Line("  %-40s %d", group.Process, group.Count)
				}
			}

			formatter.Line("")
			renderMatrix(formatter, matrix)

			formatter.Line("")
			if len(deadlines) == 0 {
				formatter.Line("No deadlines in the next 15 days")
				return nil
			}
			formatter.Line("Upcoming deadlines:")
			for _, deadline := range deadlines {
				formatter.Line("  %2dd  [%s] %s", deadline.Days, deadline.Kind, deadline.Title)
			}
			return nil
		},
	}
}

func loadDashboard(ctx context.Context, runtime *app.Runtime) (dashboardSummary, []view.Risk, []view.Action, []view.Commitment, error) {
	var summary dashboardSummary
	if err := runtime.Client.Get(ctx, "/dashboard/summary", &summary); err != nil {
		return summary, nil, nil, nil, err
	}

	var rawRisks, rawActions, rawCommitments json.RawMessage
	if err := runtime.Client.Get(ctx, "/risks/", &rawRisks); err != nil {
		return summary, nil, nil, nil, err
	}
	if err := runtime.Client.Get(ctx, "/actions/", &rawActions); err != nil {
		return summary, nil, nil, nil, err
	}
	if err := runtime.Client.Get(ctx, "/commitments/", &rawCommitments); err != nil {
		return summary, nil, nil, nil, err
	}

	return summary,
		view.DecodeCollection[view.Risk](rawRisks),
		view.DecodeCollection[view.Action](rawActions),
		view.DecodeCollection[view.Commitment](rawCommitments),
		nil
}

// renderMatrix prints the heat map with probability descending, the way the
// board displays it.
func renderMatrix(formatter *Formatter, matrix view.Matrix) {
	formatter.Line("Risk matrix (probability x severity):")
	for p := 4; p >= 0; p-- {
		row := ""
		for s := 0; s < 5; s++ {
			cell := matrix[p][s]
			row += cellBadge(cell)
		}
		formatter.Line("  P%d %s", p+1, row)
	}
	formatter.Line("      S1      S2      S3      S4      S5")
	formatter.Line("  zones: . low  - moderate  + high  # extreme")
}

func cellBadge(cell view.Cell) string {
	marker := map[view.Zone]string{
		view.ZoneLow:      ".",
		view.ZoneModerate: "-",
		view.ZoneHigh:     "+",
		view.ZoneExtreme:  "#",
	}[cell.Zone]
	if len(cell.Items) > 0 {
		return fmt.Sprintf("%-8s", fmt.Sprintf("%s%d:%d", marker, cell.Level, len(cell.Items)))
	}
	return fmt.Sprintf("%-8s", fmt.Sprintf("%s%d", marker, cell.Level))
}
