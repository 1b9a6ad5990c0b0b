package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetches prices for dates newer than the ledger and appends them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newSyncApp(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(ctx) }()

		report, err := a.sync.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), describeRun(report))
		return nil
	},
}

func describeRun(report models.RunReport) string {
	if report.Status == models.RunNoop {
		return fmt.Sprintf("ledger already up to date (latest %s)", report.LowWaterMark)
	}

	line := fmt.Sprintf("added %d records for %s (%d total)",
		report.NewRecords, strings.Join(report.FetchedDates, ", "), report.TotalRecords)
	if len(report.SkippedDates) > 0 {
		line += fmt.Sprintf("; skipped %s", strings.Join(report.SkippedDates, ", "))
	}
	if !report.Published {
		line += "; not published"
	}
	return line
}
