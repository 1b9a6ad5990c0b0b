package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/pvoil/internal/domain/models"
	"github.com/mamadbah2/pvoil/internal/service/reporting"
)

var (
	pricesDate    string
	pricesChanges bool
)

func init() {
	pricesCmd.Flags().StringVar(&pricesDate, "date", "", "Show the prices of a DD/MM/YYYY date instead of the latest.")
	pricesCmd.Flags().BoolVar(&pricesChanges, "changes", false, "Show the latest prices next to the previous ones.")
	rootCmd.AddCommand(pricesCmd)
}

var pricesCmd = &cobra.Command{
	Use:   "prices [--date DD/MM/YYYY] [--changes]",
	Short: "Prints prices recorded in the ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newBaseApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close(ctx) }()

		if pricesChanges {
			changes, err := a.reporting.Changes(ctx)
			if err != nil {
				return err
			}
			renderChanges(cmd.OutOrStdout(), changes)
			return nil
		}

		var snap reporting.Snapshot
		if pricesDate != "" {
			date, err := models.ParseDate(pricesDate)
			if err != nil {
				return err
			}
			snap, err = a.reporting.OnDate(ctx, date)
			if err != nil {
				return err
			}
		} else {
			snap, err = a.reporting.Latest(ctx)
			if err != nil {
				return err
			}
		}

		renderSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderSnapshot(out io.Writer, snap reporting.Snapshot) {
	t := newTable(out)
	t.SetTitle("Prices on " + models.FormatDate(snap.Date))
	t.AppendHeader(table.Row{"Item", "Price (VND)"})
	for _, rec := range snap.Prices {
		t.AppendRow(table.Row{rec.ItemName, rec.Price})
	}
	t.Render()
}

func renderChanges(out io.Writer, changes []models.PriceChange) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item", "Date", "Price (VND)", "Previous", "Delta"})
	for _, ch := range changes {
		previous, delta := "-", "-"
		if ch.HasPrevious {
			previous = fmt.Sprintf("%d (%s)", ch.PreviousPrice, models.FormatDate(*ch.PreviousDate))
			delta = fmt.Sprintf("%+d", ch.Delta)
		}
		t.AppendRow(table.Row{ch.ItemName, models.FormatDate(ch.Date), ch.Price, previous, delta})
	}
	t.Render()
}
