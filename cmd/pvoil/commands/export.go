package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/pvoil/internal/export"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "prices.xlsx", "The .xlsx file to write.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--out <path/to/prices.xlsx>]",
	Short: "Exports the ledger to an Excel workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBaseApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.close(cmd.Context()) }()

		records, err := a.ledger.Load(cmd.Context())
		if err != nil {
			return err
		}
		if err := export.WriteXLSX(records, exportOut); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d records to %s\n", len(records), exportOut)
		return nil
	},
}
