package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/billrelay/internal/tracker"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List sent statements",
	Long:  "Lists the send history, or exports it to an Excel workbook with --xlsx.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		tr, err := openTracker(ctx, cfg)
		if err != nil {
			return err
		}
		defer tr.Close() //nolint:errcheck

		records, err := tr.List(ctx)
		if err != nil {
			return eris.Wrap(err, "history")
		}

		if xlsxPath != "" {
			f, err := os.Create(xlsxPath)
			if err != nil {
				return eris.Wrap(err, "create workbook")
			}
			if err := tracker.ExportXLSX(records, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return eris.Wrap(err, "close workbook")
			}
			cmd.Printf("Wrote %d records to %s\n", len(records), xlsxPath)
			return nil
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No statements sent yet.")
			return nil
		}
		formatHistory(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("xlsx", "", "export the history to this .xlsx file")
	rootCmd.AddCommand(historyCmd)
}

func formatHistory(w io.Writer, records []tracker.SendRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT\tMONTH\tGAS\tWATER/TRASH\tRENT\tTOTAL\tTENANT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d-%02d\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp,
			r.Year,
			r.Month,
			r.GasAmount,
			r.TrashAmount,
			r.RentAmount,
			r.TotalAmount,
			r.TenantEmail,
		)
	}
	tw.Flush()
}
