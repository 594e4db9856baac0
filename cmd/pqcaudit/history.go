// ABOUTME: The history subcommand: lists previously recorded scans.
// ABOUTME: Reads from the SQLite history database configured in the tool config.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arcqubit/pqcaudit/internal/history"
)

var (
	historyLimit  int
	historyTarget string
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		var entries []history.Entry
		if historyTarget != "" {
			entries, err = store.ForTarget(historyTarget)
		} else {
			entries, err = store.List(historyLimit)
		}
		if err != nil {
			return err
		}

		if historyJSON {
			return emitJSON(entries, "")
		}

		if len(entries) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCANNED\tTARGET\tLANG\tFINDINGS\tRISK\tCOMPLIANCE\tPENALTY\tCLASSIFICATION")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				e.ScannedAt.Format("2006-01-02 15:04:05"),
				e.Target, e.Language, e.TotalFindings,
				e.RiskScore, e.Compliance, e.Penalty, e.Classification)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show (0 = all)")
	historyCmd.Flags().StringVarP(&historyTarget, "target", "t", "", "Show history for one target only")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}
