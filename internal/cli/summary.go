package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rangetrader/internal/runner"
	"github.com/rustyeddy/rangetrader/journal"
)

func newSummaryCmd(rc *RootConfig) *cobra.Command {
	var orgPath string

	cmd := &cobra.Command{
		Use:   "summary <ledger.csv>",
		Short: "Summarize an existing trade ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			trades, err := journal.LoadLedger(path)
			if err != nil {
				return err
			}

			run := journal.Run{
				Strategy:   journal.StrategyName,
				Dataset:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Summary:    journal.Summarize(trades),
				LedgerPath: path,
				OrgPath:    orgPath,
			}
			if len(trades) > 0 {
				run.Start = trades[0].EntryTime
				run.End = trades[len(trades)-1].ExitTime
			}
			if orgPath != "" {
				if err := run.SaveOrg(); err != nil {
					return err
				}
			}
			runner.PrintRun(cmd.OutOrStdout(), run)
			return nil
		},
	}

	cmd.Flags().StringVar(&orgPath, "org", "", "Also write an Org report to this path")
	return cmd
}
