package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rangetrader/internal/runner"
	"github.com/rustyeddy/rangetrader/journal"
)

type storeFlags struct {
	journal string
	db      string
	dsn     string
}

func (s *storeFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&s.journal, "journal", "", "Journal: sqlite|postgres (defaults to journal.type)")
	cmd.PersistentFlags().StringVar(&s.db, "db", "", "SQLite journal database")
	cmd.PersistentFlags().StringVar(&s.dsn, "dsn", "", "Postgres DSN")
}

func (s *storeFlags) open(rc *RootConfig) (*journal.SQLJournal, error) {
	jc := rc.Config.Journal
	if s.journal != "" {
		jc.Type = s.journal
	}
	if s.db != "" {
		jc.DBPath = s.db
		if s.journal == "" {
			jc.Type = "sqlite"
		}
	}
	if s.dsn != "" {
		jc.DSN = s.dsn
		if s.journal == "" {
			jc.Type = "postgres"
		}
	}

	switch jc.Type {
	case "sqlite":
		if jc.DBPath == "" {
			return nil, fmt.Errorf("--db is required for the sqlite journal")
		}
		return journal.NewSQLite(jc.DBPath)
	case "postgres":
		if jc.DSN == "" {
			return nil, fmt.Errorf("--dsn is required for the postgres journal")
		}
		return journal.NewPostgres(jc.DSN)
	}
	return nil, fmt.Errorf("runs are only stored by the sqlite and postgres journals, got %q", jc.Type)
}

func newRunsCmd(rc *RootConfig) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect backtest runs recorded in a database journal",
	}
	sf.register(cmd)

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := sf.open(rc)
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tCREATED\tSTRATEGY\tDATASET\tTRADES\tWIN %\tNET\tSHARPE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\n",
					r.RunID, r.Created.Format("2006-01-02 15:04"), r.Strategy, r.Dataset,
					r.Summary.Trades, r.Summary.WinRate, r.Summary.NetCurrency, r.Summary.Sharpe)
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with statistics recomputed from its trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := sf.open(rc)
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			trades, err := j.ListTradesByRunID(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}
			run.Summary = journal.Summarize(trades)
			runner.PrintRun(cmd.OutOrStdout(), run)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
