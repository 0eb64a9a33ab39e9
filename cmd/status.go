package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dashboard counts and promotion backlog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := env.Collector.Collect(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Companies\t%d\n", snap.Companies)
		fmt.Fprintf(w, "Contacts\t%d\n", snap.Contacts)
		fmt.Fprintf(w, "Lists\t%d\n", snap.Lists)
		fmt.Fprintf(w, "Searches\t%d\n", snap.Searches)
		fmt.Fprintf(w, "Archived results\t%d\n", snap.ArchivedResults)
		fmt.Fprintf(w, "Promoted results\t%d\n", snap.PromotedResults)
		fmt.Fprintf(w, "Archive backlog\t%d\n", snap.ArchiveBacklog)
		fmt.Fprintf(w, "Promoted ratio\t%.1f%%\n", snap.PromotedRatio*100)
		return w.Flush()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run store migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, migrateCmd)
}
