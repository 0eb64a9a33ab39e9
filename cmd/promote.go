package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/promote"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <search-id> [token...]",
	Short: "Promote archived results into contacts and companies",
	Long:  "Turns archived search results into contact and company rows and moves the company onto the target list. With --all, every unpromoted result of the search is processed.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		searchID := args[0]
		tokens := args[1:]

		all, _ := cmd.Flags().GetBool("all")
		listID, _ := cmd.Flags().GetString("list")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		upsert, _ := cmd.Flags().GetBool("upsert")
		refresh, _ := cmd.Flags().GetBool("refresh")

		if listID == "" {
			listID = cfg.Defaults.ListID
		}

		if all {
			for _, r := range env.Archiver.Results(ctx, searchID) {
				if !r.AddedToList {
					tokens = append(tokens, r.Token)
				}
			}
		}
		if len(tokens) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to promote.")
			return nil
		}

		p := env.Promoter(promote.Options{UpsertContacts: upsert, Refresh: refresh})
		results := p.PromoteBatch(ctx, cfg.Defaults.OwnerID, searchID, tokens, listID,
			promote.BatchOptions{Concurrency: concurrency})

		ok, failed := 0, 0
		for _, r := range results {
			if r.Err != "" {
				failed++
				fmt.Fprintf(os.Stderr, "failed %s: %s\n", r.Token, r.Err)
				continue
			}
			ok++
			fmt.Printf("promoted %s -> contact %s (company %s)\n", r.Token, r.ContactID, r.CompanyID)
		}
		fmt.Printf("%d promoted, %d failed\n", ok, failed)
		return nil
	},
}

func init() {
	promoteCmd.Flags().Bool("all", false, "promote every unpromoted result of the search")
	promoteCmd.Flags().String("list", "", "target list id (default from config)")
	promoteCmd.Flags().Int("concurrency", 1, "parallel promotions")
	promoteCmd.Flags().Bool("upsert", false, "update existing contacts by provider id instead of inserting")
	promoteCmd.Flags().Bool("refresh", false, "fetch a fresh record from the enrichment webhook")
	rootCmd.AddCommand(promoteCmd)
}
