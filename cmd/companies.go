package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Inspect and edit company records",
}

var companiesShowCmd = &cobra.Command{
	Use:   "show <company-id>",
	Short: "Print a company record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company, err := env.Store.GetCompany(ctx, args[0])
		if err != nil {
			return err
		}
		if company == nil {
			return eris.Errorf("company not found: %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(company)
	},
}

var companiesTagCmd = &cobra.Command{
	Use:   "tag <company-id> [tag...]",
	Short: "Replace a company's tags",
	Long:  "Replaces the full tag set. Pass no tags to clear it.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company, err := env.Store.GetCompany(ctx, args[0])
		if err != nil {
			return err
		}
		if company == nil {
			return eris.Errorf("company not found: %s", args[0])
		}

		tags := args[1:]
		if err := env.Store.SetCompanyTags(ctx, args[0], tags); err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Printf("cleared tags on %s\n", args[0])
		} else {
			fmt.Printf("tagged %s: %s\n", args[0], strings.Join(tags, ", "))
		}
		return nil
	},
}

func init() {
	companiesCmd.AddCommand(companiesShowCmd, companiesTagCmd)
	rootCmd.AddCommand(companiesCmd)
}
