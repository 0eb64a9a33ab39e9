package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/lead"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate and view company insights",
}

func insightKind(s string) (lead.InsightKind, error) {
	switch s {
	case "content-audit":
		return lead.InsightContentAudit, nil
	case "facebook-ads":
		return lead.InsightFacebookAds, nil
	case "similar-companies":
		return lead.InsightSimilarCompanies, nil
	default:
		return "", eris.Errorf("unknown insight kind %q (content-audit, facebook-ads, similar-companies)", s)
	}
}

var insightsGenerateCmd = &cobra.Command{
	Use:   "generate <company-id>",
	Short: "Run an insight webhook against a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, err := insightKind(kindFlag)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		ins, err := env.Insights.Generate(ctx, args[0], kind)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ins)
	},
}

var insightsShowCmd = &cobra.Command{
	Use:   "show <company-id>",
	Short: "Show the stored insights of a company",
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
		if len(company.Insights) == 0 {
			fmt.Fprintln(os.Stderr, "No insights.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(company.Insights)
	},
}

func init() {
	insightsGenerateCmd.Flags().String("kind", "content-audit", "insight kind: content-audit, facebook-ads, similar-companies")
	insightsCmd.AddCommand(insightsGenerateCmd, insightsShowCmd)
	rootCmd.AddCommand(insightsCmd)
}
