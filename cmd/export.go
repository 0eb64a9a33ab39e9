package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export companies and contacts to a spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = "prospects." + string(format)
		}
		listID, _ := cmd.Flags().GetString("list")
		contacts, _ := cmd.Flags().GetBool("contacts")

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := env.Exporter.Export(ctx, cfg.Defaults.OwnerID, export.Options{
			ListID:          listID,
			IncludeContacts: contacts,
			Format:          format,
		}, f)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %d companies to %s\n", n, out)
		return nil
	},
}

var exportCRMCmd = &cobra.Command{
	Use:   "crm <company-id>",
	Short: "Push a company and its contacts to the CRM export webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Exporter.ExportCRM(ctx, env.Hooks, args[0]); err != nil {
			return err
		}
		fmt.Printf("company %s exported to CRM\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "xlsx", "output format: xlsx or csv")
	exportCmd.Flags().String("out", "", "output path (default prospects.<format>)")
	exportCmd.Flags().String("list", "", "restrict to one list")
	exportCmd.Flags().Bool("contacts", false, "include a contacts sheet")
	exportCmd.AddCommand(exportCRMCmd)
	rootCmd.AddCommand(exportCmd)
}
