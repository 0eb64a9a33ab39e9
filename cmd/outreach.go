package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/outreach"
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Render and send template outreach email",
}

func templateName(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("template")
	if name == "" {
		name = cfg.Defaults.Template
	}
	return name
}

var outreachRenderCmd = &cobra.Command{
	Use:   "render <contact-id>",
	Short: "Render an email without sending it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		msg, err := env.Outreach.Render(ctx, cfg.Defaults.OwnerID, templateName(cmd), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("To: %s\nSubject: %s\n\n%s\n", msg.To, msg.Subject, msg.Body)
		return nil
	},
}

var outreachSendCmd = &cobra.Command{
	Use:   "send <contact-id>",
	Short: "Render an email and dispatch it through the email webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		msg, err := env.Outreach.Send(ctx, cfg.Defaults.OwnerID, templateName(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("sent %q to %s\n", msg.Subject, msg.To)
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage outreach templates",
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import templates from a YAML seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var seeds []outreach.SeedTemplate
		if err := yaml.Unmarshal(data, &seeds); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Outreach.ImportSeeds(ctx, cfg.Defaults.OwnerID, seeds)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d templates\n", n)
		return nil
	},
}

var templatesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := env.Store.ListTemplates(ctx, cfg.Defaults.OwnerID)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Fprintln(os.Stderr, "No templates.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSUBJECT")
		for _, t := range all {
			fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Subject)
		}
		return w.Flush()
	},
}

func init() {
	outreachRenderCmd.Flags().String("template", "", "template name (default from config)")
	outreachSendCmd.Flags().String("template", "", "template name (default from config)")
	outreachCmd.AddCommand(outreachRenderCmd, outreachSendCmd)
	templatesCmd.AddCommand(templatesImportCmd, templatesLsCmd)
	rootCmd.AddCommand(outreachCmd, templatesCmd)
}
