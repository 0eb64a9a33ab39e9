package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/lead"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Manage prospect lists",
	Long:  "Creates lists and moves companies between them. A company lives on exactly one list; moving it removes every other membership.",
}

var listsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		description, _ := cmd.Flags().GetString("description")
		l := &lead.List{OwnerID: cfg.Defaults.OwnerID, Name: args[0], Description: description}
		if err := env.Store.CreateList(ctx, l); err != nil {
			return err
		}
		fmt.Printf("created list %s (%s)\n", l.Name, l.ID)
		return nil
	},
}

var listsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all lists",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		all, err := env.Store.ListLists(ctx, cfg.Defaults.OwnerID)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Fprintln(os.Stderr, "No lists.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, l := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, l.Description)
		}
		return w.Flush()
	},
}

var listsShowCmd = &cobra.Command{
	Use:   "show <list-id>",
	Short: "Show the companies on a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		companies, err := env.Store.ListCompaniesInList(ctx, args[0])
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Fprintln(os.Stderr, "List is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tWEBSITE\tCITY")
		for _, c := range companies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Website, c.City)
		}
		return w.Flush()
	},
}

var listsMoveCmd = &cobra.Command{
	Use:   "move <company-id> <list-id>",
	Short: "Move a company onto a list, leaving every other list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Lists.Move(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("moved company %s to list %s\n", args[0], args[1])
		return nil
	},
}

var listsAddCmd = &cobra.Command{
	Use:   "add <company-id> <list-id>",
	Short: "Add a company to a list without leaving its other lists",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Lists.Add(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("added company %s to list %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	listsCreateCmd.Flags().String("description", "", "list description")
	listsCmd.AddCommand(listsCreateCmd, listsLsCmd, listsShowCmd, listsMoveCmd, listsAddCmd)
	rootCmd.AddCommand(listsCmd)
}
