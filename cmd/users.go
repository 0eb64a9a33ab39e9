package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/lead"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Administer dashboard users",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		name, _ := cmd.Flags().GetString("name")
		admin, _ := cmd.Flags().GetBool("admin")

		existing, err := env.Store.GetUserByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		if existing != nil {
			return eris.Errorf("user already exists: %s", args[0])
		}

		u := &lead.User{Email: args[0], Name: name, IsAdmin: admin}
		if err := env.Store.CreateUser(ctx, u); err != nil {
			return err
		}
		fmt.Printf("created user %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var usersLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		users, err := env.Store.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(os.Stderr, "No users.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tADMIN")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", u.ID, u.Email, u.Name, u.IsAdmin)
		}
		return w.Flush()
	},
}

var usersAdminCmd = &cobra.Command{
	Use:   "admin <user-id>",
	Short: "Grant or revoke the admin flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		revoke, _ := cmd.Flags().GetBool("revoke")
		if err := env.Store.SetUserAdmin(ctx, args[0], !revoke); err != nil {
			return err
		}
		if revoke {
			fmt.Printf("revoked admin from %s\n", args[0])
		} else {
			fmt.Printf("granted admin to %s\n", args[0])
		}
		return nil
	},
}

var usersRmCmd = &cobra.Command{
	Use:   "rm <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.DeleteUser(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted user %s\n", args[0])
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage dashboard settings",
	Long:  "Settings stored here are overlaid on the file configuration at startup, so keys and webhook URLs can be rotated without a deploy.",
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.SetSetting(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("set %s\n", args[0])
		return nil
	},
}

var settingsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		settings, err := env.Store.GetSettings(ctx)
		if err != nil {
			return err
		}
		if len(settings) == 0 {
			fmt.Fprintln(os.Stderr, "No settings.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for k, v := range settings {
			fmt.Fprintf(w, "%s\t%s\n", k, v)
		}
		return w.Flush()
	},
}

func init() {
	usersAddCmd.Flags().String("name", "", "display name")
	usersAddCmd.Flags().Bool("admin", false, "create as admin")
	usersAdminCmd.Flags().Bool("revoke", false, "revoke instead of grant")
	usersCmd.AddCommand(usersAddCmd, usersLsCmd, usersAdminCmd, usersRmCmd)
	settingsCmd.AddCommand(settingsSetCmd, settingsLsCmd)
	rootCmd.AddCommand(usersCmd, settingsCmd)
}
