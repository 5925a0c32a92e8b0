package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Player administration (admin only)",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "Manage player accounts",
	}
	users.AddCommand(newAdminUsersListCmd())
	users.AddCommand(newAdminUsersCreateCmd())
	users.AddCommand(newAdminUsersUpdateCmd())
	users.AddCommand(newAdminUsersToggleCmd())
	users.AddCommand(newAdminUsersResetCmd())
	users.AddCommand(newAdminUsersDeleteCmd())

	cmd.AddCommand(users)
	cmd.AddCommand(newAdminCluesCmd())

	return cmd
}

func userPath(id string, suffix string) string {
	return "/api/v1/admin/users/" + url.PathEscape(id) + suffix
}

func newAdminUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Account

			if err := client.Get("/api/v1/admin/users", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newAdminUsersCreateCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result Account

			if err := client.Post("/api/v1/admin/users", req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAdminUsersUpdateCmd() *cobra.Command {
	var (
		active bool
		pass   string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a player's password or active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("active") {
				req["active"] = active
			}
			if cmd.Flags().Changed("pass") {
				req["password"] = pass
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update: pass --active and/or --pass")
			}

			var result Account

			if err := client.Patch(userPath(args[0], ""), req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", true, "Whether the player may log in")
	cmd.Flags().StringVar(&pass, "pass", "", "New password")

	return cmd
}

func newAdminUsersToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a player's active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Patch(userPath(args[0], "/toggle"), nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newAdminUsersResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Send a player back to the first clue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Post(userPath(args[0], "/reset"), nil, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newAdminUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult

			if err := client.Delete(userPath(args[0], ""), &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newAdminCluesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clues",
		Short: "Print every location with its secret code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []AdminClue

			if err := client.Get("/api/v1/admin/clues", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}
