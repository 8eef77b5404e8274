package commands

import (
	"fmt"
	"strconv"

	"taskmanager/internal/dto"
	"taskmanager/internal/model"

	"github.com/spf13/cobra"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration (Admin, Master)",
	}
	cmd.AddCommand(
		newUsersListCommand(a),
		newUsersUpdateCommand(a),
		newUsersDeleteCommand(a),
	)
	return cmd
}

func newUsersListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			users, err := c.ListUsers(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newUsersUpdateCommand(a *app) *cobra.Command {
	var username, email, role string

	cmd := &cobra.Command{
		Use:   "update [userId]",
		Short: "Change username, e-mail or role of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			var req dto.UpdateUserRequest
			flags := cmd.Flags()
			if flags.Changed("username") {
				req.Username = &username
			}
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("role") {
				r, err := parseRole(role)
				if err != nil {
					return err
				}
				req.Role = &r
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			user, err := c.UpdateUser(ctx, args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "new username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "new e-mail")
	cmd.Flags().StringVarP(&role, "role", "r", "", "new role: admin, member, master or 1-3")
	return cmd
}

func newUsersDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [userId]",
		Short: "Delete a user with their tasks and memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "User deleted")
			return nil
		},
	}
}

func parseRole(raw string) (model.Role, error) {
	switch raw {
	case "admin":
		return model.RoleAdmin, nil
	case "member":
		return model.RoleMember, nil
	case "master":
		return model.RoleMaster, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !model.Role(n).Valid() {
		return 0, fmt.Errorf("invalid role %q", raw)
	}
	return model.Role(n), nil
}
