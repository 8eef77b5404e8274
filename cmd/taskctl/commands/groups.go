package commands

import (
	"fmt"

	"taskmanager/internal/dto"

	"github.com/spf13/cobra"
)

func newGroupsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group and membership commands",
	}
	cmd.AddCommand(
		newGroupsListCommand(a),
		newGroupsCreateCommand(a),
		newGroupsDeleteCommand(a),
		newGroupsMembersCommand(a),
		newGroupsAddMemberCommand(a),
		newGroupsRemoveMemberCommand(a),
	)
	return cmd
}

func newGroupsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			groups, err := c.ListGroups(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), groups)
		},
	}
}

func newGroupsCreateCommand(a *app) *cobra.Command {
	var req dto.CreateGroupRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group (Admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.CreateGroup(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.GroupID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "group name")
	cmd.Flags().StringSliceVarP(&req.Members, "member", "m", nil, "member user id (repeatable)")
	cmd.Flags().StringVarP(&req.Status, "status", "s", "", "group status")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGroupsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [groupId]",
		Short: "Delete a group and its tasks (Admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.DeleteGroup(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group deleted")
			return nil
		},
	}
}

func newGroupsMembersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "members [groupId]",
		Short: "List the members of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			users, err := c.GroupMembers(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newGroupsAddMemberCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-member [groupId] [userId]",
		Short: "Add a user to a group (Admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.AddMember(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member added")
			return nil
		},
	}
}

func newGroupsRemoveMemberCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member [groupId] [userId]",
		Short: "Remove a user from a group (Admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.RemoveMember(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member removed")
			return nil
		},
	}
}
