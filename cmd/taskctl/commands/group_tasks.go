package commands

import (
	"fmt"
	"os"

	"taskmanager/internal/dto"

	"github.com/spf13/cobra"
)

func newGroupTasksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group-tasks",
		Short: "Shared group task commands",
	}
	cmd.AddCommand(
		newGroupTasksListCommand(a),
		newGroupTasksAssignCommand(a),
		newGroupTasksStatusCommand(a),
		newGroupTasksDeleteCommand(a),
		newGroupTasksStatsCommand(a),
		newGroupTasksReportCommand(a),
	)
	return cmd
}

func newGroupTasksListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [groupId]",
		Short: "List the tasks of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			tasks, err := c.ListGroupTasks(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tasks)
		},
	}
}

func newGroupTasksAssignCommand(a *app) *cobra.Command {
	var req dto.AssignGroupTaskRequest

	cmd := &cobra.Command{
		Use:   "assign [groupId]",
		Short: "Assign a task to group members (Admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.AssignGroupTask(ctx, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.TaskID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "description")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringSliceVarP(&req.AssignedTo, "assign", "a", nil, "assignee user id (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("assign")
	return cmd
}

func newGroupTasksStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [groupId] [taskId] [status]",
		Short: "Change the status of a group task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, s, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			task, err := c.UpdateGroupTaskStatus(ctx, args[0], args[1], dto.UpdateGroupTaskStatusRequest{
				Status:    args[2],
				UpdatedBy: s.Username,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), task)
		},
	}
}

func newGroupTasksDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [groupId] [taskId]",
		Short: "Delete a group task (Admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.DeleteGroupTask(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Group task deleted")
			return nil
		},
	}
}

func newGroupTasksStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [groupId]",
		Short: "Show task counts by status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			stats, err := c.GroupTaskStats(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newGroupTasksReportCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report [groupId]",
		Short: "Download the PDF report of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			pdf, err := c.GroupReport(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = "grupo-" + args[0] + ".pdf"
			}
			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	return cmd
}
