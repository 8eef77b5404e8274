package commands

import (
	"fmt"

	"taskmanager/internal/dto"

	"github.com/spf13/cobra"
)

func newTasksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Personal task commands",
	}
	cmd.AddCommand(
		newTasksListCommand(a),
		newTasksCreateCommand(a),
		newTasksUpdateCommand(a),
		newTasksDeleteCommand(a),
	)
	return cmd
}

func newTasksListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			tasks, err := c.ListTasks(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tasks)
		},
	}
}

func newTasksCreateCommand(a *app) *cobra.Command {
	var (
		req    dto.CreateTaskRequest
		amount int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("time") {
				req.Time = &amount
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			resp, err := c.CreateTask(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.TaskID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "task name")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&req.Status, "status", "s", "", "status label, e.g. \"In Progress\"")
	cmd.Flags().IntVar(&amount, "time", 0, "deadline offset amount")
	cmd.Flags().StringVar(&req.TimeUnit, "unit", "", "deadline offset unit (minutes, hours, days, weeks)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newTasksUpdateCommand(a *app) *cobra.Command {
	var (
		name, description, category, status, unit string
		amount                                    int
	)

	cmd := &cobra.Command{
		Use:   "update [taskId]",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			// Only flags that were set end up in the patch.
			var req dto.UpdateTaskRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("description") {
				req.Description = &description
			}
			if flags.Changed("category") {
				req.Category = &category
			}
			if flags.Changed("status") {
				req.Status = &status
			}
			if flags.Changed("time") {
				req.Time = &amount
			}
			if flags.Changed("unit") {
				req.TimeUnit = &unit
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			task, err := c.UpdateTask(ctx, args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), task)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "task name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&status, "status", "s", "", "status label")
	cmd.Flags().IntVar(&amount, "time", 0, "deadline offset amount, from now")
	cmd.Flags().StringVar(&unit, "unit", "", "deadline offset unit")
	return cmd
}

func newTasksDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [taskId]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.authed()
			if err != nil {
				return err
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()
			if err := c.DeleteTask(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
			return nil
		},
	}
}
