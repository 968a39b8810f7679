package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
)

var (
	flagTaskSprint   int64
	flagTaskAssignee string
	flagTaskStatus   string
	flagTaskPriority string
	flagArchived     bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and maintain tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(store *db.DB) error {
			ctx := cmd.Context()
			f := model.TaskFilter{IncludeArchived: flagArchived}
			if flagTaskSprint > 0 {
				f.SprintID = &flagTaskSprint
			}
			if flagTaskStatus != "" {
				status, err := model.ParseStatus(flagTaskStatus)
				if err != nil {
					return err
				}
				f.Status = &status
			}
			if flagTaskPriority != "" {
				priority, err := model.ParsePriority(flagTaskPriority)
				if err != nil {
					return err
				}
				f.Priority = &priority
			}
			if flagTaskAssignee != "" {
				u, err := store.GetUserByUsername(ctx, flagTaskAssignee)
				if err != nil {
					if db.IsNotFound(err) {
						return fmt.Errorf("user %q not found", flagTaskAssignee)
					}
					return err
				}
				f.AssignedTo = &u.ID
			}

			tasks, err := store.ListTasks(ctx, f)
			if err != nil {
				return err
			}
			users, err := store.ListUsers(ctx)
			if err != nil {
				return err
			}
			usernames := make(map[int64]string, len(users))
			for _, u := range users {
				usernames[u.ID] = u.Username
			}

			if flagJSON {
				out := make([]TaskJSON, 0, len(tasks))
				for _, t := range tasks {
					out = append(out, toTaskJSON(t, usernames))
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tDESCRIPTION\tSTATUS\tPRIORITY\tASSIGNEE\tSPRINT\tEST\tACT")
			for _, t := range tasks {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Description, t.Status, dash(string(t.Priority)),
					dash(assignee(t, usernames)), dash(idString(t.SprintID)),
					dash(hours(t.EstimatedHours)), dash(hours(t.ActualHours)))
			}
			return w.Flush()
		})
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a task's status",
	Long:  `Changes a task's status. Valid statuses: Pending, "In Progress", "In Review", Completed.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := model.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return withDB(func(store *db.DB) error {
			t, err := store.UpdateTaskStatus(cmd.Context(), id, status)
			if err != nil {
				if db.IsNotFound(err) {
					return fmt.Errorf("task %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", t.ID, t.Status)
			return nil
		})
	},
}

var taskArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Hide a task from the bot's listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(store *db.DB) error {
			if err := store.ArchiveTask(cmd.Context(), id); err != nil {
				if db.IsNotFound(err) {
					return fmt.Errorf("task %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived task %d\n", id)
			return nil
		})
	},
}

type TaskJSON struct {
	ID             int64    `json:"id"`
	Description    string   `json:"description"`
	Steps          string   `json:"steps,omitempty"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	SprintID       *int64   `json:"sprint_id,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
	Archived       bool     `json:"archived,omitempty"`
}

func toTaskJSON(t model.Task, usernames map[int64]string) TaskJSON {
	return TaskJSON{
		ID:             t.ID,
		Description:    t.Description,
		Steps:          t.Steps,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Assignee:       assignee(t, usernames),
		SprintID:       t.SprintID,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Archived:       t.Archived,
	}
}

func assignee(t model.Task, usernames map[int64]string) string {
	if t.AssignedTo == nil {
		return ""
	}
	return usernames[*t.AssignedTo]
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func hours(h *float64) string {
	if h == nil {
		return ""
	}
	return strconv.FormatFloat(*h, 'f', 1, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	taskListCmd.Flags().Int64Var(&flagTaskSprint, "sprint", 0, "only tasks in this sprint")
	taskListCmd.Flags().StringVar(&flagTaskAssignee, "assignee", "", "only tasks assigned to this username")
	taskListCmd.Flags().StringVar(&flagTaskStatus, "status", "", "only tasks with this status")
	taskListCmd.Flags().StringVar(&flagTaskPriority, "priority", "", "only tasks with this priority")
	taskListCmd.Flags().BoolVar(&flagArchived, "archived", false, "include archived tasks")

	taskCmd.AddCommand(taskListCmd, taskStatusCmd, taskArchiveCmd)
	rootCmd.AddCommand(taskCmd)
}
