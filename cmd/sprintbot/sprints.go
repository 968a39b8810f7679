package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
)

var (
	flagSprintName   string
	flagStart        string
	flagEnd          string
	flagSprintStatus string
	flagSprintFilter string
	flagActive       bool
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Manage sprints",
}

var sprintAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a sprint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, err := parseDate("start", flagStart)
		if err != nil {
			return err
		}
		end, err := parseDate("end", flagEnd)
		if err != nil {
			return err
		}
		status, err := model.ParseSprintStatus(flagSprintStatus)
		if err != nil {
			return err
		}

		return withDB(func(store *db.DB) error {
			s := &model.Sprint{Name: flagSprintName, StartDate: *start, EndDate: *end, Status: status}
			if err := store.CreateSprint(cmd.Context(), s); err != nil {
				return err
			}
			return printSprint(cmd, s, "Created")
		})
	},
}

var sprintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sprints",
	Long: `Lists sprints by start date. --active shows the sprints the bot offers in its
sprint pickers: those marked ACTIVE plus those whose dates cover today.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(store *db.DB) error {
			var (
				sprints []model.Sprint
				err     error
			)
			switch {
			case flagActive:
				sprints, err = store.ActiveSprints(cmd.Context(), time.Now())
			case flagSprintFilter != "":
				status, perr := model.ParseSprintStatus(flagSprintFilter)
				if perr != nil {
					return perr
				}
				sprints, err = store.ListSprintsByStatus(cmd.Context(), status)
			default:
				sprints, err = store.ListSprints(cmd.Context())
			}
			if err != nil {
				return err
			}

			if flagJSON {
				out := make([]SprintJSON, 0, len(sprints))
				for _, s := range sprints {
					out = append(out, toSprintJSON(s))
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			if len(sprints) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sprints")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tSTATUS")
			for _, s := range sprints {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Name,
					s.StartDate.Format(model.DateLayout), s.EndDate.Format(model.DateLayout), s.Status)
			}
			return w.Flush()
		})
	},
}

var sprintStatusCmd = &cobra.Command{
	Use:   "status <id> <PLANNED|ACTIVE|COMPLETED|CANCELLED>",
	Short: "Change a sprint's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := model.ParseSprintStatus(args[1])
		if err != nil {
			return err
		}
		return withDB(func(store *db.DB) error {
			s, err := store.UpdateSprintStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			return printSprint(cmd, s, "Updated")
		})
	},
}

var sprintUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename a sprint or move its dates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var u model.SprintUpdate
		if cmd.Flags().Changed("name") {
			u.Name = &flagSprintName
		}
		if cmd.Flags().Changed("start") {
			if u.StartDate, err = parseDate("start", flagStart); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("end") {
			if u.EndDate, err = parseDate("end", flagEnd); err != nil {
				return err
			}
		}
		if u.Name == nil && u.StartDate == nil && u.EndDate == nil {
			return fmt.Errorf("nothing to update: pass --name, --start or --end")
		}

		return withDB(func(store *db.DB) error {
			s, err := store.UpdateSprint(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			return printSprint(cmd, s, "Updated")
		})
	},
}

var sprintDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sprint. Its tasks stay, without a sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(store *db.DB) error {
			if err := store.DeleteSprint(cmd.Context(), id); err != nil {
				if db.IsNotFound(err) {
					return fmt.Errorf("sprint %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted sprint %d\n", id)
			return nil
		})
	},
}

type SprintJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

func toSprintJSON(s model.Sprint) SprintJSON {
	return SprintJSON{
		ID:        s.ID,
		Name:      s.Name,
		StartDate: s.StartDate.Format(model.DateLayout),
		EndDate:   s.EndDate.Format(model.DateLayout),
		Status:    string(s.Status),
	}
}

func printSprint(cmd *cobra.Command, s *model.Sprint, verb string) error {
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), toSprintJSON(*s))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s sprint %d: %s (%s to %s, %s)\n", verb, s.ID, s.Name,
		s.StartDate.Format(model.DateLayout), s.EndDate.Format(model.DateLayout), s.Status)
	return nil
}

func parseDate(field, value string) (*time.Time, error) {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q, want YYYY-MM-DD", field, value)
	}
	return &t, nil
}

func init() {
	sprintAddCmd.Flags().StringVar(&flagSprintName, "name", "", "sprint name (required)")
	sprintAddCmd.Flags().StringVar(&flagStart, "start", "", "first day, YYYY-MM-DD (required)")
	sprintAddCmd.Flags().StringVar(&flagEnd, "end", "", "last day, YYYY-MM-DD (required)")
	sprintAddCmd.Flags().StringVar(&flagSprintStatus, "status", string(model.SprintPlanned), "initial status")
	_ = sprintAddCmd.MarkFlagRequired("name")
	_ = sprintAddCmd.MarkFlagRequired("start")
	_ = sprintAddCmd.MarkFlagRequired("end")

	sprintListCmd.Flags().StringVar(&flagSprintFilter, "status", "", "only list sprints with this status")
	sprintListCmd.Flags().BoolVar(&flagActive, "active", false, "only list sprints the bot offers as current")

	sprintUpdateCmd.Flags().StringVar(&flagSprintName, "name", "", "new name")
	sprintUpdateCmd.Flags().StringVar(&flagStart, "start", "", "new first day, YYYY-MM-DD")
	sprintUpdateCmd.Flags().StringVar(&flagEnd, "end", "", "new last day, YYYY-MM-DD")

	sprintCmd.AddCommand(sprintAddCmd, sprintListCmd, sprintStatusCmd, sprintUpdateCmd, sprintDeleteCmd)
	rootCmd.AddCommand(sprintCmd)
}
