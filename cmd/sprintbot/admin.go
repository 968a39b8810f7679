package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/seed"
)

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and its schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized database at %s\n", cfg.Database.Path)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load users, sprints and tasks from a YAML file",
	Long: `Loads fixtures from a YAML file with top-level users, sprints and tasks lists.

Users and sprints that already exist (by username and by name) are reused.
Tasks refer to users by username and to sprints by name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open fixtures: %w", err)
		}
		defer func() { _ = f.Close() }()

		fx, err := seed.Parse(f)
		if err != nil {
			return err
		}

		return withDB(func(store *db.DB) error {
			res, err := seed.Apply(cmd.Context(), store, fx, bcryptCost)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d sprints, %d tasks\n", res.Users, res.Sprints, res.Tasks)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}
