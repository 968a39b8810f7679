package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/seed"
)

var (
	flagUsername string
	flagName     string
	flagRole     string
	flagListRole string
	flagPassword string
	flagUserPh   string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the people who can use the bot",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user",
	Long: `Registers a user. The bot recognizes the user when they share a contact
with the same phone number.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		role, err := model.ParseRole(flagRole)
		if err != nil {
			return err
		}
		hash, err := seed.HashPassword(flagPassword, bcryptCost)
		if err != nil {
			return err
		}
		name := flagName
		if name == "" {
			name = flagUsername
		}

		return withDB(func(store *db.DB) error {
			u := &model.User{Username: flagUsername, Name: name, Role: role, Phone: flagUserPh, Password: hash}
			if err := store.CreateUser(cmd.Context(), u); err != nil {
				if db.IsConstraintError(err) {
					return fmt.Errorf("user %q or phone %q already exists", flagUsername, u.Phone)
				}
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), toUserJSON(*u))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s, %s)\n", u.ID, u.Username, u.Role)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(store *db.DB) error {
			var (
				users []model.User
				err   error
			)
			if flagListRole != "" {
				role, perr := model.ParseRole(flagListRole)
				if perr != nil {
					return perr
				}
				users, err = store.ListUsersByRole(cmd.Context(), role)
			} else {
				users, err = store.ListUsers(cmd.Context())
			}
			if err != nil {
				return err
			}

			if flagJSON {
				out := make([]UserJSON, 0, len(users))
				for _, u := range users {
					out = append(out, toUserJSON(u))
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE\tPHONE")
			for _, u := range users {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role, u.Phone)
			}
			return w.Flush()
		})
	},
}

// UserJSON is the --json shape of a user. The password hash is never printed.
type UserJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
}

func toUserJSON(u model.User) UserJSON {
	return UserJSON{ID: u.ID, Username: u.Username, Name: u.Name, Role: string(u.Role), Phone: u.Phone}
}

func init() {
	userAddCmd.Flags().StringVar(&flagUsername, "username", "", "unique login name (required)")
	userAddCmd.Flags().StringVar(&flagName, "name", "", "display name (defaults to username)")
	userAddCmd.Flags().StringVar(&flagRole, "role", string(model.RoleDeveloper), "Manager or Developer")
	userAddCmd.Flags().StringVar(&flagUserPh, "phone", "", "phone number with country code")
	userAddCmd.Flags().StringVar(&flagPassword, "password", "", "password, stored as a bcrypt hash")
	_ = userAddCmd.MarkFlagRequired("username")

	userListCmd.Flags().StringVar(&flagListRole, "role", "", "only list users with this role")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}
