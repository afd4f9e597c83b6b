package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/cli/output"
	"github.com/marmos91/cryptoolstore/internal/cli/prompt"
	"github.com/marmos91/cryptoolstore/pkg/config"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/store"
)

var (
	devAdmin     bool
	devEmail     string
	devFirstname string
	devLastname  string
	devPassword  string
	devForce     bool
	devOutput    string
)

var developerCmd = &cobra.Command{
	Use:     "developer",
	Aliases: []string{"dev"},
	Short:   "Manage developer accounts in the database",
	Long: `Manage developer accounts directly in the configured database.

These commands work without a running server, which makes them the way to
recover a lost admin password. Against a running server prefer storectl.`,
}

var developerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List developers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(devOutput)
		if err != nil {
			return err
		}
		return withDatabase(func(ctx context.Context, st store.Store) error {
			devs, err := st.GetDevelopers(ctx)
			if err != nil {
				return err
			}
			return output.NewPrinter(cmd.OutOrStdout(), format, true).Print(developerTable(devs))
		})
	},
}

var developerCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a developer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt()
		if err != nil {
			return err
		}
		return withDatabase(func(ctx context.Context, st store.Store) error {
			dev := &models.Developer{
				Username:  models.NormalizeUsername(args[0]),
				Firstname: devFirstname,
				Lastname:  devLastname,
				Email:     devEmail,
				IsAdmin:   devAdmin,
			}
			if err := st.CreateDeveloper(ctx, dev, password); err != nil {
				return fmt.Errorf("failed to create developer: %w", err)
			}
			output.NewPrinter(cmd.OutOrStdout(), output.FormatTable, true).Success(fmt.Sprintf("Developer %s created", dev.Username))
			return nil
		})
	},
}

var developerPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Set a developer's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFromFlagOrPrompt()
		if err != nil {
			return err
		}
		return withDatabase(func(ctx context.Context, st store.Store) error {
			username := models.NormalizeUsername(args[0])
			if _, err := st.GetDeveloper(ctx, username); err != nil {
				return err
			}
			if err := st.UpdateDeveloperPassword(ctx, username, password); err != nil {
				return fmt.Errorf("failed to set password: %w", err)
			}
			output.NewPrinter(cmd.OutOrStdout(), output.FormatTable, true).Success("Password updated")
			return nil
		})
	},
}

var developerDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a developer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := models.NormalizeUsername(args[0])
		ok, err := prompt.Confirm(fmt.Sprintf("Delete developer %s", username), devForce)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if !ok {
			return nil
		}
		return withDatabase(func(ctx context.Context, st store.Store) error {
			if err := st.DeleteDeveloper(ctx, username); err != nil {
				return fmt.Errorf("failed to delete developer: %w", err)
			}
			output.NewPrinter(cmd.OutOrStdout(), output.FormatTable, true).Success(fmt.Sprintf("Developer %s deleted", username))
			return nil
		})
	},
}

func init() {
	developerListCmd.Flags().StringVarP(&devOutput, "output", "o", "table", "Output format (table|json|yaml)")

	developerCreateCmd.Flags().BoolVar(&devAdmin, "admin", false, "Grant admin rights")
	developerCreateCmd.Flags().StringVar(&devEmail, "email", "", "Email address")
	developerCreateCmd.Flags().StringVar(&devFirstname, "firstname", "", "First name")
	developerCreateCmd.Flags().StringVar(&devLastname, "lastname", "", "Last name")
	developerCreateCmd.Flags().StringVarP(&devPassword, "password", "p", "", "Password (prompted when empty)")

	developerPasswdCmd.Flags().StringVarP(&devPassword, "password", "p", "", "Password (prompted when empty)")

	developerDeleteCmd.Flags().BoolVarP(&devForce, "force", "f", false, "Do not ask for confirmation")

	developerCmd.AddCommand(developerListCmd, developerCreateCmd, developerPasswdCmd, developerDeleteCmd)
}

func passwordFromFlagOrPrompt() (string, error) {
	if devPassword != "" {
		return devPassword, nil
	}
	return prompt.NewPassword(8)
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(fn func(ctx context.Context, st store.Store) error) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = st.Close() }()
	return fn(context.Background(), st)
}

type developerTable []*models.Developer

func (t developerTable) Headers() []string {
	return []string{"Username", "Name", "Email", "Admin", "Created"}
}

func (t developerTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, d := range t {
		admin := "no"
		if d.IsAdmin {
			admin = "yes"
		}
		rows = append(rows, []string{d.Username, d.Firstname + " " + d.Lastname, d.Email, admin, d.CreatedAt.Local().Format("2006-01-02")})
	}
	return rows
}
