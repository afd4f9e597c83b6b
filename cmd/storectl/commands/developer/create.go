package developer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/prompt"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

const minPasswordLength = 8

var (
	createPassword  string
	createFirstname string
	createLastname  string
	createEmail     string
	createAdmin     bool
)

var createCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a developer",
	Long: `Create a developer account. Requires an administrator.

The password is asked for twice unless --password is given.

Examples:
  storectl developer create alice --firstname Alice --email alice@example.org
  storectl developer create carol --admin`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompted if omitted)")
	createCmd.Flags().StringVar(&createFirstname, "firstname", "", "First name")
	createCmd.Flags().StringVar(&createLastname, "lastname", "", "Last name")
	createCmd.Flags().StringVar(&createEmail, "email", "", "Email address")
	createCmd.Flags().BoolVar(&createAdmin, "admin", false, "Grant administrator rights")
}

func newPassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return prompt.NewPassword(minPasswordLength)
}

func runCreate(cmd *cobra.Command, args []string) error {
	password, err := newPassword(createPassword)
	if err != nil {
		return cmdutil.HandleAbort(err)
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		if err := c.CreateDeveloper(cmd.Context(), message.Developer{
			Username:  args[0],
			Password:  password,
			Firstname: createFirstname,
			Lastname:  createLastname,
			Email:     createEmail,
			IsAdmin:   createAdmin,
		}); err != nil {
			return fmt.Errorf("failed to create developer: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Developer '%s' created", args[0]))
		return nil
	})
}
