package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check the credentials of the current context",
	Long: `Connect to the server and log in, reporting whether the credentials
work and whether the developer is an administrator. Nothing is stored.

Examples:
  # Check the current context
  storectl login

  # Check another developer
  storectl login -u alice`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		role := "developer"
		if c.IsAdmin() {
			role = "administrator"
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Logged in as %s (%s)", c.Username(), role))
		return nil
	})
}
