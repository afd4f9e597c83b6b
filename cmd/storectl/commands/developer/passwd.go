package developer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var passwdNew string

var passwdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a developer's password",
	Long: `Change the password of a developer. Developers may change their own
password; administrators may change anyone's.

Examples:
  storectl developer passwd alice`,
	Args: cobra.ExactArgs(1),
	RunE: runPasswd,
}

func init() {
	passwdCmd.Flags().StringVarP(&passwdNew, "password", "p", "", "New password (prompted if omitted)")
}

func runPasswd(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		d, err := c.GetDeveloper(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get developer: %w", err)
		}

		password, err := newPassword(passwdNew)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		d.Password = password
		if err := c.UpdateDeveloper(cmd.Context(), *d); err != nil {
			return fmt.Errorf("failed to change password: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Password of '%s' changed", args[0]))
		return nil
	})
}
