package developer

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a developer",
	Long:  "Delete a developer account. Requires an administrator.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		return cmdutil.RunDeleteWithConfirmation("developer", args[0], deleteForce, func() error {
			return c.DeleteDeveloper(cmd.Context(), args[0])
		})
	})
}
