package plugin

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a plugin with all of its sources",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID("plugin id", args[0])
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		return cmdutil.RunDeleteWithConfirmation("plugin", args[0], deleteForce, func() error {
			return c.DeletePlugin(cmd.Context(), id)
		})
	})
}
