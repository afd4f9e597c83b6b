package source

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <plugin-id> <version>",
	Short: "Delete a source and its files",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, version, err := cmdutil.ParseIDVersion("plugin id", args)
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		return cmdutil.RunDeleteWithConfirmation("source", fmt.Sprintf("%d-%d", id, version), deleteForce, func() error {
			return c.DeleteSource(cmd.Context(), id, version)
		})
	})
}
