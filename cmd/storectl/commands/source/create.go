package source

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var createCmd = &cobra.Command{
	Use:   "create <plugin-id> <version>",
	Short: "Create a source version of a plugin",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	id, version, err := cmdutil.ParseIDVersion("plugin id", args)
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		if err := c.CreateSource(cmd.Context(), message.Source{PluginID: id, PluginVersion: version}); err != nil {
			return fmt.Errorf("failed to create source: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Source %d-%d created", id, version))
		return nil
	})
}
