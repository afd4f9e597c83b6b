package plugin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a plugin",
	Long: `Update a plugin. Only the flags given are changed.

Examples:
  storectl plugin update 12 --long "$(cat description.txt)"
  storectl plugin update 12 --icon enigma-v2.png`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	addPluginFlags(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID("plugin id", args[0])
	if err != nil {
		return err
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		p, err := c.GetPlugin(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get plugin: %w", err)
		}
		changed, err := applyFlags(cmd, p)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("nothing to update")
		}
		if err := c.UpdatePlugin(cmd.Context(), *p); err != nil {
			return fmt.Errorf("failed to update plugin: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Plugin %d updated", id))
		return nil
	})
}
