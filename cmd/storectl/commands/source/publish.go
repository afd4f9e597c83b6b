package source

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var publishCmd = &cobra.Command{
	Use:   "publish <plugin-id> <version> <state>",
	Short: "Set the publish state of a source",
	Long: `Set the publish state of a source. Requires an administrator.

States: notpublished, developer, nightly, beta, release.

Examples:
  storectl source publish 12 3 beta`,
	Args: cobra.ExactArgs(3),
	RunE: runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	id, version, err := cmdutil.ParseIDVersion("plugin id", args[:2])
	if err != nil {
		return err
	}
	state, err := models.ParsePublishState(args[2])
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		if err := c.UpdateSourcePublishState(cmd.Context(), message.Source{
			PluginID:      id,
			PluginVersion: version,
			PublishState:  state,
		}); err != nil {
			return fmt.Errorf("failed to publish source: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Source %d-%d is now %s", id, version, state))
		return nil
	})
}
