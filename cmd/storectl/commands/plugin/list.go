package plugin

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

var (
	listUsername  string
	listPublished string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins",
	Long: `List plugins. Without flags this lists the plugins of the logged in
developer. Administrators may pass --username, or "*" for every plugin.

--published lists the plugins visible at a publish state (developer,
nightly, beta or release) together with their newest source. It does not
require a login.

Examples:
  storectl plugin list
  storectl plugin list --username '*'
  storectl plugin list --published beta`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listUsername, "username", "", "Owner to list (admins only, \"*\" for all)")
	listCmd.Flags().StringVar(&listPublished, "published", "", "List published plugins at this state")
}

func runList(cmd *cobra.Command, args []string) error {
	if listPublished != "" {
		state, err := models.ParsePublishState(listPublished)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), false, func(c *client.Client) error {
			list, err := c.ListPublishedPlugins(cmd.Context(), state)
			if err != nil {
				return fmt.Errorf("failed to list published plugins: %w", err)
			}
			return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No published plugins found.", PublishedList(list))
		})
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		username := listUsername
		if username == "" {
			username = c.Username()
		}
		plugins, err := c.ListPlugins(cmd.Context(), username)
		if err != nil {
			return fmt.Errorf("failed to list plugins: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, plugins, len(plugins) == 0, "No plugins found.", List(plugins))
	})
}
