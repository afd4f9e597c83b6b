package resource

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
	Short: "List resources",
	Long: `List resources. Without flags this lists the resources of the logged
in developer. Administrators may pass --username, or "*" for all.

--published lists the resources visible at a publish state together with
their newest data version. It does not require a login.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listUsername, "username", "", "Owner to list (admins only, \"*\" for all)")
	listCmd.Flags().StringVar(&listPublished, "published", "", "List published resources at this state")
}

func runList(cmd *cobra.Command, args []string) error {
	if listPublished != "" {
		state, err := models.ParsePublishState(listPublished)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), false, func(c *client.Client) error {
			list, err := c.ListPublishedResources(cmd.Context(), state)
			if err != nil {
				return fmt.Errorf("failed to list published resources: %w", err)
			}
			return cmdutil.PrintOutput(os.Stdout, list, len(list) == 0, "No published resources found.", PublishedList(list))
		})
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		username := listUsername
		if username == "" {
			username = c.Username()
		}
		resources, err := c.ListResources(cmd.Context(), username)
		if err != nil {
			return fmt.Errorf("failed to list resources: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, resources, len(resources) == 0, "No resources found.", List(resources))
	})
}
