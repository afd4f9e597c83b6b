package resource

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().String("name", "", "Resource name")
	updateCmd.Flags().String("description", "", "Description")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID("resource id", args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("description") {
		return fmt.Errorf("nothing to update; pass --name or --description")
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		r, err := c.GetResource(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get resource: %w", err)
		}
		if flags.Changed("name") {
			r.Name, _ = flags.GetString("name")
		}
		if flags.Changed("description") {
			r.Description, _ = flags.GetString("description")
		}
		if err := c.UpdateResource(cmd.Context(), *r); err != nil {
			return fmt.Errorf("failed to update resource: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Resource %d updated", id))
		return nil
	})
}
