package resourcedata

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var listCmd = &cobra.Command{
	Use:   "list <resource-id>",
	Short: "List the data versions of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cmdutil.ParseID("resource id", args[0])
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
			datas, err := c.ListResourceData(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to list resource data: %w", err)
			}
			return cmdutil.PrintOutput(os.Stdout, datas, len(datas) == 0, "No resource data found.", List(datas))
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource-id> <version>",
	Short: "Show a resource data version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, version, err := cmdutil.ParseIDVersion("resource id", args)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
			rd, err := c.GetResourceData(cmd.Context(), id, version)
			if err != nil {
				return fmt.Errorf("failed to get resource data: %w", err)
			}
			return cmdutil.PrintOutput(os.Stdout, rd, false, "", List{*rd})
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource-id> <version>",
	Short: "Create a resource data version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, version, err := cmdutil.ParseIDVersion("resource id", args)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
			if err := c.CreateResourceData(cmd.Context(), message.ResourceData{ResourceID: id, ResourceVersion: version}); err != nil {
				return fmt.Errorf("failed to create resource data: %w", err)
			}
			cmdutil.PrintSuccess(fmt.Sprintf("Resource data %d-%d created", id, version))
			return nil
		})
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <resource-id> <version> <state>",
	Short: "Set the publish state of a resource data version (admins only)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, version, err := cmdutil.ParseIDVersion("resource id", args[:2])
		if err != nil {
			return err
		}
		state, err := models.ParsePublishState(args[2])
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
			if err := c.UpdateResourceDataPublishState(cmd.Context(), message.ResourceData{
				ResourceID:      id,
				ResourceVersion: version,
				PublishState:    state,
			}); err != nil {
				return fmt.Errorf("failed to publish resource data: %w", err)
			}
			cmdutil.PrintSuccess(fmt.Sprintf("Resource data %d-%d is now %s", id, version, state))
			return nil
		})
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <resource-id> <version>",
	Short: "Delete a resource data version and its file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, version, err := cmdutil.ParseIDVersion("resource id", args)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
			return cmdutil.RunDeleteWithConfirmation("resource data", fmt.Sprintf("%d-%d", id, version), deleteForce, func() error {
				return c.DeleteResourceData(cmd.Context(), id, version)
			})
		})
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}
