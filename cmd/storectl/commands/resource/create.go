package resource

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var (
	createName        string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a resource",
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Resource name")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Description")
	_ = createCmd.MarkFlagRequired("name")
}

func runCreate(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		id, err := c.CreateResource(cmd.Context(), message.Resource{Name: createName, Description: createDescription})
		if err != nil {
			return fmt.Errorf("failed to create resource: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Resource '%s' created with id %d", createName, id))
		return nil
	})
}
