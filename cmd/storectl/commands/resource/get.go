package resource

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

var getPublished string

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&getPublished, "published", "", "Read the resource at this publish state")
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID("resource id", args[0])
	if err != nil {
		return err
	}

	if getPublished != "" {
		state, err := models.ParsePublishState(getPublished)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), false, func(c *client.Client) error {
			rr, err := c.GetPublishedResource(cmd.Context(), id, state)
			if err != nil {
				return fmt.Errorf("failed to get published resource: %w", err)
			}
			return cmdutil.PrintOutput(os.Stdout, rr, false, "", PublishedList{*rr})
		})
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		r, err := c.GetResource(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get resource: %w", err)
		}
		return cmdutil.PrintDetails(os.Stdout, r, [][2]string{
			{"ID", strconv.Itoa(int(r.ID))},
			{"Name", r.Name},
			{"Owner", r.Username},
			{"Description", cmdutil.EmptyOr(r.Description, "-")},
		})
	})
}
