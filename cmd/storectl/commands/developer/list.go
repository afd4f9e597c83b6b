package developer

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all developers",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		devs, err := c.ListDevelopers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list developers: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, devs, len(devs) == 0, "No developers found.", List(devs))
	})
}
