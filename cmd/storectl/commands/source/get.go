package source

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var getCmd = &cobra.Command{
	Use:   "get <plugin-id> <version>",
	Short: "Show a source",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, version, err := cmdutil.ParseIDVersion("plugin id", args)
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		s, err := c.GetSource(cmd.Context(), id, version)
		if err != nil {
			return fmt.Errorf("failed to get source: %w", err)
		}
		return cmdutil.PrintDetails(os.Stdout, s, details(s))
	})
}
