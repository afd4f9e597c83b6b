package developer

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
)

var getCmd = &cobra.Command{
	Use:   "get <username>",
	Short: "Show a developer",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		d, err := c.GetDeveloper(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get developer: %w", err)
		}
		return cmdutil.PrintDetails(os.Stdout, d, [][2]string{
			{"Username", d.Username},
			{"First name", cmdutil.EmptyOr(d.Firstname, "-")},
			{"Last name", cmdutil.EmptyOr(d.Lastname, "-")},
			{"Email", cmdutil.EmptyOr(d.Email, "-")},
			{"Admin", cmdutil.BoolToYesNo(d.IsAdmin)},
		})
	})
}
