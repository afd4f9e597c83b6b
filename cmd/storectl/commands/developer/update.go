package developer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var updateCmd = &cobra.Command{
	Use:   "update <username>",
	Short: "Update a developer's profile",
	Long: `Update the profile of a developer. Only the flags given are changed.
Changing --admin requires an administrator.

Examples:
  storectl developer update alice --email alice@new.example.org
  storectl developer update bob --admin=true`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("firstname", "", "First name")
	updateCmd.Flags().String("lastname", "", "Last name")
	updateCmd.Flags().String("email", "", "Email address")
	updateCmd.Flags().Bool("admin", false, "Administrator rights")
}

func applyFlags(cmd *cobra.Command, d *message.Developer) bool {
	changed := false
	flags := cmd.Flags()
	for name, field := range map[string]*string{"firstname": &d.Firstname, "lastname": &d.Lastname, "email": &d.Email} {
		if flags.Changed(name) {
			*field, _ = flags.GetString(name)
			changed = true
		}
	}
	if flags.Changed("admin") {
		d.IsAdmin, _ = flags.GetBool("admin")
		changed = true
	}
	return changed
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		d, err := c.GetDeveloper(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get developer: %w", err)
		}
		if !applyFlags(cmd, d) {
			return fmt.Errorf("nothing to update; pass at least one of --firstname, --lastname, --email or --admin")
		}

		d.Password = ""
		if err := c.UpdateDeveloper(cmd.Context(), *d); err != nil {
			return fmt.Errorf("failed to update developer: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Developer '%s' updated", args[0]))
		return nil
	})
}
