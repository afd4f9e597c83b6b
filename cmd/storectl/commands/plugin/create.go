package plugin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a plugin",
	Long: `Create a plugin owned by the logged in developer and print its id.

Examples:
  storectl plugin create --name Enigma --short "Enigma simulator" \
    --authors "Jane Doe" --institutes "Uni Kassel" --icon enigma.png`,
	RunE: runCreate,
}

func init() {
	addPluginFlags(createCmd)
	_ = createCmd.MarkFlagRequired("name")
}

func addPluginFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Plugin name")
	cmd.Flags().String("short", "", "Short description")
	cmd.Flags().String("long", "", "Long description")
	cmd.Flags().String("authors", "", "Author names")
	cmd.Flags().String("institutes", "", "Author institutes")
	cmd.Flags().String("emails", "", "Author emails")
	cmd.Flags().String("icon", "", "Icon image file")
}

// applyFlags copies the changed flags onto p and reports whether any was
// set.
func applyFlags(cmd *cobra.Command, p *message.Plugin) (bool, error) {
	flags := cmd.Flags()
	fields := []struct {
		name  string
		field *string
	}{
		{"name", &p.Name},
		{"short", &p.ShortDescription},
		{"long", &p.LongDescription},
		{"authors", &p.Authornames},
		{"institutes", &p.Authorinstitutes},
		{"emails", &p.Authoremails},
	}

	changed := false
	for _, f := range fields {
		if flags.Changed(f.name) {
			*f.field, _ = flags.GetString(f.name)
			changed = true
		}
	}
	if flags.Changed("icon") {
		path, _ := flags.GetString("icon")
		icon, err := readIcon(path)
		if err != nil {
			return false, err
		}
		p.Icon = icon
		changed = true
	}
	return changed, nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	var p message.Plugin
	if _, err := applyFlags(cmd, &p); err != nil {
		return err
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		id, err := c.CreatePlugin(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("failed to create plugin: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Plugin '%s' created with id %d", p.Name, id))
		return nil
	})
}
