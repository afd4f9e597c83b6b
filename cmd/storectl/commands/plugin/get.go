package plugin

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
)

var (
	getPublished string
	getIconOut   string
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a plugin",
	Long: `Show a plugin. --published reads the plugin as the public sees it
at a publish state, without logging in.

Examples:
  storectl plugin get 12
  storectl plugin get 12 --icon-out enigma.png
  storectl plugin get 12 --published release`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getPublished, "published", "", "Read the plugin at this publish state")
	getCmd.Flags().StringVar(&getIconOut, "icon-out", "", "Write the icon to this file")
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := cmdutil.ParseID("plugin id", args[0])
	if err != nil {
		return err
	}

	if getPublished != "" {
		state, err := models.ParsePublishState(getPublished)
		if err != nil {
			return err
		}
		return cmdutil.WithClient(cmd.Context(), false, func(c *client.Client) error {
			ps, err := c.GetPublishedPlugin(cmd.Context(), id, state)
			if err != nil {
				return fmt.Errorf("failed to get published plugin: %w", err)
			}
			if err := writeIcon(ps.Plugin.Icon); err != nil {
				return err
			}
			return cmdutil.PrintOutput(os.Stdout, ps, false, "", PublishedList{*ps})
		})
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		p, err := c.GetPlugin(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get plugin: %w", err)
		}
		if err := writeIcon(p.Icon); err != nil {
			return err
		}
		return cmdutil.PrintDetails(os.Stdout, p, details(p))
	})
}

func writeIcon(icon []byte) error {
	if getIconOut == "" {
		return nil
	}
	if err := os.WriteFile(getIconOut, icon, 0o644); err != nil {
		return fmt.Errorf("failed to write icon: %w", err)
	}
	return nil
}
