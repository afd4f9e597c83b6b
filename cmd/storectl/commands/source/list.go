package source

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/client"
	"github.com/marmos91/cryptoolstore/pkg/controlplane/models"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

var listBuildState string

var listCmd = &cobra.Command{
	Use:   "list [plugin-id]",
	Short: "List sources",
	Long: `List the sources of a plugin, or with --build-state the sources of
every plugin in that build state (admins only).

Examples:
  storectl source list 12
  storectl source list --build-state uploaded`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listBuildState, "build-state", "", "List all sources in this build state")
}

func runList(cmd *cobra.Command, args []string) error {
	var list func(c *client.Client) ([]message.Source, error)
	switch {
	case listBuildState != "" && len(args) == 0:
		state, err := models.ParseBuildState(listBuildState)
		if err != nil {
			return err
		}
		list = func(c *client.Client) ([]message.Source, error) {
			return c.ListSourcesByBuildState(cmd.Context(), state.String())
		}
	case listBuildState == "" && len(args) == 1:
		id, err := cmdutil.ParseID("plugin id", args[0])
		if err != nil {
			return err
		}
		list = func(c *client.Client) ([]message.Source, error) {
			return c.ListSources(cmd.Context(), id)
		}
	default:
		return fmt.Errorf("pass either a plugin id or --build-state")
	}

	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		sources, err := list(c)
		if err != nil {
			return fmt.Errorf("failed to list sources: %w", err)
		}
		return cmdutil.PrintOutput(os.Stdout, sources, len(sources) == 0, "No sources found.", List(sources))
	})
}
