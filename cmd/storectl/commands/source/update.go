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

var updateCmd = &cobra.Command{
	Use:   "update <plugin-id> <version>",
	Short: "Update the build fields of a source",
	Long: `Update the build fields of a source. Only the flags given are changed.
The build system uses this to report build results.

Examples:
  storectl source update 12 3 --build-state building
  storectl source update 12 3 --build-state error --build-log-file build.log`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().String("build-state", "", "Build state (created|uploaded|building|success|error)")
	updateCmd.Flags().Int32("build-version", 0, "Build version")
	updateCmd.Flags().String("build-log", "", "Build log text")
	updateCmd.Flags().String("build-log-file", "", "Read the build log from a file")
	updateCmd.MarkFlagsMutuallyExclusive("build-log", "build-log-file")
}

func applyFlags(cmd *cobra.Command, s *message.Source) (bool, error) {
	flags := cmd.Flags()
	changed := false

	if flags.Changed("build-state") {
		name, _ := flags.GetString("build-state")
		state, err := models.ParseBuildState(name)
		if err != nil {
			return false, err
		}
		s.BuildState = state
		changed = true
	}
	if flags.Changed("build-version") {
		s.BuildVersion, _ = flags.GetInt32("build-version")
		changed = true
	}
	if flags.Changed("build-log") {
		s.BuildLog, _ = flags.GetString("build-log")
		changed = true
	}
	if flags.Changed("build-log-file") {
		path, _ := flags.GetString("build-log-file")
		raw, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("failed to read build log: %w", err)
		}
		s.BuildLog = string(raw)
		changed = true
	}
	return changed, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, version, err := cmdutil.ParseIDVersion("plugin id", args)
	if err != nil {
		return err
	}
	return cmdutil.WithClient(cmd.Context(), true, func(c *client.Client) error {
		s, err := c.GetSource(cmd.Context(), id, version)
		if err != nil {
			return fmt.Errorf("failed to get source: %w", err)
		}
		changed, err := applyFlags(cmd, s)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("nothing to update")
		}
		if err := c.UpdateSource(cmd.Context(), *s); err != nil {
			return fmt.Errorf("failed to update source: %w", err)
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Source %d-%d updated", id, version))
		return nil
	})
}
