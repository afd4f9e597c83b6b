// Package source implements the plugin source commands of storectl.
package source

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/timeutil"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Cmd is the parent command for source management.
var Cmd = &cobra.Command{
	Use:   "source",
	Short: "Plugin source management",
	Long: `Manage the versioned sources of a plugin.

A source is identified by its plugin id and plugin version. Its zip file
is uploaded with 'storectl upload source' and the build system attaches an
assembly with 'storectl upload assembly'.

Examples:
  # List the sources of plugin 12
  storectl source list 12

  # Create version 3 of plugin 12
  storectl source create 12 3

  # Record a successful build (admin build system)
  storectl source update 12 3 --build-state success --build-version 41

  # Release a source (admin only)
  storectl source publish 12 3 release`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(publishCmd)
	Cmd.AddCommand(deleteCmd)
}

// List renders sources as a table.
type List []message.Source

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"PLUGIN", "VERSION", "BUILD", "BUILD STATE", "PUBLISH STATE", "UPLOADED", "BUILT"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{
			strconv.Itoa(int(s.PluginID)),
			strconv.Itoa(int(s.PluginVersion)),
			strconv.Itoa(int(s.BuildVersion)),
			s.BuildState.String(),
			s.PublishState.String(),
			timeutil.FormatUnix(s.UploadDate),
			timeutil.FormatUnix(s.BuildDate),
		})
	}
	return rows
}

func details(s *message.Source) [][2]string {
	return [][2]string{
		{"Plugin", strconv.Itoa(int(s.PluginID))},
		{"Version", strconv.Itoa(int(s.PluginVersion))},
		{"Build version", strconv.Itoa(int(s.BuildVersion))},
		{"Build state", s.BuildState.String()},
		{"Publish state", s.PublishState.String()},
		{"Zip file", cmdutil.EmptyOr(s.ZipFileName, "-")},
		{"Assembly file", cmdutil.EmptyOr(s.AssemblyFileName, "-")},
		{"Uploaded", timeutil.FormatUnix(s.UploadDate)},
		{"Built", timeutil.FormatUnix(s.BuildDate)},
		{"Build log", cmdutil.EmptyOr(s.BuildLog, "-")},
	}
}
