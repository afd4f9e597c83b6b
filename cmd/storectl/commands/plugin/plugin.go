// Package plugin implements the plugin commands of storectl.
package plugin

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/timeutil"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Cmd is the parent command for plugin management.
var Cmd = &cobra.Command{
	Use:   "plugin",
	Short: "Plugin management",
	Long: `Manage plugins on the CrypToolStore server.

Developers manage their own plugins; administrators manage all of them.
Published plugins can be listed without logging in.

Examples:
  # List your plugins
  storectl plugin list

  # List plugins released to the public
  storectl plugin list --published release

  # Create a plugin with an icon
  storectl plugin create --name Enigma --short "Enigma simulator" --icon enigma.png

  # Delete a plugin with all of its sources
  storectl plugin delete 12`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}

// List renders plugins as a table.
type List []message.Plugin

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"ID", "NAME", "OWNER", "AUTHORS", "DESCRIPTION"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{
			strconv.Itoa(int(p.ID)),
			p.Name,
			p.Username,
			cmdutil.EmptyOr(p.Authornames, "-"),
			cmdutil.EmptyOr(p.ShortDescription, "-"),
		})
	}
	return rows
}

// PublishedList renders published plugins with their newest source.
type PublishedList []message.PluginAndSource

// Headers implements TableRenderer.
func (l PublishedList) Headers() []string {
	return []string{"ID", "NAME", "VERSION", "BUILD", "STATE", "BUILT", "SIZE"}
}

// Rows implements TableRenderer.
func (l PublishedList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, ps := range l {
		rows = append(rows, []string{
			strconv.Itoa(int(ps.Plugin.ID)),
			ps.Plugin.Name,
			strconv.Itoa(int(ps.Source.PluginVersion)),
			strconv.Itoa(int(ps.Source.BuildVersion)),
			ps.Source.PublishState.String(),
			timeutil.FormatUnix(ps.Source.BuildDate),
			strconv.FormatInt(ps.FileSize, 10),
		})
	}
	return rows
}

func details(p *message.Plugin) [][2]string {
	return [][2]string{
		{"ID", strconv.Itoa(int(p.ID))},
		{"Name", p.Name},
		{"Owner", p.Username},
		{"Short description", cmdutil.EmptyOr(p.ShortDescription, "-")},
		{"Long description", cmdutil.EmptyOr(p.LongDescription, "-")},
		{"Authors", cmdutil.EmptyOr(p.Authornames, "-")},
		{"Institutes", cmdutil.EmptyOr(p.Authorinstitutes, "-")},
		{"Emails", cmdutil.EmptyOr(p.Authoremails, "-")},
		{"Icon", fmt.Sprintf("%d bytes", len(p.Icon))},
	}
}

func readIcon(path string) ([]byte, error) {
	icon, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon: %w", err)
	}
	return icon, nil
}
