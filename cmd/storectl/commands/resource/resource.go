// Package resource implements the resource commands of storectl.
package resource

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/timeutil"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Cmd is the parent command for resource management.
var Cmd = &cobra.Command{
	Use:   "resource",
	Short: "Resource management",
	Long: `Manage resources on the CrypToolStore server. Resources carry data
files, such as dictionaries, that plugins use at run time. The data
itself is versioned with 'storectl resourcedata'.

Examples:
  storectl resource list
  storectl resource create --name "English dictionary"
  storectl resource list --published release`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
}

// List renders resources as a table.
type List []message.Resource

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"ID", "NAME", "OWNER", "DESCRIPTION"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{strconv.Itoa(int(r.ID)), r.Name, r.Username, cmdutil.EmptyOr(r.Description, "-")})
	}
	return rows
}

// PublishedList renders published resources with their newest data.
type PublishedList []message.ResourceAndResourceData

// Headers implements TableRenderer.
func (l PublishedList) Headers() []string {
	return []string{"ID", "NAME", "VERSION", "STATE", "UPLOADED", "SIZE"}
}

// Rows implements TableRenderer.
func (l PublishedList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, rr := range l {
		rows = append(rows, []string{
			strconv.Itoa(int(rr.Resource.ID)),
			rr.Resource.Name,
			strconv.Itoa(int(rr.ResourceData.ResourceVersion)),
			rr.ResourceData.PublishState.String(),
			timeutil.FormatUnix(rr.ResourceData.UploadDate),
			strconv.FormatInt(rr.FileSize, 10),
		})
	}
	return rows
}
