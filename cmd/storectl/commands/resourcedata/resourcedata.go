// Package resourcedata implements the resource data version commands of
// storectl.
package resourcedata

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/cli/timeutil"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Cmd is the parent command for resource data management.
var Cmd = &cobra.Command{
	Use:     "resourcedata",
	Aliases: []string{"rd"},
	Short:   "Resource data version management",
	Long: `Manage the data versions of a resource. The data file is uploaded with
'storectl upload resourcedata'.

Examples:
  storectl resourcedata list 4
  storectl resourcedata create 4 2
  storectl resourcedata publish 4 2 release`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(publishCmd)
	Cmd.AddCommand(deleteCmd)
}

// List renders resource data versions as a table.
type List []message.ResourceData

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"RESOURCE", "VERSION", "FILE", "PUBLISH STATE", "UPLOADED"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, rd := range l {
		file := rd.DataFilename
		if file == "" {
			file = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(int(rd.ResourceID)),
			strconv.Itoa(int(rd.ResourceVersion)),
			file,
			rd.PublishState.String(),
			timeutil.FormatUnix(rd.UploadDate),
		})
	}
	return rows
}
