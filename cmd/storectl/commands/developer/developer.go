// Package developer implements the developer account commands of storectl.
package developer

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/pkg/protocol/message"
)

// Cmd is the parent command for developer management.
var Cmd = &cobra.Command{
	Use:     "developer",
	Aliases: []string{"dev"},
	Short:   "Developer account management",
	Long: `Manage developer accounts on the CrypToolStore server.

Listing, creating and deleting accounts requires an administrator. Every
developer may read and update their own account.

Examples:
  # List developers
  storectl developer list

  # Create an administrator
  storectl developer create carol --admin --email carol@example.org

  # Change your own password
  storectl developer passwd alice`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(passwdCmd)
	Cmd.AddCommand(deleteCmd)
}

// List renders developers as a table.
type List []message.Developer

// Headers implements TableRenderer.
func (l List) Headers() []string {
	return []string{"USERNAME", "NAME", "EMAIL", "ADMIN"}
}

// Rows implements TableRenderer.
func (l List) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, d := range l {
		rows = append(rows, []string{d.Username, cmdutil.EmptyOr(fullName(d), "-"), cmdutil.EmptyOr(d.Email, "-"), cmdutil.BoolToYesNo(d.IsAdmin)})
	}
	return rows
}

func fullName(d message.Developer) string {
	switch {
	case d.Firstname == "":
		return d.Lastname
	case d.Lastname == "":
		return d.Firstname
	}
	return d.Firstname + " " + d.Lastname
}
