package context

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	RunE:  runList,
}

// Entry is a named context for output.
type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Current bool   `json:"current" yaml:"current"`
	contexts.Context `yaml:",inline"`
}

// EntryList renders contexts as a table.
type EntryList []Entry

// Headers implements TableRenderer.
func (l EntryList) Headers() []string {
	return []string{"CURRENT", "NAME", "ADDRESS", "USERNAME", "TLS"}
}

// Rows implements TableRenderer.
func (l EntryList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		marker := ""
		if e.Current {
			marker = "*"
		}
		rows = append(rows, []string{marker, e.Name, e.Address, cmdutil.EmptyOr(e.Username, "-"), trust(&e.Context)})
	}
	return rows
}

func trust(c *contexts.Context) string {
	switch {
	case c.Insecure:
		return "insecure"
	case c.CAFile != "":
		return "ca: " + c.CAFile
	default:
		return "system"
	}
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := contexts.Open()
	if err != nil {
		return fmt.Errorf("failed to load contexts: %w", err)
	}
	current, _, _ := store.Current()

	names := store.Names()
	entries := make(EntryList, 0, len(names))
	for _, name := range names {
		c, err := store.Get(name)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Name: name, Current: name == current, Context: *c})
	}

	return cmdutil.PrintOutput(os.Stdout, entries, len(entries) == 0,
		"No contexts. Add one with 'storectl context add'.", entries)
}
