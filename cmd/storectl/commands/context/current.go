package context

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current context",
	RunE:  runCurrent,
}

func runCurrent(cmd *cobra.Command, args []string) error {
	store, err := contexts.Open()
	if err != nil {
		return fmt.Errorf("failed to load contexts: %w", err)
	}
	name, c, err := store.Current()
	if err != nil {
		return err
	}

	return cmdutil.PrintDetails(os.Stdout, Entry{Name: name, Current: true, Context: *c}, [][2]string{
		{"Name", name},
		{"Address", c.Address},
		{"Username", cmdutil.EmptyOr(c.Username, "-")},
		{"Server name", cmdutil.EmptyOr(c.ServerName, "-")},
		{"TLS trust", trust(c)},
		{"File", store.Path()},
	})
}
