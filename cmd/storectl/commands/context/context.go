// Package context implements the storectl commands that manage saved
// server contexts.
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for context management.
var Cmd = &cobra.Command{
	Use:     "context",
	Aliases: []string{"ctx"},
	Short:   "Manage server contexts",
	Long: `Manage the servers storectl talks to.

A context stores a server address, the developer to log in as and the TLS
trust settings. Passwords are never stored.

Examples:
  # Add a context and make it current
  storectl context add prod --address store.example.org --username alice

  # List contexts
  storectl context list

  # Switch context
  storectl context use staging`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(useCmd)
	Cmd.AddCommand(currentCmd)
	Cmd.AddCommand(deleteCmd)
}
