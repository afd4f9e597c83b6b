package context

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
)

var useCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Args:  cobra.ExactArgs(1),
	RunE:  runUse,
}

func runUse(cmd *cobra.Command, args []string) error {
	store, err := contexts.Open()
	if err != nil {
		return fmt.Errorf("failed to load contexts: %w", err)
	}

	if err := store.Use(args[0]); err != nil {
		if errors.Is(err, contexts.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found\n\n"+
				"List available contexts:\n"+
				"  storectl context list", args[0])
		}
		return fmt.Errorf("failed to switch context: %w", err)
	}

	fmt.Printf("Switched to context: %s\n", args[0])
	return nil
}
