package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	store, err := contexts.Open()
	if err != nil {
		return fmt.Errorf("failed to load contexts: %w", err)
	}
	if _, err := store.Get(args[0]); err != nil {
		return err
	}
	return cmdutil.RunDeleteWithConfirmation("context", args[0], deleteForce, func() error {
		return store.Delete(args[0])
	})
}
