package context

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	"github.com/marmos91/cryptoolstore/internal/cli/contexts"
)

var (
	addAddress    string
	addUsername   string
	addCAFile     string
	addServerName string
	addInsecure   bool
	addUse        bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a context",
	Long: `Add or replace a server context. The first context added becomes
the current one.

Examples:
  # Server with a certificate signed by a known CA
  storectl context add prod --address store.example.org --username alice

  # Local server with a self-signed certificate
  storectl context add local --address localhost --ca-file ./server.crt --use`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addAddress, "address", "", "Server address host[:port] (required)")
	addCmd.Flags().StringVar(&addUsername, "username", "", "Developer to log in as")
	addCmd.Flags().StringVar(&addCAFile, "ca-file", "", "PEM file with the trusted server certificate")
	addCmd.Flags().StringVar(&addServerName, "server-name", "", "Name to verify the server certificate against")
	addCmd.Flags().BoolVar(&addInsecure, "insecure", false, "Skip server certificate verification")
	addCmd.Flags().BoolVar(&addUse, "use", false, "Make the context current")
	_ = addCmd.MarkFlagRequired("address")
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, err := contexts.Open()
	if err != nil {
		return fmt.Errorf("failed to load contexts: %w", err)
	}

	name := args[0]
	if err := store.Set(name, &contexts.Context{
		Address:    addAddress,
		Username:   addUsername,
		CAFile:     addCAFile,
		ServerName: addServerName,
		Insecure:   addInsecure,
	}); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	if addUse {
		if err := store.Use(name); err != nil {
			return err
		}
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Context '%s' saved", name))
	return nil
}
