// Package commands implements the CLI commands for the storectl client.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/cmd/storectl/cmdutil"
	ctxcmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/context"
	developercmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/developer"
	plugincmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/plugin"
	resourcecmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/resource"
	resourcedatacmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/resourcedata"
	sourcecmd "github.com/marmos91/cryptoolstore/cmd/storectl/commands/source"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "CrypToolStore Control - plugin store client",
	Long: `storectl is the command-line client for CrypToolStore servers.

Developers use it to maintain their plugins, sources and resources and to
upload and download the files attached to them. Administrators also manage
developer accounts and publish items.

Passwords are read from CRYPTOOLSTORE_PASSWORD or asked for interactively.

Use "storectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.Context, _ = cmd.Flags().GetString("context")
		cmdutil.Flags.Address, _ = cmd.Flags().GetString("address")
		cmdutil.Flags.Username, _ = cmd.Flags().GetString("username")
		cmdutil.Flags.CAFile, _ = cmd.Flags().GetString("ca-file")
		cmdutil.Flags.ServerName, _ = cmd.Flags().GetString("server-name")
		cmdutil.Flags.Insecure, _ = cmd.Flags().GetBool("insecure")
		cmdutil.Flags.Timeout, _ = cmd.Flags().GetDuration("timeout")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("storectl %s (commit: %s, built: %s)\n", Version, Commit, Date)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, which stops a running transfer cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("context", "", "Context to use (overrides the current context)")
	rootCmd.PersistentFlags().String("address", "", "Server address host[:port] (overrides the context)")
	rootCmd.PersistentFlags().StringP("username", "u", "", "Developer to log in as (overrides the context)")
	rootCmd.PersistentFlags().String("ca-file", "", "PEM file with the trusted server certificate")
	rootCmd.PersistentFlags().String("server-name", "", "Name to verify the server certificate against")
	rootCmd.PersistentFlags().Bool("insecure", false, "Skip server certificate verification")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Connect timeout")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(ctxcmd.Cmd)
	rootCmd.AddCommand(developercmd.Cmd)
	rootCmd.AddCommand(plugincmd.Cmd)
	rootCmd.AddCommand(sourcecmd.Cmd)
	rootCmd.AddCommand(resourcecmd.Cmd)
	rootCmd.AddCommand(resourcedatacmd.Cmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
