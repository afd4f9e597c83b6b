package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration file",
	Long: `Create a sample configuration file.

By default the file is created at $XDG_CONFIG_HOME/cryptoolstore/config.yaml.
Use --config to choose another path.

Examples:
  # Create the default configuration
  storesrv init

  # Create it somewhere else
  storesrv init --config /etc/cryptoolstore/config.yaml

  # Overwrite an existing file
  storesrv init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	var err error
	if configPath != "" {
		err = config.InitConfigToPath(configPath, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Point tls.cert_file and tls.key_file at your certificate,")
	_, _ = fmt.Fprintln(out, "     or create a self-signed one with: storesrv cert generate")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: storesrv start")
	_, _ = fmt.Fprintln(out, "\nThe admin password is generated and printed on first start unless")
	_, _ = fmt.Fprintf(out, "%s_ADMIN_PASSWORD is set.\n", config.EnvPrefix)
	return nil
}
