package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/cli/output"
	"github.com/marmos91/cryptoolstore/pkg/config"
)

const redacted = "<redacted>"

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration after defaults and environment overrides.
Secrets are redacted.

Examples:
  storesrv config show
  storesrv config show --output json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	if cfg.Admin.Password != "" {
		cfg.Admin.Password = redacted
	}
	if cfg.Blobs.S3.SecretAccessKey != "" {
		cfg.Blobs.S3.SecretAccessKey = redacted
	}
	if cfg.Database.Postgres.Password != "" {
		cfg.Database.Postgres.Password = redacted
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
