package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file and print a short summary.

Examples:
  storesrv config validate
  storesrv config validate --config /etc/cryptoolstore/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	for _, f := range []string{cfg.TLS.CertFile, cfg.TLS.KeyFile} {
		if _, err := os.Stat(f); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s not readable; run 'storesrv cert generate' or fix tls settings", f))
		}
	}
	if !cfg.API.IsEnabled() {
		warnings = append(warnings, "status API disabled; health checks and metrics scraping are unavailable")
	} else if !cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics disabled; /metrics is not served")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	_, _ = fmt.Fprintf(out, "  Store listener:  %s:%d\n", cfg.Server.BindAddress, cfg.Server.Port)
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  Blob store:      %s\n", cfg.Blobs.Type)
	_, _ = fmt.Fprintf(out, "  Max payload:     %s\n", cfg.Server.MaxPayloadSize)
	_, _ = fmt.Fprintf(out, "  Lockout:         %d failures in %s\n", cfg.Lockout.MaxRetries, cfg.Lockout.Window)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
