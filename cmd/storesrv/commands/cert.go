package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/pkg/config"
	"github.com/marmos91/cryptoolstore/pkg/tlsutil"
)

var (
	certHosts    []string
	certValidFor time.Duration
	certForce    bool
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "TLS certificate management",
}

var certGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create a self-signed server certificate",
	Long: `Create a self-signed certificate and key at tls.cert_file and tls.key_file.

Clients must trust the generated certificate explicitly, for example with
storectl --ca-file pointing at the certificate file.

Examples:
  # Certificate for localhost
  storesrv cert generate

  # Certificate for a public name, valid for two years
  storesrv cert generate --host store.example.org --valid-for 17520h`,
	RunE: runCertGenerate,
}

func init() {
	certGenerateCmd.Flags().StringSliceVar(&certHosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names and IP addresses the certificate is valid for")
	certGenerateCmd.Flags().DurationVar(&certValidFor, "valid-for", 365*24*time.Hour, "Validity period")
	certGenerateCmd.Flags().BoolVar(&certForce, "force", false, "Overwrite existing files")
	certCmd.AddCommand(certGenerateCmd)
}

func runCertGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if !certForce {
		for _, f := range []string{cfg.TLS.CertFile, cfg.TLS.KeyFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", f)
			}
		}
	}

	if err := tlsutil.WriteSelfSigned(cfg.TLS.CertFile, cfg.TLS.KeyFile, certHosts, certValidFor); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Certificate: %s\n", cfg.TLS.CertFile)
	_, _ = fmt.Fprintf(out, "Key:         %s\n", cfg.TLS.KeyFile)
	_, _ = fmt.Fprintf(out, "Valid for:   %v until %s\n", certHosts, time.Now().Add(certValidFor).Format(time.DateOnly))
	return nil
}
