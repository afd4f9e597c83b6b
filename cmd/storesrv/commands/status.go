package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/cryptoolstore/internal/cli/health"
	"github.com/marmos91/cryptoolstore/internal/cli/output"
	"github.com/marmos91/cryptoolstore/internal/cli/timeutil"
	"github.com/marmos91/cryptoolstore/pkg/api"
)

var (
	statusOutput string
	statusAPIURL string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server readiness",
	Long: `Query the status API of a running server and print its readiness checks.

Examples:
  # Check the local server
  storesrv status

  # Check a server with a custom API address
  storesrv status --api-url http://store.example.org:9080

  # Output as JSON
  storesrv status -o json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAPIURL, "api-url", fmt.Sprintf("http://localhost:%d", api.DefaultPort), "Base URL of the status API")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(statusAPIURL, "/") + "/health/ready")
	if err != nil {
		return fmt.Errorf("server is not reachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var ready health.Readiness
	if err := json.NewDecoder(resp.Body).Decode(&ready); err != nil {
		return fmt.Errorf("invalid status response (HTTP %d): %w", resp.StatusCode, err)
	}

	p := output.NewPrinter(cmd.OutOrStdout(), format, true)
	if format != output.FormatTable {
		return p.Print(ready)
	}

	if ready.Status == "healthy" {
		p.Success("Server is ready")
	} else {
		msg := "Server is not ready"
		if ready.Error != "" {
			msg += ": " + ready.Error
		}
		p.Warning(msg)
	}
	p.Printf("Checked at: %s\n\n", timeutil.FormatTime(ready.Timestamp))
	if len(ready.Data) == 0 {
		return nil
	}
	return p.Print(ready)
}
