package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the career guidance HTTP API",
	Long: `Start an HTTP server exposing resume parsing, skill gap analysis,
roadmaps, interview practice and roadmap-aware chat.

Endpoints that call the AI providers always answer: when both providers fail
the response carries "tier": "fallback" and "degraded": true.

TLS Configuration:
- Use --tls-mode server with --cert-file and --key-file to serve HTTPS`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled or server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(cmd *cobra.Command) error {
	cfg := getConfigFromContext(cmd.Context())
	overrides := map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
	}
	for flag, target := range overrides {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		value, err := cmd.Flags().GetString(flag)
		if err != nil {
			return err
		}
		*target = value
	}
	return cfg.ValidateTLSConfig()
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := applyServeFlags(cmd); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	container, err := newContainer(cmd, true)
	if err != nil {
		return err
	}
	defer closeContainer(cmd, container)

	if err := container.StartBackground(cmd.Context()); err != nil {
		return err
	}
	return container.Server().Start(cmd.Context())
}
