package cmd

import (
	"fmt"
	"os"

	"github.com/anthill-gaming/social/internal/cli/api"
	"github.com/anthill-gaming/social/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	serverURL string
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "socialctl",
	Short: "Manage friends and groups on a social server",
	Long: `socialctl talks to the social service from the terminal.

Get started:
  socialctl login --token X     Store a login service token
  socialctl friends ls          List your friends
  socialctl groups ls           List the groups you belong to`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		serverURL = cfg.ServerURL
		if flagServerURL != "" {
			serverURL = flagServerURL
		}
		apiClient = api.NewClient(serverURL, cfg.TokenFor(serverURL))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:8080)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken(serverURL) {
		return fmt.Errorf("not authenticated with %s: run \"socialctl login --token <token>\" first", serverURL)
	}
	return nil
}
