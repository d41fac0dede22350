package cmd

import (
	"fmt"

	"github.com/anthill-gaming/social/internal/cli/config"
	"github.com/spf13/cobra"
)

var flagLogoutAll bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the token stored for the current server",
	Long: `Forget the token of the current server (or the one named by --server).
Tokens saved for other servers and the default server URL are kept.

  socialctl logout
  socialctl logout --all     Forget every server and token`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagLogoutAll {
			if err := config.Clear(); err != nil {
				return fmt.Errorf("clearing config: %w", err)
			}
			fmt.Println("Logged out of all servers.")
			return nil
		}

		if !cfg.ForgetToken(serverURL) {
			fmt.Printf("Not logged in to %s.\n", serverURL)
			return nil
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Logged out of %s.\n", serverURL)
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&flagLogoutAll, "all", false, "Forget every stored server and token")
	rootCmd.AddCommand(logoutCmd)
}
