package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anthill-gaming/social/internal/cli/api"
	"github.com/anthill-gaming/social/internal/cli/config"
	"github.com/spf13/cobra"
)

var flagToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a token issued by the login service",
	Long: `Validate a login service token against the server and save it for that
server. The server also becomes the default for later commands.

  socialctl login --token eyJhbGciOi...
  socialctl login --server https://social.example.com --token eyJhbGciOi...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagToken == "" {
			return fmt.Errorf("--token is required")
		}

		client := api.NewClient(serverURL, flagToken)
		var resp api.Response[api.FriendList]
		if err := client.Get("/friends", nil, &resp); err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				return fmt.Errorf("invalid token: server returned 401")
			}
			return fmt.Errorf("validating token: %w", err)
		}

		cfg.ServerURL = serverURL
		cfg.SetToken(serverURL, flagToken)
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Logged in to %s as user %d\n", serverURL, resp.Data.UserID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagToken, "token", "", "Bearer token issued by the login service")
	rootCmd.AddCommand(loginCmd)
}
