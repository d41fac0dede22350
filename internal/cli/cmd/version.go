package cmd

import (
	"github.com/anthill-gaming/social/internal/cli/api"
	"github.com/anthill-gaming/social/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version is the CLI version, injected at build time:
//
//	go build -ldflags "-X github.com/anthill-gaming/social/internal/cli/cmd.Version=1.2.3"
var Version = "dev"

type versionReport struct {
	CLIVersion    string `json:"cliVersion"`
	Server        string `json:"server"`
	LoggedIn      bool   `json:"loggedIn"`
	ServerVersion string `json:"serverVersion,omitempty"`
	APIVersion    string `json:"apiVersion,omitempty"`
	FriendsCache  *bool  `json:"friendsCache,omitempty"`
	UniqueFriends *bool  `json:"uniqueFriends,omitempty"`
	ServerError   string `json:"serverError,omitempty"`
}

func buildVersionReport(info *api.VersionInfo, serverErr error) versionReport {
	report := versionReport{
		CLIVersion: Version,
		Server:     serverURL,
		LoggedIn:   cfg != nil && cfg.HasToken(serverURL),
	}
	if info == nil {
		if serverErr != nil {
			report.ServerError = serverErr.Error()
		}
		return report
	}
	report.ServerVersion = info.Version
	report.APIVersion = info.APIVersion
	report.FriendsCache = &info.FriendsCache
	report.UniqueFriends = &info.UniqueFriends
	return report
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI version and how the server handles friendships",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp api.Response[api.VersionInfo]
		var info *api.VersionInfo
		serverErr := apiClient.Get("/version", nil, &resp)
		if serverErr == nil {
			info = &resp.Data
		}

		if flagJSON {
			output.JSON(buildVersionReport(info, serverErr))
			return nil
		}

		output.VersionInfo(Version, serverURL, info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
