package cmd

import (
	"fmt"
	"strconv"

	"github.com/anthill-gaming/social/internal/cli/api"
	"github.com/anthill-gaming/social/internal/cli/output"
	"github.com/spf13/cobra"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "List, add and remove friends",
}

var friendsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List your friends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.FriendList]
		if err := apiClient.Get("/friends", nil, &resp); err != nil {
			return fmt.Errorf("listing friends: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.FriendList(resp.Data)
		return nil
	},
}

var friendsAddCmd = &cobra.Command{
	Use:   "add <userId>",
	Short: "Become friends with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		userID, err := parseUserArg(args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.Group]
		if err := apiClient.Post("/friends", map[string]int64{"userID": userID}, &resp); err != nil {
			return fmt.Errorf("adding friend: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Now friends with %d (group %d)\n", userID, resp.Data.ID)
		return nil
	},
}

var friendsRmCmd = &cobra.Command{
	Use:   "rm <userId>",
	Short: "Remove a friendship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		userID, err := parseUserArg(args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.FriendRemoval]
		if err := apiClient.Delete("/friends/"+strconv.FormatInt(userID, 10), &resp); err != nil {
			return fmt.Errorf("removing friend: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Removed friendship with %d (group %d)\n", userID, resp.Data.GroupID)
		return nil
	},
}

var friendsCheckCmd = &cobra.Command{
	Use:   "check <userId>",
	Short: "Check whether you are friends with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		userID, err := parseUserArg(args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.FriendCheck]
		if err := apiClient.Get("/friends/"+strconv.FormatInt(userID, 10), nil, &resp); err != nil {
			return fmt.Errorf("checking friendship: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		if resp.Data.AreFriends {
			fmt.Printf("You are friends with %d\n", userID)
		} else {
			fmt.Printf("You are not friends with %d\n", userID)
		}
		return nil
	},
}

func parseUserArg(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", value)
	}
	return id, nil
}

func init() {
	friendsCmd.AddCommand(friendsLsCmd, friendsAddCmd, friendsRmCmd, friendsCheckCmd)
	rootCmd.AddCommand(friendsCmd)
}
