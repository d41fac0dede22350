package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/anthill-gaming/social/internal/cli/api"
	"github.com/anthill-gaming/social/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagGroupName   string
	flagGroupType   string
	flagGroupActive string
	flagMemberUser  int64
	flagSender      int64
	flagNotifyMsg   string
	flagNotifyEmail string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups and their members",
}

var groupsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the groups you belong to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[[]api.Group]
		if err := apiClient.Get("/groups", nil, &resp); err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupTable(resp.Data)
		return nil
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group with you as its first member",
	Long: `Create a group. The type is multiple or channel; personal groups come from
"socialctl friends add".

  socialctl groups create --name crew --type channel`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		body := map[string]interface{}{}
		if flagGroupName != "" {
			body["name"] = flagGroupName
		}
		if flagGroupType != "" {
			body["type"] = flagGroupType
		}

		var resp api.Response[api.Group]
		if err := apiClient.Post("/groups", body, &resp); err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupDetail(resp.Data)
		return nil
	},
}

var groupsGetCmd = &cobra.Command{
	Use:   "get <groupId>",
	Short: "Show a group and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}

		var resp api.Response[api.Group]
		if err := apiClient.Get(groupRoute(groupID, ""), nil, &resp); err != nil {
			return fmt.Errorf("loading group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupDetail(resp.Data)
		return nil
	},
}

var groupsUpdateCmd = &cobra.Command{
	Use:   "update <groupId>",
	Short: "Rename or (de)activate a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}

		body := map[string]interface{}{}
		if cmd.Flags().Changed("name") {
			body["name"] = flagGroupName
		}
		if err := setBoolField(body, "active", flagGroupActive); err != nil {
			return err
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to update: pass --name or --active")
		}

		var resp api.Response[api.Group]
		if err := apiClient.Put(groupRoute(groupID, ""), body, &resp); err != nil {
			return fmt.Errorf("updating group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.GroupDetail(resp.Data)
		return nil
	},
}

var groupsRmCmd = &cobra.Command{
	Use:   "rm <groupId>",
	Short: "Delete a group and all its memberships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}

		if err := apiClient.Delete(groupRoute(groupID, ""), nil); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}
		fmt.Printf("Deleted group %d\n", groupID)
		return nil
	},
}

var groupsMembersCmd = &cobra.Command{
	Use:   "members <groupId>",
	Short: "List group memberships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}

		params := url.Values{}
		if flagMemberUser > 0 {
			params.Set("userId", strconv.FormatInt(flagMemberUser, 10))
		}
		if flagGroupActive != "" {
			params.Set("active", flagGroupActive)
		}

		var resp api.Response[[]api.Membership]
		if err := apiClient.Get(groupRoute(groupID, "/memberships"), params, &resp); err != nil {
			return fmt.Errorf("listing memberships: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.MembershipTable(resp.Data)
		return nil
	},
}

var groupsMessagesCmd = &cobra.Command{
	Use:   "messages <groupId>",
	Short: "List group messages from the message service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}

		params := url.Values{}
		if flagSender > 0 {
			params.Set("senderId", strconv.FormatInt(flagSender, 10))
		}
		if flagGroupActive != "" {
			params.Set("active", flagGroupActive)
		}

		var resp api.Response[[]api.Message]
		if err := apiClient.Get(groupRoute(groupID, "/messages"), params, &resp); err != nil {
			return fmt.Errorf("listing messages: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.MessageList(resp.Data)
		return nil
	},
}

var groupsAddMemberCmd = &cobra.Command{
	Use:   "add-member <groupId> <userId>",
	Short: "Add a user to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}
		userID, err := parseUserArg(args[1])
		if err != nil {
			return err
		}

		body := map[string]interface{}{"userID": userID}
		if err := setBoolField(body, "notifyByMessage", flagNotifyMsg); err != nil {
			return err
		}
		if err := setBoolField(body, "notifyByEmail", flagNotifyEmail); err != nil {
			return err
		}

		var resp api.Response[api.Membership]
		if err := apiClient.Post(groupRoute(groupID, "/members"), body, &resp); err != nil {
			return fmt.Errorf("adding member: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.MembershipTable([]api.Membership{resp.Data})
		return nil
	},
}

var groupsUpdateMemberCmd = &cobra.Command{
	Use:   "update-member <groupId> <userId>",
	Short: "Change a member's active flag or notification settings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}
		userID, err := parseUserArg(args[1])
		if err != nil {
			return err
		}

		body := map[string]interface{}{}
		for field, value := range map[string]string{
			"active":          flagGroupActive,
			"notifyByMessage": flagNotifyMsg,
			"notifyByEmail":   flagNotifyEmail,
		} {
			if err := setBoolField(body, field, value); err != nil {
				return err
			}
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to update: pass --active, --notify-message or --notify-email")
		}

		var resp api.Response[api.Membership]
		if err := apiClient.Put(memberRoute(groupID, userID, ""), body, &resp); err != nil {
			return fmt.Errorf("updating member: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.MembershipTable([]api.Membership{resp.Data})
		return nil
	},
}

var groupsRmMemberCmd = &cobra.Command{
	Use:   "rm-member <groupId> <userId>",
	Short: "Remove a user from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}
		userID, err := parseUserArg(args[1])
		if err != nil {
			return err
		}

		if err := apiClient.Delete(memberRoute(groupID, userID, ""), nil); err != nil {
			return fmt.Errorf("removing member: %w", err)
		}
		fmt.Printf("Removed %d from group %d\n", userID, groupID)
		return nil
	},
}

var groupsReceiverCmd = &cobra.Command{
	Use:   "receiver <groupId> <userId>",
	Short: "Look up the login service user behind a membership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		groupID, err := parseGroupArg(args[0])
		if err != nil {
			return err
		}
		userID, err := parseUserArg(args[1])
		if err != nil {
			return err
		}

		var resp api.Response[api.Receiver]
		if err := apiClient.Get(memberRoute(groupID, userID, "/receiver"), nil, &resp); err != nil {
			return fmt.Errorf("loading receiver: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("%d\t%s\t%s\n", resp.Data.ID, resp.Data.Username, resp.Data.Email)
		return nil
	},
}

func parseGroupArg(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid group id %q", value)
	}
	return uint(id), nil
}

func groupRoute(groupID uint, suffix string) string {
	return fmt.Sprintf("/groups/%d%s", groupID, suffix)
}

func memberRoute(groupID uint, userID int64, suffix string) string {
	return fmt.Sprintf("/groups/%d/members/%d%s", groupID, userID, suffix)
}

// setBoolField parses an optional true/false flag into body[field]. Empty leaves body untouched.
func setBoolField(body map[string]interface{}, field, value string) error {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: expected true or false", value, field)
	}
	body[field] = parsed
	return nil
}

func init() {
	groupsCreateCmd.Flags().StringVar(&flagGroupName, "name", "", "Unique group name")
	groupsCreateCmd.Flags().StringVar(&flagGroupType, "type", "", "Group type: multiple, channel")

	groupsUpdateCmd.Flags().StringVar(&flagGroupName, "name", "", "New name; empty clears it")
	groupsUpdateCmd.Flags().StringVar(&flagGroupActive, "active", "", "Set the active flag: true or false")

	groupsMembersCmd.Flags().Int64Var(&flagMemberUser, "user", 0, "Only show this user's membership")
	groupsMembersCmd.Flags().StringVar(&flagGroupActive, "active", "", "Filter by active flag (default true)")

	groupsMessagesCmd.Flags().Int64Var(&flagSender, "sender", 0, "Only messages from this sender")
	groupsMessagesCmd.Flags().StringVar(&flagGroupActive, "active", "", "Filter by active flag (default true)")

	groupsAddMemberCmd.Flags().StringVar(&flagNotifyMsg, "notify-message", "", "Notify by message: true or false")
	groupsAddMemberCmd.Flags().StringVar(&flagNotifyEmail, "notify-email", "", "Notify by email: true or false")

	groupsUpdateMemberCmd.Flags().StringVar(&flagGroupActive, "active", "", "Set the active flag: true or false")
	groupsUpdateMemberCmd.Flags().StringVar(&flagNotifyMsg, "notify-message", "", "Notify by message: true or false")
	groupsUpdateMemberCmd.Flags().StringVar(&flagNotifyEmail, "notify-email", "", "Notify by email: true or false")

	groupsCmd.AddCommand(
		groupsLsCmd,
		groupsCreateCmd,
		groupsGetCmd,
		groupsUpdateCmd,
		groupsRmCmd,
		groupsMembersCmd,
		groupsMessagesCmd,
		groupsAddMemberCmd,
		groupsUpdateMemberCmd,
		groupsRmMemberCmd,
		groupsReceiverCmd,
	)
	rootCmd.AddCommand(groupsCmd)
}
