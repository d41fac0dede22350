package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/anthill-gaming/social/internal/cli/api"
)

var stdout io.Writer = os.Stdout

// JSON prints v as indented JSON to stdout.
func JSON(v interface{}) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// FriendList prints one friend id per line.
func FriendList(list api.FriendList) {
	if len(list.Friends) == 0 {
		fmt.Fprintln(stdout, "No friends yet.")
		return
	}
	for _, id := range list.Friends {
		fmt.Fprintf(stdout, "%d\n", id)
	}
}

// GroupTable prints a slice of groups as a human-readable table.
func GroupTable(groups []api.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "No groups found.")
		return
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tMEMBERS\tACTIVE\tCREATED")
	for _, g := range groups {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%v\t%s\n",
			g.ID, GroupName(g), GroupTypeLabel(g.Type), activeMembers(g), g.Active, RelativeTime(g.Created))
	}
	w.Flush()
}

// GroupDetail prints a single group's details and its members.
func GroupDetail(g api.Group) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", g.ID)
	fmt.Fprintf(w, "Name:\t%s\n", GroupName(g))
	fmt.Fprintf(w, "Type:\t%s\n", GroupTypeLabel(g.Type))
	fmt.Fprintf(w, "Active:\t%v\n", g.Active)
	fmt.Fprintf(w, "Created:\t%s\n", g.Created.Format(time.RFC3339))
	if g.Updated != nil {
		fmt.Fprintf(w, "Updated:\t%s\n", g.Updated.Format(time.RFC3339))
	}
	w.Flush()

	if len(g.Memberships) > 0 {
		fmt.Fprintln(stdout)
		MembershipTable(g.Memberships)
	}
}

// MembershipTable prints memberships with their notification settings.
func MembershipTable(memberships []api.Membership) {
	if len(memberships) == 0 {
		fmt.Fprintln(stdout, "No members found.")
		return
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tACTIVE\tMESSAGE\tEMAIL\tJOINED")
	for _, m := range memberships {
		fmt.Fprintf(w, "%d\t%v\t%v\t%v\t%s\n", m.UserID, m.Active, m.NotifyByMessage, m.NotifyByEmail, RelativeTime(m.Created))
	}
	w.Flush()
}

// MessageList prints messages as sorted key=value lines, one message per line.
func MessageList(messages []api.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(stdout, "No messages found.")
		return
	}
	for _, m := range messages {
		fmt.Fprintln(stdout, formatMessage(m))
	}
}

// VersionInfo prints the CLI version and, when reachable, the server build and friends mode.
func VersionInfo(cliVersion, serverURL string, server *api.VersionInfo) {
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CLI:\t%s\n", cliVersion)
	if server == nil {
		fmt.Fprintf(w, "Server:\t%s (unreachable)\n", serverURL)
		w.Flush()
		return
	}
	fmt.Fprintf(w, "Server:\t%s %s\n", serverURL, server.Version)
	fmt.Fprintf(w, "API:\t%s\n", server.APIVersion)
	fmt.Fprintf(w, "Friends cache:\t%s\n", onOff(server.FriendsCache))
	fmt.Fprintf(w, "Unique friends:\t%s\n", onOff(server.UniqueFriends))
	w.Flush()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// GroupName returns the group's name or a placeholder for unnamed groups.
func GroupName(g api.Group) string {
	if g.Name == nil || *g.Name == "" {
		return "-"
	}
	return *g.Name
}

// GroupTypeLabel turns the stored one-letter type into its label.
func GroupTypeLabel(code string) string {
	switch code {
	case "p":
		return "personal"
	case "m":
		return "multiple"
	case "c":
		return "channel"
	default:
		return code
	}
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

func activeMembers(g api.Group) int {
	count := 0
	for _, m := range g.Memberships {
		if m.Active {
			count++
		}
	}
	return count
}

func formatMessage(m api.Message) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}
